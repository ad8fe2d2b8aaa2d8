package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/duesignal/duesignal/internal/models"
	"github.com/duesignal/duesignal/pkg/response"
	"github.com/duesignal/duesignal/pkg/types"
)

type ScanReminderLogsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ReminderLogItem struct {
	ID                 string    `json:"id"`
	SubscriptionID     string    `json:"subscription_id"`
	SubscriptionName   string    `json:"subscription_name"`
	NextReminderDate   string    `json:"next_reminder_date"`
	NextDueDate        *string   `json:"next_due_date"`
	ReminderDaysBefore *int      `json:"reminder_days_before"`
	UserEmail          *string   `json:"user_email"`
	Amount             float64   `json:"amount"`
	Currency           string    `json:"currency"`
	CreatedAt          time.Time `json:"created_at"`
}

type ScanReminderLogsResponse struct {
	Items []*ReminderLogItem `json:"items"`
	Total int64              `json:"total"`
}

// filtersWhere wraps a list of filters to a single clause.Expression
type filtersWhere struct{ filters []*types.CommonFilter }

func (w filtersWhere) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, f := range w.filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		f.Build(builder)
	}
}

func toReminderLogItem(m *models.ReminderLog) *ReminderLogItem {
	item := &ReminderLogItem{
		ID:                 m.ID,
		SubscriptionID:     m.SubscriptionID,
		NextReminderDate:   m.NextReminderDate,
		NextDueDate:        m.NextDueDate,
		ReminderDaysBefore: m.ReminderDaysBefore,
		UserEmail:          m.UserEmail,
		CreatedAt:          m.CreatedAt,
	}
	if snap := m.Snapshot(); snap != nil {
		item.SubscriptionName = snap.Name
		item.Amount = snap.Amount
		item.Currency = snap.Currency
	}
	return item
}

var reminderLogSortFields = map[string]bool{
	"created_at":         true,
	"next_reminder_date": true,
	"subscription_id":    true,
}

// @Summary      Scan Reminder Logs (Admin)
// @Description  Retrieves a paginated and filterable list of dispatched-reminder log entries.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ScanReminderLogsRequest true "Scan request with filters, pagination, and sorting"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/reminder_logs/scan [post]
func ApiScanReminderLogs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScanReminderLogsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.Size <= 0 || req.Size > 200 {
			req.Size = 50
		}

		where := filtersWhere{filters: req.Filters}
		ctx := c.Request.Context()

		var total int64
		if err := db.WithContext(ctx).Model(&models.ReminderLog{}).Where(where).Count(&total).Error; err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		order := "created_at desc"
		if reminderLogSortFields[req.SortBy] {
			dir := "asc"
			if strings.EqualFold(req.SortOrder, "desc") {
				dir = "desc"
			}
			order = fmt.Sprintf("%s %s", req.SortBy, dir)
		}

		var entries []*models.ReminderLog
		err := db.WithContext(ctx).
			Where(where).
			Order(order).
			Offset(req.From).
			Limit(req.Size).
			Find(&entries).Error
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		items := lo.Map(entries, func(m *models.ReminderLog, _ int) *ReminderLogItem { return toReminderLogItem(m) })
		c.JSON(http.StatusOK, response.OKT(&ScanReminderLogsResponse{Items: items, Total: total}))
	}
}

func RegisterAdminRoutes(r gin.IRouter, runner ReminderRunner, db *gorm.DB) {
	r.POST("/reminders/run", ApiRunReminders(runner))
	r.POST("/reminder_logs/scan", ApiScanReminderLogs(db))
}
