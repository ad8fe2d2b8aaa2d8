package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duesignal/duesignal/internal/app/service/reminder"
	"github.com/duesignal/duesignal/pkg/dates"
)

// ReminderRunner is the part of the reminder service the trigger needs.
type ReminderRunner interface {
	Run(ctx context.Context, date string) (*reminder.Result, error)
}

// RunRemindersResponse mirrors the manual-trigger contract: ok plus either a
// message or an error, always echoing the processed date.
type RunRemindersResponse struct {
	OK      bool             `json:"ok"`
	Date    string           `json:"date"`
	Message string           `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
	Result  *reminder.Result `json:"result,omitempty"`
}

// @Summary      Run Reminders (Admin)
// @Description  Runs the reminder batch for the given date (defaults to today, UTC).
// @Tags         Admin
// @Produce      json
// @Param        date query string false "Target date (YYYY-MM-DD)"
// @Success      200  {object}  handlers.RunRemindersResponse
// @Failure      500  {object}  handlers.RunRemindersResponse
// @Router       /api/v1/admin/reminders/run [post]
func ApiRunReminders(svc ReminderRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Query("date")
		if date == "" {
			date = dates.Today(time.UTC).String()
		}
		if _, err := dates.Parse(date); err != nil {
			c.JSON(http.StatusBadRequest, RunRemindersResponse{OK: false, Date: date, Error: err.Error()})
			return
		}

		res, err := svc.Run(c.Request.Context(), date)
		if err != nil {
			c.JSON(http.StatusInternalServerError, RunRemindersResponse{OK: false, Date: date, Error: "error running reminder job"})
			return
		}
		c.JSON(http.StatusOK, RunRemindersResponse{
			OK:      true,
			Date:    date,
			Message: fmt.Sprintf("Reminder job executed for date %s", date),
			Result:  res,
		})
	}
}
