package reminder

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/duesignal/duesignal/internal/models"
	"github.com/duesignal/duesignal/pkg/tool"
)

type message struct {
	subscriptionID string
	to             string
	subject        string
	text           string
	html           string
}

func newLogEntry(sub *models.Subscription, date string) *models.ReminderLog {
	entry := &models.ReminderLog{
		ID:                 tool.GenerateUUIDV7(),
		SubscriptionID:     sub.ID,
		NextReminderDate:   date,
		ReminderDaysBefore: sub.ReminderDaysBefore,
		UserEmail:          sub.UserEmail,
		CreatedAt:          time.Now(),
	}
	if sub.NextDueDate != "" {
		due := sub.NextDueDate
		entry.NextDueDate = &due
	}
	entry.Extra = datatypes.NewJSONType(&models.ReminderSnapshot{
		Name:     sub.Name,
		Category: sub.Category,
		Cycle:    sub.Cycle,
		Amount:   sub.Amount,
		Currency: sub.Currency,
	})
	return entry
}

var htmlBody = template.Must(template.New("reminder").Parse(`<div style="font-family: system-ui, sans-serif; background:#f5f5f7; padding:24px;">
  <div style="max-width:520px; margin:0 auto; background:#ffffff; border-radius:12px; overflow:hidden;">
    <div style="background:#0f172a; color:#f9fafb; padding:16px 20px;">
      <div style="font-size:18px; font-weight:600;">DueSignal</div>
      <div style="font-size:13px; opacity:0.8;">Subscription Reminder</div>
    </div>
    <div style="padding:20px 20px 8px 20px; color:#0f172a;">
      <p style="margin:0 0 12px 0;">Hi,</p>
      <p style="margin:0 0 16px 0;">
        This is a friendly reminder that your subscription
        <strong>{{.Name}}</strong> is coming up.
      </p>
      <table style="width:100%; border-collapse:collapse; margin:8px 0 16px 0; font-size:14px;">
        <tr>
          <td style="padding:6px 0; color:#6b7280;">Next due date</td>
          <td style="padding:6px 0; text-align:right; font-weight:500;">{{.DueDate}}</td>
        </tr>
        <tr>
          <td style="padding:6px 0; color:#6b7280;">Amount</td>
          <td style="padding:6px 0; text-align:right; font-weight:500;">{{.Amount}} {{.Currency}}</td>
        </tr>
        <tr>
          <td style="padding:6px 0; color:#6b7280;">Reminder offset</td>
          <td style="padding:6px 0; text-align:right;">{{.Offset}} day(s) before</td>
        </tr>
      </table>
      <p style="margin:0 0 16px 0; font-size:13px; color:#6b7280;">
        You added this subscription in your DueSignal dashboard.
      </p>
    </div>
    <div style="border-top:1px solid #e5e7eb; padding:12px 20px; background:#f9fafb; color:#9ca3af; font-size:11px;">
      <div>You're receiving this email because you use DueSignal to track your subscriptions.</div>
      <div style="margin-top:4px;">If this wasn't you, you can ignore this email.</div>
    </div>
  </div>
</div>`))

func buildReminderMessage(to string, sub *models.Subscription) *message {
	offset := 0
	if sub.ReminderDaysBefore != nil {
		offset = *sub.ReminderDaysBefore
	}

	text := fmt.Sprintf(`DueSignal Reminder

Your subscription "%s" is due on %s.
Amount: %v %s
Reminder offset: %d day(s) before.

You're receiving this because you added this subscription in DueSignal.`,
		sub.Name, sub.NextDueDate, sub.Amount, sub.Currency, offset)

	var html strings.Builder
	_ = htmlBody.Execute(&html, struct {
		Name, DueDate, Currency string
		Amount                  float64
		Offset                  int
	}{
		Name:     sub.Name,
		DueDate:  sub.NextDueDate,
		Currency: sub.Currency,
		Amount:   sub.Amount,
		Offset:   offset,
	})

	return &message{
		subscriptionID: sub.ID,
		to:             to,
		subject:        fmt.Sprintf("Reminder: %s is due %s", sub.Name, sub.NextDueDate),
		text:           text,
		html:           html.String(),
	}
}
