package models

import (
	"time"

	"github.com/duesignal/duesignal/pkg/types"
)

// Subscription is one recurring charge a user tracks. Calendar dates are
// stored as YYYY-MM-DD strings and compared by exact value.
//
// Invariant: NextReminderDate, when present, equals NextDueDate minus
// ReminderDaysBefore days. The reminder batch maintains it after each cycle
// advance; user-facing writes recompute it together with any change to
// NextDueDate or ReminderDaysBefore.
type Subscription struct {
	ID       string             `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID   string             `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Name     string             `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Category string             `gorm:"column:category;type:varchar(64)" json:"category"`
	Cycle    types.BillingCycle `gorm:"column:billing_cycle;type:varchar(32);not null" json:"billing_cycle"`
	Amount   float64            `gorm:"column:amount;not null" json:"amount"`
	Currency string             `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	// NextDueDate is the next charge date.
	NextDueDate string `gorm:"column:next_due_date;type:varchar(10)" json:"next_due_date"`
	// ReminderDaysBefore is the reminder offset; nil means no reminder was configured.
	ReminderDaysBefore *int `gorm:"column:reminder_days_before" json:"reminder_days_before"`
	// NextReminderDate is the derived date the batch matches on.
	NextReminderDate *string `gorm:"column:next_reminder_date;type:varchar(10);index" json:"next_reminder_date"`
	UserEmail        *string `gorm:"column:user_email;type:varchar(255)" json:"user_email"`
	// CreatedAt is managed by GORM and records the creation time.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is managed by GORM and records the update time.
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Email returns the delivery address, or "" when none is set.
func (s *Subscription) Email() string {
	if s == nil || s.UserEmail == nil {
		return ""
	}
	return *s.UserEmail
}
