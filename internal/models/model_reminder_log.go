package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/duesignal/duesignal/pkg/types"
)

// ReminderSnapshot captures the subscription's display fields at send time.
type ReminderSnapshot struct {
	Name     string             `json:"name"`
	Category string             `json:"category,omitempty"`
	Cycle    types.BillingCycle `json:"billing_cycle"`
	Amount   float64            `json:"amount"`
	Currency string             `json:"currency"`
}

// ReminderLog is one dispatched-reminder fact. Rows are append-only: the batch
// never updates or deletes them, and their existence is the sole source of
// truth for "already sent" for a (subscription, reminder date) pair.
//
// The index on (subscription_id, next_reminder_date) is deliberately not
// unique: duplicate appends from a true race between two overlapping runs are
// an accepted residual risk, not a constraint violation that would abort a
// whole batch.
type ReminderLog struct {
	ID             string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;type:uuid;not null;index:idx_subscription_reminder,priority:1" json:"subscription_id"`
	// NextReminderDate is the reminder date this entry was processed for;
	// together with SubscriptionID it forms the dedup key.
	NextReminderDate string `gorm:"column:next_reminder_date;type:varchar(10);not null;index:idx_subscription_reminder,priority:2" json:"next_reminder_date"`
	// NextDueDate and ReminderDaysBefore are snapshots at send time, kept for audit.
	NextDueDate        *string `gorm:"column:next_due_date;type:varchar(10)" json:"next_due_date"`
	ReminderDaysBefore *int    `gorm:"column:reminder_days_before" json:"reminder_days_before"`
	UserEmail          *string `gorm:"column:user_email;type:varchar(255)" json:"user_email"`

	Extra     datatypes.JSONType[*ReminderSnapshot] `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time                             `json:"created_at"`
}

func (ReminderLog) TableName() string {
	return "reminder_log"
}

// Snapshot returns the embedded subscription snapshot, or nil.
func (l *ReminderLog) Snapshot() *ReminderSnapshot {
	if l == nil {
		return nil
	}
	return l.Extra.Data()
}
