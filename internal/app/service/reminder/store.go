package reminder

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/duesignal/duesignal/internal/models"
	"github.com/duesignal/duesignal/pkg/tool"
)

// GormStore is the Postgres-backed candidate store and reminder ledger.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) DueOn(ctx context.Context, date string) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	if err := g.db.WithContext(ctx).Where("next_reminder_date = ?", date).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (g *GormStore) HasBeenSent(ctx context.Context, subscriptionID, reminderDate string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.ReminderLog{}).
		Where("subscription_id = ? AND next_reminder_date = ?", subscriptionID, reminderDate).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CommitBatch writes all log entries and schedule advances in one transaction.
// Advances touch only the two schedule fields, so a concurrent user edit to
// other fields between SELECT and commit is never clobbered (last write wins
// on the advanced fields themselves).
func (g *GormStore) CommitBatch(ctx context.Context, logs []*models.ReminderLog, advances []*ScheduleAdvance) error {
	if len(logs) == 0 && len(advances) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range logs {
			if entry.ID == "" {
				entry.ID = tool.GenerateUUIDV7()
			}
		}
		if len(logs) > 0 {
			if err := tx.Create(logs).Error; err != nil {
				return fmt.Errorf("failed to create reminder logs: %w", err)
			}
		}
		for _, adv := range advances {
			err := tx.Model(&models.Subscription{}).
				Where("id = ?", adv.SubscriptionID).
				Updates(map[string]any{
					"next_due_date":      adv.NextDueDate,
					"next_reminder_date": adv.NextReminderDate,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to advance subscription %s: %w", adv.SubscriptionID, err)
			}
		}
		return nil
	})
}
