package subscription

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/duesignal/duesignal/internal/models"
	"github.com/duesignal/duesignal/pkg/dates"
	"github.com/duesignal/duesignal/pkg/logctx"
	"github.com/duesignal/duesignal/pkg/tool"
	"github.com/duesignal/duesignal/pkg/types"
)

var (
	ErrInvalid  = errors.New("invalid subscription")
	ErrNotFound = errors.New("subscription not found")
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

type CreateRequest struct {
	UserID             string             `json:"user_id"`
	Name               string             `json:"name"`
	Category           string             `json:"category"`
	BillingCycle       types.BillingCycle `json:"billing_cycle"`
	Amount             float64            `json:"amount"`
	Currency           string             `json:"currency"`
	NextDueDate        string             `json:"next_due_date"`
	ReminderDaysBefore *int               `json:"reminder_days_before"`
	UserEmail          *string            `json:"user_email"`
}

// UpdateRequest carries optional field changes; nil fields are left untouched.
type UpdateRequest struct {
	Name               *string             `json:"name"`
	Category           *string             `json:"category"`
	BillingCycle       *types.BillingCycle `json:"billing_cycle"`
	Amount             *float64            `json:"amount"`
	Currency           *string             `json:"currency"`
	NextDueDate        *string             `json:"next_due_date"`
	ReminderDaysBefore *int                `json:"reminder_days_before"`
	UserEmail          *string             `json:"user_email"`
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*models.Subscription, error) {
	if err := validate(req.UserID, req.Name, req.BillingCycle, req.Amount, req.NextDueDate, req.ReminderDaysBefore); err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		ID:                 tool.GenerateUUIDV7(),
		UserID:             req.UserID,
		Name:               req.Name,
		Category:           req.Category,
		Cycle:              req.BillingCycle,
		Amount:             req.Amount,
		Currency:           req.Currency,
		NextDueDate:        req.NextDueDate,
		ReminderDaysBefore: req.ReminderDaysBefore,
		UserEmail:          req.UserEmail,
	}
	sub.NextReminderDate = computeReminder(sub.NextDueDate, sub.ReminderDaysBefore)

	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription created",
		"subscription_id", sub.ID, "user_id", sub.UserID, "next_reminder_date", sub.NextReminderDate)
	return sub, nil
}

// Update applies the requested changes and recomputes next_reminder_date in
// the same transaction whenever next_due_date or reminder_days_before moved,
// keeping the derived-date invariant intact under user edits.
func (s *Service) Update(ctx context.Context, id, userID string, req *UpdateRequest) (*models.Subscription, error) {
	var sub *models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := loadOwned(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		sub = loaded

		if req.Name != nil {
			sub.Name = *req.Name
		}
		if req.Category != nil {
			sub.Category = *req.Category
		}
		if req.BillingCycle != nil {
			sub.Cycle = *req.BillingCycle
		}
		if req.Amount != nil {
			sub.Amount = *req.Amount
		}
		if req.Currency != nil {
			sub.Currency = *req.Currency
		}
		if req.NextDueDate != nil {
			sub.NextDueDate = *req.NextDueDate
		}
		if req.ReminderDaysBefore != nil {
			sub.ReminderDaysBefore = req.ReminderDaysBefore
		}
		if req.UserEmail != nil {
			sub.UserEmail = req.UserEmail
		}

		if err := validate(sub.UserID, sub.Name, sub.Cycle, sub.Amount, sub.NextDueDate, sub.ReminderDaysBefore); err != nil {
			return err
		}
		sub.NextReminderDate = computeReminder(sub.NextDueDate, sub.ReminderDaysBefore)

		if err := tx.Save(sub).Error; err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription updated",
		"subscription_id", sub.ID, "next_reminder_date", sub.NextReminderDate)
	return sub, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("next_due_date asc").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func loadOwned(ctx context.Context, tx *gorm.DB, id, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := tx.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

// validate rejects malformed records before they reach the store, so the
// batch's date arithmetic never sees undefined fields.
func validate(userID, name string, cycle types.BillingCycle, amount float64, nextDueDate string, reminderDaysBefore *int) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalid)
	}
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if !cycle.Known() {
		return fmt.Errorf("%w: unknown billing cycle %q", ErrInvalid, cycle)
	}
	if amount < 0 {
		return fmt.Errorf("%w: amount must be non-negative", ErrInvalid)
	}
	if nextDueDate == "" {
		return fmt.Errorf("%w: next_due_date is required", ErrInvalid)
	}
	if _, err := dates.Parse(nextDueDate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if reminderDaysBefore != nil && *reminderDaysBefore < 0 {
		return fmt.Errorf("%w: reminder_days_before must be non-negative", ErrInvalid)
	}
	return nil
}

// computeReminder derives next_reminder_date, or nil when no offset is set.
// Inputs are validated before this is called.
func computeReminder(nextDueDate string, reminderDaysBefore *int) *string {
	if reminderDaysBefore == nil {
		return nil
	}
	d, err := dates.ReminderDate(nextDueDate, *reminderDaysBefore)
	if err != nil {
		return nil
	}
	return &d
}

var Module = fx.Options(
	fx.Provide(NewService),
)
