package statistics

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/duesignal/duesignal/internal/models"
	"github.com/duesignal/duesignal/pkg/dates"
	"github.com/duesignal/duesignal/pkg/types"
)

const DefaultUpcomingHorizonDays = 30

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// UpcomingRenewal is one subscription due within the summary horizon.
type UpcomingRenewal struct {
	SubscriptionID string  `json:"subscription_id"`
	Name           string  `json:"name"`
	NextDueDate    string  `json:"next_due_date"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
}

// Summary is the dashboard view of a user's recurring spend.
type Summary struct {
	SubscriptionCount int `json:"subscription_count"`
	// MonthlyTotals is the normalized monthly spend per currency: yearly
	// amounts divided by 12, weekly multiplied by 52/12, custom excluded.
	MonthlyTotals    map[string]float64 `json:"monthly_totals"`
	UpcomingRenewals []*UpcomingRenewal `json:"upcoming_renewals"`
}

// UserSummary builds the spend summary for one user as of the given date.
func (s *Service) UserSummary(ctx context.Context, userID, today string, horizonDays int) (*Summary, error) {
	from, err := dates.Parse(today)
	if err != nil {
		return nil, err
	}
	if horizonDays <= 0 {
		horizonDays = DefaultUpcomingHorizonDays
	}
	until := from.AddDays(horizonDays).String()

	var subs []*models.Subscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	summary := &Summary{
		SubscriptionCount: len(subs),
		MonthlyTotals:     map[string]float64{},
		UpcomingRenewals:  []*UpcomingRenewal{},
	}

	byCurrency := lo.GroupBy(subs, func(sub *models.Subscription) string { return sub.Currency })
	for currency, group := range byCurrency {
		total := lo.SumBy(group, func(sub *models.Subscription) float64 {
			return monthlyAmount(sub.Cycle, sub.Amount)
		})
		if total > 0 {
			summary.MonthlyTotals[currency] = total
		}
	}

	upcoming := lo.Filter(subs, func(sub *models.Subscription, _ int) bool {
		if sub.NextDueDate == "" {
			return false
		}
		if _, err := dates.Parse(sub.NextDueDate); err != nil {
			return false
		}
		return sub.NextDueDate >= today && sub.NextDueDate <= until
	})
	summary.UpcomingRenewals = lo.Map(upcoming, func(sub *models.Subscription, _ int) *UpcomingRenewal {
		return &UpcomingRenewal{
			SubscriptionID: sub.ID,
			Name:           sub.Name,
			NextDueDate:    sub.NextDueDate,
			Amount:         sub.Amount,
			Currency:       sub.Currency,
		}
	})

	return summary, nil
}

// monthlyAmount normalizes a per-cycle amount to a monthly figure. Custom and
// unrecognized cycles have no defined period and contribute nothing.
func monthlyAmount(cycle types.BillingCycle, amount float64) float64 {
	switch cycle {
	case types.BillingCycleMonthly:
		return amount
	case types.BillingCycleYearly:
		return amount / 12
	case types.BillingCycleWeekly:
		return amount * 52 / 12
	}
	return 0
}

var Module = fx.Options(
	fx.Provide(NewService),
)
