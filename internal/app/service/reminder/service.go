package reminder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/duesignal/duesignal/internal/models"
	"github.com/duesignal/duesignal/internal/platform/mail"
	"github.com/duesignal/duesignal/pkg/dates"
	"github.com/duesignal/duesignal/pkg/logctx"
	"github.com/duesignal/duesignal/pkg/metrics"
)

// Store selects reminder candidates and persists one batch atomically.
type Store interface {
	// DueOn returns subscriptions whose next_reminder_date equals date exactly.
	DueOn(ctx context.Context, date string) ([]*models.Subscription, error)
	// CommitBatch persists all staged log entries and schedule advances as a
	// single unit: either every staged change lands or none do.
	CommitBatch(ctx context.Context, logs []*models.ReminderLog, advances []*ScheduleAdvance) error
}

// Ledger answers whether a reminder was already dispatched for the pair.
// The check is a best-effort read-then-act guard; see the ReminderLog model
// for the documented race window between two overlapping runs.
type Ledger interface {
	HasBeenSent(ctx context.Context, subscriptionID, reminderDate string) (bool, error)
}

// ScheduleAdvance is a staged partial update of one subscription's schedule.
type ScheduleAdvance struct {
	SubscriptionID   string
	NextDueDate      string
	NextReminderDate *string
}

// Result summarizes one batch run.
type Result struct {
	Date          string `json:"date"`
	Matched       int    `json:"matched"`
	Recorded      int    `json:"recorded"`
	Skipped       int    `json:"skipped"`
	Advanced      int    `json:"advanced"`
	EmailsSent    int    `json:"emails_sent"`
	EmailFailures int    `json:"email_failures"`
}

type Service struct {
	store  Store
	ledger Ledger
	mailer mail.Mailer
	mtr    *metrics.ReminderMetrics
	log    *zap.SugaredLogger
}

func NewService(store Store, ledger Ledger, mailer mail.Mailer, mtr *metrics.ReminderMetrics, log *zap.SugaredLogger) *Service {
	return &Service{store: store, ledger: ledger, mailer: mailer, mtr: mtr, log: log}
}

// Run processes all reminders due on the given target date (YYYY-MM-DD).
//
// Candidates are walked sequentially: dedup check, then staging of the log
// entry, the outgoing email and the schedule advance. All staged log entries
// and advances are committed in one transaction; emails are dispatched
// concurrently after the commit and awaited, and their failures never affect
// the committed state. A selection or commit failure aborts the whole run.
func (s *Service) Run(ctx context.Context, date string) (*Result, error) {
	if _, err := dates.Parse(date); err != nil {
		return nil, err
	}

	start := time.Now()
	log := logctx.FromCtx(ctx, s.log).With("date", date)
	log.Infow("processing reminders")

	subs, err := s.store.DueOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to select due subscriptions: %w", err)
	}

	res := &Result{Date: date, Matched: len(subs)}
	if s.mtr != nil {
		s.mtr.Matched.Add(float64(len(subs)))
		defer func() { s.mtr.BatchDuration.Observe(metrics.MillisecondsSince(start)) }()
	}
	if len(subs) == 0 {
		log.Infow("no subscriptions due")
		return res, nil
	}
	log.Infow("found due subscriptions", "count", len(subs))

	var (
		logs     []*models.ReminderLog
		advances []*ScheduleAdvance
		outgoing []*message
	)

	for _, sub := range subs {
		sent, err := s.ledger.HasBeenSent(ctx, sub.ID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to check reminder ledger for %s: %w", sub.ID, err)
		}
		if sent {
			log.Infow("reminder already sent, skipping", "subscription_id", sub.ID)
			res.Skipped++
			continue
		}

		logs = append(logs, newLogEntry(sub, date))

		if to := sub.Email(); to != "" {
			outgoing = append(outgoing, buildReminderMessage(to, sub))
		} else {
			log.Warnw("no user email, skipping dispatch", "subscription_id", sub.ID)
		}

		if sched, ok := dates.NextSchedule(sub.NextDueDate, sub.Cycle, sub.ReminderDaysBefore); ok {
			advances = append(advances, &ScheduleAdvance{
				SubscriptionID:   sub.ID,
				NextDueDate:      sched.NextDueDate,
				NextReminderDate: sched.NextReminderDate,
			})
		} else {
			log.Infow("schedule not auto-advanced",
				"subscription_id", sub.ID,
				"billing_cycle", sub.Cycle,
				"next_due_date", sub.NextDueDate,
			)
		}
	}

	if err := s.store.CommitBatch(ctx, logs, advances); err != nil {
		return nil, fmt.Errorf("failed to commit reminder batch: %w", err)
	}
	res.Recorded = len(logs)
	res.Advanced = len(advances)
	log.Infow("reminder batch committed", "recorded", len(logs), "advanced", len(advances))

	res.EmailsSent, res.EmailFailures = s.dispatch(ctx, outgoing)

	if s.mtr != nil {
		s.mtr.Recorded.Add(float64(res.Recorded))
		s.mtr.Skipped.Add(float64(res.Skipped))
		s.mtr.Advanced.Add(float64(res.Advanced))
		s.mtr.EmailsSent.Add(float64(res.EmailsSent))
		s.mtr.EmailFailures.Add(float64(res.EmailFailures))
	}
	return res, nil
}

// dispatch fires all staged emails concurrently and waits for completion.
// Failures are logged per recipient and counted, nothing more.
func (s *Service) dispatch(ctx context.Context, msgs []*message) (sent, failed int) {
	if len(msgs) == 0 {
		return 0, 0
	}

	var ok, ko int64
	var wg sync.WaitGroup
	for _, m := range msgs {
		wg.Add(1)
		go func(m *message) {
			defer wg.Done()
			if err := s.mailer.Send(ctx, m.to, m.subject, m.text, m.html); err != nil {
				logctx.FromCtx(ctx, s.log).Errorw("failed to send reminder email",
					"to", m.to, "subscription_id", m.subscriptionID, "err", err)
				atomic.AddInt64(&ko, 1)
				return
			}
			atomic.AddInt64(&ok, 1)
		}(m)
	}
	wg.Wait()
	return int(ok), int(ko)
}

var Module = fx.Options(
	fx.Provide(NewGormStore),
	fx.Provide(func(s *GormStore) Store { return s }),
	fx.Provide(func(s *GormStore) Ledger { return s }),
	fx.Provide(metrics.NewReminderMetrics),
	fx.Provide(NewService),
)
