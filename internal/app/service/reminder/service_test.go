package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duesignal/duesignal/internal/models"
	"github.com/duesignal/duesignal/pkg/types"
)

type fakeStore struct {
	mu   sync.Mutex
	subs map[string]*models.Subscription
	logs []*models.ReminderLog

	dueErr    error
	commitErr error
	commits   int
}

func newFakeStore(subs ...*models.Subscription) *fakeStore {
	s := &fakeStore{subs: map[string]*models.Subscription{}}
	for _, sub := range subs {
		s.subs[sub.ID] = sub
	}
	return s
}

func (f *fakeStore) DueOn(_ context.Context, date string) ([]*models.Subscription, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Subscription
	for _, sub := range f.subs {
		if sub.NextReminderDate != nil && *sub.NextReminderDate == date {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeStore) CommitBatch(_ context.Context, logs []*models.ReminderLog, advances []*ScheduleAdvance) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
	f.logs = append(f.logs, logs...)
	for _, adv := range advances {
		sub := f.subs[adv.SubscriptionID]
		sub.NextDueDate = adv.NextDueDate
		sub.NextReminderDate = adv.NextReminderDate
	}
	return nil
}

func (f *fakeStore) HasBeenSent(_ context.Context, subscriptionID, reminderDate string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range f.logs {
		if entry.SubscriptionID == subscriptionID && entry.NextReminderDate == reminderDate {
			return true, nil
		}
	}
	return false, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func monthlySub() *models.Subscription {
	return &models.Subscription{
		ID:                 "sub-1",
		UserID:             "user-1",
		Name:               "Netflix",
		Cycle:              types.BillingCycleMonthly,
		Amount:             15.99,
		Currency:           "USD",
		NextDueDate:        "2025-01-31",
		ReminderDaysBefore: intPtr(3),
		NextReminderDate:   strPtr("2025-01-28"),
		UserEmail:          strPtr("user@example.com"),
	}
}

func newTestService(store *fakeStore, mailer *fakeMailer) *Service {
	return NewService(store, store, mailer, nil, zap.NewNop().Sugar())
}

func TestRun_MonthlyClampScenario(t *testing.T) {
	store := newFakeStore(monthlySub())
	mailer := &fakeMailer{}
	svc := newTestService(store, mailer)

	res, err := svc.Run(context.Background(), "2025-01-28")
	require.NoError(t, err)
	require.Equal(t, 1, res.Matched)
	require.Equal(t, 1, res.Recorded)
	require.Equal(t, 1, res.Advanced)
	require.Equal(t, 1, res.EmailsSent)
	require.Zero(t, res.EmailFailures)

	sub := store.subs["sub-1"]
	require.Equal(t, "2025-02-28", sub.NextDueDate)
	require.Equal(t, "2025-02-25", *sub.NextReminderDate)

	require.Len(t, store.logs, 1)
	entry := store.logs[0]
	require.Equal(t, "sub-1", entry.SubscriptionID)
	require.Equal(t, "2025-01-28", entry.NextReminderDate)
	require.Equal(t, "2025-01-31", *entry.NextDueDate)
	require.Equal(t, 3, *entry.ReminderDaysBefore)

	require.Equal(t, []string{"user@example.com"}, mailer.sent)
}

func TestRun_SecondRunIsNoOp(t *testing.T) {
	store := newFakeStore(monthlySub())
	mailer := &fakeMailer{}
	svc := newTestService(store, mailer)

	_, err := svc.Run(context.Background(), "2025-01-28")
	require.NoError(t, err)

	// Rewind only the reminder date, simulating a second trigger for the same
	// day; the ledger entry must make the candidate a pure skip.
	store.subs["sub-1"].NextReminderDate = strPtr("2025-01-28")
	due := "2025-01-31"
	store.subs["sub-1"].NextDueDate = due

	res, err := svc.Run(context.Background(), "2025-01-28")
	require.NoError(t, err)
	require.Equal(t, 1, res.Matched)
	require.Equal(t, 1, res.Skipped)
	require.Zero(t, res.Recorded)
	require.Zero(t, res.Advanced)
	require.Zero(t, res.EmailsSent)

	require.Len(t, store.logs, 1)
	require.Equal(t, due, store.subs["sub-1"].NextDueDate)
	require.Len(t, mailer.sent, 1)
}

func TestRun_NoEmailStillLogsAndAdvances(t *testing.T) {
	sub := monthlySub()
	sub.UserEmail = nil
	store := newFakeStore(sub)
	mailer := &fakeMailer{}
	svc := newTestService(store, mailer)

	res, err := svc.Run(context.Background(), "2025-01-28")
	require.NoError(t, err)
	require.Equal(t, 1, res.Recorded)
	require.Equal(t, 1, res.Advanced)
	require.Zero(t, res.EmailsSent)
	require.Empty(t, mailer.sent)
	require.Equal(t, "2025-02-28", store.subs["sub-1"].NextDueDate)
}

func TestRun_CustomCycleNeverAdvances(t *testing.T) {
	sub := monthlySub()
	sub.Cycle = types.BillingCycleCustom
	store := newFakeStore(sub)
	svc := newTestService(store, &fakeMailer{})

	res, err := svc.Run(context.Background(), "2025-01-28")
	require.NoError(t, err)
	require.Equal(t, 1, res.Recorded)
	require.Zero(t, res.Advanced)
	require.Equal(t, "2025-01-31", store.subs["sub-1"].NextDueDate)
	require.Equal(t, "2025-01-28", *store.subs["sub-1"].NextReminderDate)

	// Repeated runs keep skipping on the ledger and never touch the schedule.
	res, err = svc.Run(context.Background(), "2025-01-28")
	require.NoError(t, err)
	require.Equal(t, 1, res.Skipped)
	require.Equal(t, "2025-01-31", store.subs["sub-1"].NextDueDate)
}

func TestRun_NoMatchesIsNoOp(t *testing.T) {
	store := newFakeStore(monthlySub())
	mailer := &fakeMailer{}
	svc := newTestService(store, mailer)

	res, err := svc.Run(context.Background(), "2030-06-15")
	require.NoError(t, err)
	require.Zero(t, res.Matched)
	require.Zero(t, store.commits)
	require.Empty(t, mailer.sent)
}

func TestRun_EmailFailureDoesNotAffectCommit(t *testing.T) {
	store := newFakeStore(monthlySub())
	mailer := &fakeMailer{err: errors.New("smtp: connection refused")}
	svc := newTestService(store, mailer)

	res, err := svc.Run(context.Background(), "2025-01-28")
	require.NoError(t, err)
	require.Equal(t, 1, res.Recorded)
	require.Equal(t, 1, res.Advanced)
	require.Equal(t, 1, res.EmailFailures)
	require.Zero(t, res.EmailsSent)

	// The reminder is still marked sent and the schedule advanced.
	require.Len(t, store.logs, 1)
	require.Equal(t, "2025-02-28", store.subs["sub-1"].NextDueDate)
}

func TestRun_SelectFailureAbortsInvocation(t *testing.T) {
	store := newFakeStore()
	store.dueErr = errors.New("connection reset")
	svc := newTestService(store, &fakeMailer{})

	_, err := svc.Run(context.Background(), "2025-01-28")
	require.Error(t, err)
}

func TestRun_CommitFailureLeavesCandidatesEligible(t *testing.T) {
	store := newFakeStore(monthlySub())
	store.commitErr = errors.New("deadline exceeded")
	mailer := &fakeMailer{}
	svc := newTestService(store, mailer)

	_, err := svc.Run(context.Background(), "2025-01-28")
	require.Error(t, err)
	require.Empty(t, store.logs)
	require.Empty(t, mailer.sent)

	store.commitErr = nil
	res, err := svc.Run(context.Background(), "2025-01-28")
	require.NoError(t, err)
	require.Equal(t, 1, res.Recorded)
}

func TestRun_RejectsInvalidDate(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeMailer{})
	_, err := svc.Run(context.Background(), "31-01-2025")
	require.Error(t, err)
}
