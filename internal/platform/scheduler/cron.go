package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/duesignal/duesignal/internal/app/service/reminder"
	cfgpkg "github.com/duesignal/duesignal/pkg/config"
	"github.com/duesignal/duesignal/pkg/dates"
)

const runTimeout = 5 * time.Minute

// Scheduler invokes the reminder batch once per day for "today" in a fixed
// time zone. There is no catch-up for a missed run: a date whose trigger never
// fired is not matched retroactively, so the cron must run reliably every day.
type Scheduler struct {
	engine *cron.Cron
	svc    *reminder.Service
	loc    *time.Location
	spec   string
	log    *zap.SugaredLogger
}

func New(cfg *cfgpkg.Config, svc *reminder.Service, log *zap.SugaredLogger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Scheduler.Timezone, err)
	}
	return &Scheduler{
		engine: cron.New(cron.WithLocation(loc)),
		svc:    svc,
		loc:    loc,
		spec:   cfg.Scheduler.Cron,
		log:    log,
	}, nil
}

func (s *Scheduler) Start() error {
	if _, err := s.engine.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("failed to register reminder cron %q: %w", s.spec, err)
	}
	s.engine.Start()
	s.log.Infow("reminder scheduler started", "cron", s.spec, "timezone", s.loc.String())
	return nil
}

func (s *Scheduler) Stop() {
	<-s.engine.Stop().Done()
	s.log.Infow("reminder scheduler stopped")
}

// runOnce has no caller to report to; a failed daily run is visible only in
// the logs and in the absence of expected reminder log entries.
func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	today := dates.Today(s.loc).String()
	res, err := s.svc.Run(ctx, today)
	if err != nil {
		s.log.Errorw("daily reminder run failed", "date", today, "err", err)
		return
	}
	s.log.Infow("daily reminder run finished",
		"date", res.Date,
		"matched", res.Matched,
		"recorded", res.Recorded,
		"skipped", res.Skipped,
		"advanced", res.Advanced,
		"emails_sent", res.EmailsSent,
		"email_failures", res.EmailFailures,
	)
}

func register(lc fx.Lifecycle, cfg *cfgpkg.Config, s *Scheduler, log *zap.SugaredLogger) {
	if !cfg.Scheduler.Enabled {
		log.Infow("reminder scheduler disabled by config")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return s.Start() },
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(register),
)
