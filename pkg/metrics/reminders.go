package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MillisecondsSince returns the elapsed time since start in milliseconds.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}

// ReminderMetrics counts the outcomes of reminder batch runs.
type ReminderMetrics struct {
	Matched       prometheus.Counter
	Recorded      prometheus.Counter
	Skipped       prometheus.Counter
	Advanced      prometheus.Counter
	EmailsSent    prometheus.Counter
	EmailFailures prometheus.Counter
	BatchDuration prometheus.Histogram
}

func NewReminderMetrics() *ReminderMetrics {
	m := &ReminderMetrics{
		Matched:       newBatchCounter("reminder_matched_total", "Subscriptions matched by nextReminderDate per batch run."),
		Recorded:      newBatchCounter("reminder_recorded_total", "Reminder log entries written."),
		Skipped:       newBatchCounter("reminder_skipped_total", "Candidates skipped because a log entry already existed."),
		Advanced:      newBatchCounter("reminder_advanced_total", "Subscriptions whose schedule was advanced."),
		EmailsSent:    newBatchCounter("reminder_emails_sent_total", "Reminder emails delivered."),
		EmailFailures: newBatchCounter("reminder_email_failures_total", "Reminder emails that failed to deliver."),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reminder_batch_dur_ms",
			Help:    "Reminder batch latency in milliseconds.",
			Buckets: HistogramBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{
		m.Matched, m.Recorded, m.Skipped, m.Advanced, m.EmailsSent, m.EmailFailures, m.BatchDuration,
	} {
		// Re-registration (tests, restarts within one process) is not fatal.
		_ = prometheus.Register(c)
	}
	return m
}

func newBatchCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
}
