package dates

import (
	"fmt"
	"time"

	"github.com/duesignal/duesignal/pkg/types"
)

// Layout is the wire format for calendar dates. All dates in the system are
// logical days in UTC, not instants.
const Layout = "2006-01-02"

// Date is a calendar day with no time-of-day component, anchored in UTC.
type Date struct {
	t time.Time
}

// Parse validates s against the YYYY-MM-DD form and rejects strings that
// decompose to an invalid date (e.g. "2023-02-30").
func Parse(s string) (Date, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid calendar date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// Today returns the current calendar date in the given location.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	return Date{t: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.t.Format(Layout)
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// AddDays shifts the date by an exact day count.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonths shifts the month field and clamps the day-of-month to the last
// valid day of the target month, so Jan 31 + 1 month is Feb 28 (or Feb 29 in a
// leap year), never Mar 3. Clamping keeps billing dates stable across cycles.
func (d Date) AddMonths(n int) Date {
	year, month, day := d.t.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return Date{t: time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)}
}

// AddYears applies the same clamping rule as AddMonths, so Feb 29 + 1 year on
// a non-leap target year is Feb 28.
func (d Date) AddYears(n int) Date {
	year, month, day := d.t.Date()
	if last := daysIn(year+n, month); day > last {
		day = last
	}
	return Date{t: time.Date(year+n, month, day, 0, 0, 0, 0, time.UTC)}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Schedule is the advanced billing schedule for one cycle.
type Schedule struct {
	NextDueDate      string
	NextReminderDate *string
}

// NextSchedule computes the schedule after the current due date for the given
// billing cycle. It returns false when the schedule must not auto-advance:
// the cycle is custom or unrecognized, or the current due date is absent or
// unparseable.
func NextSchedule(currentDueDate string, cycle types.BillingCycle, reminderDaysBefore *int) (*Schedule, bool) {
	if currentDueDate == "" || !cycle.AutoAdvances() {
		return nil, false
	}
	due, err := Parse(currentDueDate)
	if err != nil {
		return nil, false
	}

	var next Date
	switch cycle {
	case types.BillingCycleMonthly:
		next = due.AddMonths(1)
	case types.BillingCycleYearly:
		next = due.AddYears(1)
	case types.BillingCycleWeekly:
		next = due.AddDays(7)
	default:
		return nil, false
	}

	sched := &Schedule{NextDueDate: next.String()}
	if reminderDaysBefore != nil && *reminderDaysBefore >= 0 {
		reminder := next.AddDays(-*reminderDaysBefore).String()
		sched.NextReminderDate = &reminder
	}
	return sched, true
}

// ReminderDate derives the reminder date as dueDate minus daysBefore days.
// It uses the same arithmetic as NextSchedule so the two always agree.
func ReminderDate(dueDate string, daysBefore int) (string, error) {
	due, err := Parse(dueDate)
	if err != nil {
		return "", err
	}
	return due.AddDays(-daysBefore).String(), nil
}
