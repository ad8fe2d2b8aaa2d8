package dates

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duesignal/duesignal/pkg/types"
)

func TestParse_RejectsMalformedDates(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "2023-02-30", "2024/01/01", "20240101", "not-a-date"} {
		_, err := Parse(s)
		require.Error(t, err, "expected %q to be rejected", s)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	d, err := Parse("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, "2024-02-29", d.String())
}

func TestAddMonths_ClampsToLastDay(t *testing.T) {
	cases := []struct {
		in     string
		months int
		want   string
	}{
		{"2024-01-31", 1, "2024-02-29"}, // leap year
		{"2023-01-31", 1, "2023-02-28"},
		{"2025-01-31", 1, "2025-02-28"},
		{"2025-02-28", 1, "2025-03-28"},
		{"2024-03-31", 1, "2024-04-30"},
		{"2024-12-15", 1, "2025-01-15"},
		{"2024-10-31", 4, "2025-02-28"},
	}
	for _, tc := range cases {
		d, err := Parse(tc.in)
		require.NoError(t, err)
		require.Equal(t, tc.want, d.AddMonths(tc.months).String(), "%s + %dm", tc.in, tc.months)
	}
}

func TestAddYears_ClampsLeapDay(t *testing.T) {
	d, err := Parse("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, "2025-02-28", d.AddYears(1).String())
	require.Equal(t, "2028-02-29", d.AddYears(4).String())
}

func TestAddDays(t *testing.T) {
	d, err := Parse("2025-01-01")
	require.NoError(t, err)
	require.Equal(t, "2024-12-29", d.AddDays(-3).String())
	require.Equal(t, "2025-01-08", d.AddDays(7).String())
}

func TestNextSchedule_Monthly(t *testing.T) {
	offset := 3
	sched, ok := NextSchedule("2025-01-31", types.BillingCycleMonthly, &offset)
	require.True(t, ok)
	require.Equal(t, "2025-02-28", sched.NextDueDate)
	require.NotNil(t, sched.NextReminderDate)
	require.Equal(t, "2025-02-25", *sched.NextReminderDate)
}

func TestNextSchedule_WeeklyAndYearly(t *testing.T) {
	sched, ok := NextSchedule("2025-03-01", types.BillingCycleWeekly, nil)
	require.True(t, ok)
	require.Equal(t, "2025-03-08", sched.NextDueDate)
	require.Nil(t, sched.NextReminderDate)

	offset := 7
	sched, ok = NextSchedule("2024-02-29", types.BillingCycleYearly, &offset)
	require.True(t, ok)
	require.Equal(t, "2025-02-28", sched.NextDueDate)
	require.Equal(t, "2025-02-21", *sched.NextReminderDate)
}

func TestNextSchedule_NoAutoAdvance(t *testing.T) {
	offset := 3
	_, ok := NextSchedule("2025-01-31", types.BillingCycleCustom, &offset)
	require.False(t, ok)

	_, ok = NextSchedule("2025-01-31", types.BillingCycle("quarterly"), &offset)
	require.False(t, ok)

	_, ok = NextSchedule("", types.BillingCycleMonthly, &offset)
	require.False(t, ok)

	_, ok = NextSchedule("garbage", types.BillingCycleMonthly, &offset)
	require.False(t, ok)
}

// The standalone reminder computation must agree with the one embedded in
// NextSchedule for the same inputs.
func TestReminderDate_AgreesWithNextSchedule(t *testing.T) {
	for _, offset := range []int{0, 1, 3, 14, 45} {
		o := offset
		sched, ok := NextSchedule("2025-01-31", types.BillingCycleMonthly, &o)
		require.True(t, ok)

		got, err := ReminderDate(sched.NextDueDate, offset)
		require.NoError(t, err)
		require.Equal(t, *sched.NextReminderDate, got)
	}
}
