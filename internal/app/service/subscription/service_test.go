package subscription

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duesignal/duesignal/pkg/types"
)

func intPtr(n int) *int { return &n }

func TestValidate(t *testing.T) {
	ok := func(err error) { require.NoError(t, err) }
	bad := func(err error) { require.ErrorIs(t, err, ErrInvalid) }

	ok(validate("u1", "Netflix", types.BillingCycleMonthly, 15.99, "2025-01-31", intPtr(3)))
	ok(validate("u1", "Gym", types.BillingCycleCustom, 0, "2025-06-01", nil))

	bad(validate("", "Netflix", types.BillingCycleMonthly, 15.99, "2025-01-31", nil))
	bad(validate("u1", "", types.BillingCycleMonthly, 15.99, "2025-01-31", nil))
	bad(validate("u1", "Netflix", types.BillingCycle("quarterly"), 15.99, "2025-01-31", nil))
	bad(validate("u1", "Netflix", types.BillingCycleMonthly, -1, "2025-01-31", nil))
	bad(validate("u1", "Netflix", types.BillingCycleMonthly, 15.99, "", nil))
	bad(validate("u1", "Netflix", types.BillingCycleMonthly, 15.99, "2025-02-30", nil))
	bad(validate("u1", "Netflix", types.BillingCycleMonthly, 15.99, "2025-01-31", intPtr(-1)))
}

func TestComputeReminder(t *testing.T) {
	require.Nil(t, computeReminder("2025-01-31", nil))

	got := computeReminder("2025-01-31", intPtr(3))
	require.NotNil(t, got)
	require.Equal(t, "2025-01-28", *got)

	// Offset zero reminds on the due date itself.
	got = computeReminder("2025-01-31", intPtr(0))
	require.Equal(t, "2025-01-31", *got)

	// Offsets crossing a month boundary.
	got = computeReminder("2025-03-01", intPtr(5))
	require.Equal(t, "2025-02-24", *got)
}
