package statistics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duesignal/duesignal/pkg/types"
)

func TestMonthlyAmount(t *testing.T) {
	require.Equal(t, 15.0, monthlyAmount(types.BillingCycleMonthly, 15))
	require.Equal(t, 10.0, monthlyAmount(types.BillingCycleYearly, 120))
	require.InDelta(t, 43.33, monthlyAmount(types.BillingCycleWeekly, 10), 0.01)
	require.Zero(t, monthlyAmount(types.BillingCycleCustom, 100))
	require.Zero(t, monthlyAmount(types.BillingCycle("quarterly"), 100))
}
