package types

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
	BillingCycleWeekly  BillingCycle = "weekly"
	// BillingCycleCustom marks a schedule managed entirely by the user;
	// the reminder batch never advances it.
	BillingCycleCustom BillingCycle = "custom"
)

// Known reports whether the cycle is one of the values the API accepts.
func (c BillingCycle) Known() bool {
	switch c {
	case BillingCycleMonthly, BillingCycleYearly, BillingCycleWeekly, BillingCycleCustom:
		return true
	}
	return false
}

// AutoAdvances reports whether the reminder batch may advance the schedule
// for this cycle. Custom and unrecognized cycles are frozen until the user
// edits the due date.
func (c BillingCycle) AutoAdvances() bool {
	switch c {
	case BillingCycleMonthly, BillingCycleYearly, BillingCycleWeekly:
		return true
	}
	return false
}
