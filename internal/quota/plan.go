package quota

import (
	"time"

	"admoa/internal/domain"
)

// monthlyGrant is the per-month allotment a paid plan grants per task type.
// Plans 3 and 6 multiply this table by the plan length.
var monthlyGrant = map[string]int{
	domain.TaskFollower:   100,
	domain.TaskLike:       100,
	domain.TaskHotpost:    10,
	domain.TaskMomcafe:    10,
	domain.TaskPowerblog:  1,
	domain.TaskClip:       1,
	domain.TaskBlog:       10,
	domain.TaskReceipt:    10,
	domain.TaskDaangn:     10,
	domain.TaskExperience: 1,
	domain.TaskMyexpense:  10,
}

// PlanMonths returns the contract length of a plan selector.
func PlanMonths(plan string) int {
	switch plan {
	case domain.Plan3:
		return 3
	case domain.Plan6:
		return 6
	default:
		return 1
	}
}

// ForPlan returns the fixed grant for a plan selector, remaining set equal
// to total. Plan 1 grants zero across the board; the admin edits the values
// by hand before commit.
func ForPlan(plan string) Map {
	months := 0
	switch plan {
	case domain.Plan3, domain.Plan6:
		months = PlanMonths(plan)
	}
	m := make(Map, len(domain.QuotaKeys))
	for _, key := range domain.QuotaKeys {
		n := monthlyGrant[key] * months
		m[key] = Allowance{Total: n, Remaining: n}
	}
	return m
}

// EndDate computes the contract end for a plan starting at start.
// AddDate handles month-end overflow the calendar way.
func EndDate(start time.Time, plan string) time.Time {
	return start.AddDate(0, PlanMonths(plan), 0)
}

// Renew merges a fresh plan grant into the current ledger and extends the
// contract. The new end date counts plan months from the later of now and
// the current end, so renewing an unexpired contract extends it rather than
// restarting it.
func Renew(current Map, currentEnd time.Time, plan string, now time.Time) (Map, time.Time) {
	base := now
	if currentEnd.After(now) {
		base = currentEnd
	}
	return Merge(current, ForPlan(plan)), base.AddDate(0, PlanMonths(plan), 0)
}
