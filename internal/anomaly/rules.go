// Package anomaly implements the rule-based suspicion scoring engine behind
// the admin anomaly dashboard.
//
// Scoring is purely advisory: it never blocks, mutates or auto-rejects a
// claim. Each batch is scored against its own statistical baseline, so the
// same expense can legitimately receive different scores in different
// batches.
package anomaly

import (
	"math"

	"claimdesk/internal/core"
)

// Reason codes, one per rule. These identifiers are stable: the dashboard
// maps them to human-readable titles and suggested actions.
const (
	ReasonStatisticalOutlier = "statistical_outlier"
	ReasonRoundNumber        = "round_number"
	ReasonWeekendOffice      = "weekend_office"
	ReasonThresholdGaming    = "threshold_gaming"
)

// officeCategory is the free-text category label the weekend rule keys on.
const officeCategory = "office"

// approvalThresholds are the fixed approval ceilings known to the product.
// Claims landing within thresholdWindow units at-or-below one of these look
// like deliberate threshold avoidance.
var approvalThresholds = [...]float64{99, 199, 499, 999, 1999, 4999, 9999}

const thresholdWindow = 10

// Rule is a single scoring rule. Rules are independent: several may fire on
// the same expense and their weights are additive. The predicate sees the
// already-coerced amount alongside the record and the batch baseline.
type Rule struct {
	ID      string
	Weight  int
	Applies func(e core.ExpenseRecord, amount float64, b Baseline) bool
}

// rules is the fixed, ordered rule set. Evaluation order is the order below
// and reason codes preserve it, keeping output deterministic for golden
// comparisons.
var rules = []Rule{
	{
		ID:     ReasonStatisticalOutlier,
		Weight: 30,
		Applies: func(_ core.ExpenseRecord, amount float64, b Baseline) bool {
			return math.Abs(amount-b.Mean) > 2*b.StdDev
		},
	},
	{
		ID:     ReasonRoundNumber,
		Weight: 10,
		Applies: func(_ core.ExpenseRecord, amount float64, _ Baseline) bool {
			if amount < 100 {
				return false
			}
			return math.Mod(amount, 100) == 0 || math.Mod(amount, 1000) == 0
		},
	},
	{
		ID:     ReasonWeekendOffice,
		Weight: 20,
		Applies: func(e core.ExpenseRecord, _ float64, _ Baseline) bool {
			return e.Category == officeCategory && e.Date.IsWeekend()
		},
	},
	{
		ID:     ReasonThresholdGaming,
		Weight: 25,
		Applies: func(_ core.ExpenseRecord, amount float64, _ Baseline) bool {
			for _, t := range approvalThresholds {
				if amount >= t-thresholdWindow && amount <= t {
					return true
				}
			}
			return false
		},
	},
}

// Rules returns the rule set in evaluation order. It exists so consumers can
// render titles for every known reason code without hardcoding the list.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
