package anomaly

import "claimdesk/internal/core"

// ScoredExpense is an expense record enriched with its suspicion score and
// the ordered reason codes of every rule that fired. All pass-through fields
// of the input record are preserved.
type ScoredExpense struct {
	core.ExpenseRecord
	SuspicionScore int      `json:"suspicionScore"`
	ReasonCodes    []string `json:"reasonCodes"`
}

// Score evaluates the fixed rule set over one batch of expenses belonging to
// a single comparison population (the caller scopes the batch, typically one
// organization).
//
// The function is pure: it holds no state between calls, performs no I/O,
// never errors, and produces new records rather than mutating its input.
// Output length and order exactly match the input. Two linear passes: one
// for the baseline, one for rule evaluation.
//
// Malformed amounts are coerced to 0 for both the baseline and rule
// evaluation, so a single bad record degrades its own score rather than
// aborting the batch.
func Score(expenses []core.ExpenseRecord) []ScoredExpense {
	amounts := make([]float64, len(expenses))
	for i, e := range expenses {
		amounts[i] = core.CoerceAmount(e.Amount)
	}
	baseline := ComputeBaseline(amounts)

	scored := make([]ScoredExpense, len(expenses))
	for i, e := range expenses {
		score := 0
		reasons := []string{}
		for _, r := range rules {
			if r.Applies(e, amounts[i], baseline) {
				score += r.Weight
				reasons = append(reasons, r.ID)
			}
		}
		scored[i] = ScoredExpense{
			ExpenseRecord:  e,
			SuspicionScore: score,
			ReasonCodes:    reasons,
		}
	}
	return scored
}
