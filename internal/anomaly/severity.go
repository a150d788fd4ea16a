package anomaly

// Severity is the coarse triage bucket derived from a suspicion score. The
// scorer does not store it; every consumer derives it through SeverityFor so
// the mapping stays identical across the dashboard, the CSV export and the
// KPI report.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// FlagThreshold is the minimum score at which an expense enters the fraud
// review queue.
const FlagThreshold = 40

const highThreshold = 60

// SeverityFor maps a suspicion score to its severity bucket.
func SeverityFor(score int) Severity {
	switch {
	case score >= highThreshold:
		return SeverityHigh
	case score >= FlagThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Flagged reports whether a score is high enough for human review.
func Flagged(score int) bool {
	return score >= FlagThreshold
}
