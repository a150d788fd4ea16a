package anomaly

// Report aggregates a scored batch into the KPI figures the dashboard
// displays. It is consumer-side arithmetic kept next to the scorer so every
// surface computes the same numbers.
type Report struct {
	Total        int            `json:"total"`
	Flagged      int            `json:"flagged"`
	High         int            `json:"high"`
	Medium       int            `json:"medium"`
	Low          int            `json:"low"`
	AverageScore float64        `json:"averageScore"`
	ByReason     map[string]int `json:"byReason"`
}

// BuildReport computes triage KPIs over a scored batch. An empty batch
// yields a zero report with an average of 0.
func BuildReport(scored []ScoredExpense) Report {
	r := Report{
		Total:    len(scored),
		ByReason: make(map[string]int, len(rules)),
	}

	var sum int
	for _, s := range scored {
		sum += s.SuspicionScore
		if Flagged(s.SuspicionScore) {
			r.Flagged++
		}
		switch SeverityFor(s.SuspicionScore) {
		case SeverityHigh:
			r.High++
		case SeverityMedium:
			r.Medium++
		default:
			r.Low++
		}
		for _, code := range s.ReasonCodes {
			r.ByReason[code]++
		}
	}

	if len(scored) > 0 {
		r.AverageScore = float64(sum) / float64(len(scored))
	}
	return r
}
