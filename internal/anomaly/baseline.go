package anomaly

import "math"

// Baseline holds the population statistics of one scoring batch. It is the
// comparison base for the statistical outlier rule and is recomputed from
// scratch on every Score call; nothing is cached between batches.
type Baseline struct {
	Count  int
	Mean   float64
	StdDev float64
}

// ComputeBaseline computes the population mean and standard deviation over
// the given amounts (divide by N, not N-1). The guarded divisor makes the
// empty batch well-defined: mean and stddev are both 0. A batch of 0 or 1
// records yields stddev 0, which keeps the outlier rule inert; that is
// accepted rather than special-cased.
func ComputeBaseline(amounts []float64) Baseline {
	n := len(amounts)
	div := float64(max(n, 1))

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / div

	var sqSum float64
	for _, a := range amounts {
		d := a - mean
		sqSum += d * d
	}
	variance := sqSum / div

	return Baseline{
		Count:  n,
		Mean:   mean,
		StdDev: math.Sqrt(variance),
	}
}
