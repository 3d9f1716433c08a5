package oracle

// Weather-code classification thresholds. Codes above the rain threshold are
// rain days, codes below the drought threshold are drought days; codes in
// between count toward neither run.
const (
	rainCodeThreshold    = 299
	droughtCodeThreshold = 150

	// A consecutive run must exceed this many days to count at all; shorter
	// runs, including one still open at the end of the series, are noise.
	minRunDays = 4
)

// RunReport carries the two scalar counters derived from a daily code series.
type RunReport struct {
	RainDays    int `json:"rain_days"`
	DroughtDays int `json:"drought_days"`
}

// ComputeRuns derives the longest counted consecutive rain run and drought
// run from a per-day weather code series. It is a pure function: the same
// series always yields the same report, which is what lets the oracle
// re-derive and attest another party's claim.
func ComputeRuns(codes []int) RunReport {
	var rainCounter, droughtCounter int
	var longestRain, longestDrought int

	for _, code := range codes {
		if code > rainCodeThreshold {
			rainCounter++
		} else {
			longestRain = closeRun(rainCounter, longestRain)
			rainCounter = 0
		}

		if code < droughtCodeThreshold {
			droughtCounter++
		} else {
			longestDrought = closeRun(droughtCounter, longestDrought)
			droughtCounter = 0
		}
	}

	longestRain = closeRun(rainCounter, longestRain)
	longestDrought = closeRun(droughtCounter, longestDrought)

	return RunReport{RainDays: longestRain, DroughtDays: longestDrought}
}

func closeRun(counter, longest int) int {
	if counter > minRunDays && counter > longest {
		return counter
	}
	return longest
}
