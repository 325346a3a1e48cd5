package engine

// Regulation periods are twenty minutes; start_time counts seconds from the
// opening faceoff.
const (
	PeriodSeconds = 1200
	FirstPeriod   = 1
	LastPeriod    = 3
)

func ValidPeriod(p int) bool {
	return p >= FirstPeriod && p <= LastPeriod
}

// SliderDomain returns the [min, max] start_time range for period p.
func SliderDomain(p int) (int, int) {
	return PeriodSeconds * (p - 1), PeriodSeconds * p
}
