package metrics

import (
	"math"

	"finpulse/internal/core"
)

// TrendBand is the single relative-change threshold, in percent, used
// everywhere a trend direction is decided. A change whose magnitude does not
// exceed the band classifies as stable; the comparison is strictly greater
// than, so exactly +10% is still stable.
const TrendBand = 10.0

// PercentChange returns the relative change from previous to current, in
// percent. A previous value below 1 is clamped to 1 so a jump from zero
// yields a finite percentage instead of dividing by zero.
func PercentChange(previous, current float64) float64 {
	return (current - previous) / math.Max(previous, 1) * 100
}

// ClassifyTrend compares two scalar aggregates and classifies the direction
// of movement against the trend band.
func ClassifyTrend(previous, current float64) core.Trend {
	change := PercentChange(previous, current)
	switch {
	case change > TrendBand:
		return core.TrendUp
	case change < -TrendBand:
		return core.TrendDown
	default:
		return core.TrendStable
	}
}
