package stats

import "math"

// minScale keeps an empty chart readable.
const minScale = 15

// YScale is a chart axis in minutes.
type YScale struct {
	Ticks []float64 `json:"ticks"`
	Max   float64   `json:"max"`
	Step  float64   `json:"step"`
}

// SmartYScale picks a tick step for the larger of maxValue and refValue and
// leaves at least 20% headroom above it. Ticks run from 0 to Max inclusive.
func SmartYScale(maxValue, refValue float64) YScale {
	top := math.Max(math.Max(sanitize(maxValue), sanitize(refValue)), minScale)

	var step float64
	switch {
	case top <= 30:
		step = 15
	case top <= 120:
		step = 30
	case top <= 240:
		step = 60
	default:
		step = math.Ceil(top/6/60) * 60
	}

	scaleMax := math.Ceil(top*1.2/step) * step
	n := int(math.Round(scaleMax / step))
	ticks := make([]float64, n+1)
	for i := range ticks {
		ticks[i] = float64(i) * step
	}
	ticks[n] = scaleMax
	return YScale{Ticks: ticks, Max: scaleMax, Step: step}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// GoalLine scales a daily goal in minutes to one bucket of g, using the
// rolling length of g as the day count.
func GoalLine(g Granularity, dailyGoal float64) float64 {
	return nonNegative(dailyGoal) * float64(RollingDays(g))
}
