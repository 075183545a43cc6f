// Package forecast implements next-month spending projections and budget
// risk scoring over monthly aggregate series. All functions are pure; the
// caller supplies the historical totals.
package forecast

import (
	"math"
)

// Forecast methods.
const (
	MethodSMA      = "sma"
	MethodEMA      = "ema"
	MethodLinear   = "linear"
	MethodSeasonal = "seasonal"
	MethodEnsemble = "ensemble"
	MethodAverage  = "average"
	MethodNoData   = "no_data"
	MethodAuto     = "auto"
)

// Confidence grades derived from the coefficient of variation.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// SMA returns the simple moving average of the last window values. Short
// series fall back to the plain average.
func SMA(data []float64, window int) float64 {
	if len(data) == 0 {
		return 0
	}
	if len(data) < window {
		return mean(data)
	}
	return mean(data[len(data)-window:])
}

// EMA returns an exponentially smoothed forecast with the given alpha.
func EMA(data []float64, alpha float64) float64 {
	if len(data) == 0 {
		return 0
	}

	f := data[0]
	for _, v := range data[1:] {
		f = alpha*v + (1-alpha)*f
	}
	return f
}

// LinearTrend fits a least-squares line and extrapolates periodsAhead months
// past the end of the series. The result is clamped at zero.
func LinearTrend(data []float64, periodsAhead int) float64 {
	if len(data) == 0 {
		return 0
	}
	if len(data) < 2 {
		return data[0]
	}

	n := len(data)
	xMean := float64(n-1) / 2
	yMean := mean(data)

	var num, den float64
	for i, y := range data {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return yMean
	}

	slope := num / den
	intercept := yMean - slope*xMean
	f := intercept + slope*float64(n+periodsAhead-1)
	return math.Max(0, f)
}

// SeasonalResult is the output of a seasonal decomposition.
type SeasonalResult struct {
	Trend    float64
	Seasonal float64
	Forecast float64
}

// Seasonal performs a simple trend-plus-seasonal decomposition. Series
// shorter than two full periods degrade to a moving average.
func Seasonal(data []float64, period int) SeasonalResult {
	if len(data) < period*2 {
		avg := SMA(data, 3)
		return SeasonalResult{Trend: avg, Forecast: avg}
	}

	trend := SMA(data, period)

	var seasonal float64
	for _, v := range data[len(data)-period:] {
		seasonal += v - trend
	}
	seasonal /= float64(period)

	return SeasonalResult{
		Trend:    trend,
		Seasonal: seasonal,
		Forecast: math.Max(0, trend+seasonal),
	}
}

// Result is a next-month projection with its provenance.
type Result struct {
	Value      float64
	Method     string
	Confidence string
	Mean       float64
	Variance   float64
}

// NextMonth projects the next monthly total from the given series. With
// MethodAuto it averages every applicable method into an ensemble. Fewer
// than three data points fall back to a plain average at low confidence.
func NextMonth(data []float64, method string) Result {
	if len(data) == 0 {
		return Result{Method: MethodNoData, Confidence: ConfidenceLow}
	}
	if len(data) < 3 {
		return Result{Value: mean(data), Method: MethodAverage, Confidence: ConfidenceLow}
	}

	forecasts := map[string]float64{}
	if method == MethodAuto || method == MethodSMA {
		forecasts[MethodSMA] = SMA(data, 3)
	}
	if method == MethodAuto || method == MethodEMA {
		forecasts[MethodEMA] = EMA(data, 0.3)
	}
	if method == MethodAuto || method == MethodLinear {
		forecasts[MethodLinear] = LinearTrend(data, 1)
	}
	if (method == MethodAuto || method == MethodSeasonal) && len(data) >= 6 {
		period := 12
		if len(data) < period {
			period = len(data)
		}
		forecasts[MethodSeasonal] = Seasonal(data, period).Forecast
	}

	var value float64
	used := method
	if method == MethodAuto {
		var sum float64
		for _, v := range forecasts {
			sum += v
		}
		value = sum / float64(len(forecasts))
		used = MethodEnsemble
	} else {
		v, ok := forecasts[method]
		if !ok {
			v = SMA(data, 3)
			used = MethodSMA
		}
		value = v
	}

	m := mean(data)
	variance := varianceOf(data, m)

	return Result{
		Value:      value,
		Method:     used,
		Confidence: Confidence(m, variance),
		Mean:       m,
		Variance:   variance,
	}
}

// Confidence grades a series by its coefficient of variation: below 0.2 is
// high, below 0.5 medium, anything noisier low.
func Confidence(mean, variance float64) string {
	var cv float64
	if mean > 0 {
		cv = math.Sqrt(variance) / mean
	}

	switch {
	case cv < 0.2:
		return ConfidenceHigh
	case cv < 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func varianceOf(data []float64, mean float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(data))
}
