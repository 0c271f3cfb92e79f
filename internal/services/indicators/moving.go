// Package indicators enriches candle windows with the standard technical
// indicator columns. Every series function returns a slice aligned with
// its input where warm-up positions hold NaN, mirroring how column-oriented
// tooling leaves undefined rows empty.
package indicators

import "math"

// SMA computes the simple moving average over the window. Positions
// before window-1 are NaN.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA computes the exponential moving average, seeded with the SMA of the
// first window values.
func EMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	var seed float64
	for i := 0; i < window; i++ {
		seed += values[i]
	}
	seed /= float64(window)
	out[window-1] = seed

	multiplier := 2.0 / float64(window+1)
	for i := window; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

// wilderSmooth applies Wilder's recursive smoothing, seeded with the mean
// of the first window values.
func wilderSmooth(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	var seed float64
	for i := 0; i < window; i++ {
		seed += values[i]
	}
	out[window-1] = seed / float64(window)
	for i := window; i < len(values); i++ {
		out[i] = (out[i-1]*float64(window-1) + values[i]) / float64(window)
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
