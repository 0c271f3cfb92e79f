package models

import "time"

// Candle represents one OHLCV observation for a fixed period, optionally
// enriched with named indicator columns (sma_20, rsi_14, ...). A column is
// absent from Indicators until enough history exists to compute it.
type Candle struct {
	Timestamp time.Time
	Symbol    string
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64

	Indicators map[string]float64
}

// Indicator returns the named indicator column value, if present.
func (c Candle) Indicator(name string) (float64, bool) {
	if c.Indicators == nil {
		return 0, false
	}
	v, ok := c.Indicators[name]
	return v, ok
}

// SetIndicator attaches a named indicator value, allocating the map lazily.
func (c *Candle) SetIndicator(name string, v float64) {
	if c.Indicators == nil {
		c.Indicators = make(map[string]float64, 16)
	}
	c.Indicators[name] = v
}

// Tail returns the trailing n candles (or all of them if fewer exist).
func Tail(candles []Candle, n int) []Candle {
	if n <= 0 || len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}

// Closes extracts the close series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Highs extracts the high series.
func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts the low series.
func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

// Volumes extracts the volume series.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
