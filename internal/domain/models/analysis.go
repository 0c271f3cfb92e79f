package models

import "time"

// Direction is the directional classification of a trend or pattern.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// DetectedPattern is one geometric chart pattern found in a candle window.
type DetectedPattern struct {
	Name        string    `json:"name"`
	Direction   Direction `json:"direction"`
	Confidence  float64   `json:"confidence"` // 0..1
	PriceLevel  float64   `json:"price_level,omitempty"`
	Description string    `json:"description"`
}

// SupportResistance holds pivot-derived and raw-extremum price levels.
// Resistance is sorted descending, Support ascending. Duplicates are
// expected when window extremes coincide with pivot levels.
type SupportResistance struct {
	Pivot      float64   `json:"pivot"`
	Resistance []float64 `json:"resistance"`
	Support    []float64 `json:"support"`
}

// AnalysisResult is the immutable outcome of one technical analysis pass
// over a candle window.
type AnalysisResult struct {
	Symbol            string             `json:"symbol"`
	Trend             Direction          `json:"trend"`
	Strength          float64            `json:"strength"` // 0..100, one decimal
	Patterns          []DetectedPattern  `json:"patterns"`
	Indicators        map[string]float64 `json:"indicators"`
	SupportResistance SupportResistance  `json:"support_resistance"`
	Summary           string             `json:"summary"`
	GeneratedAt       time.Time          `json:"generated_at"`
}
