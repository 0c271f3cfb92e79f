package models

import "time"

// KeyLevels are the entry/stop/take-profit prices attached to a prediction.
type KeyLevels struct {
	Entry      float64   `json:"entry"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit []float64 `json:"take_profit"`
}

// PredictionPattern is one validated, ranked price-movement scenario.
// Rank is always recomputed after sorting by probability; whatever rank the
// generative model proposed is discarded.
type PredictionPattern struct {
	Rank        int       `json:"rank"`
	Probability float64   `json:"probability"` // (0..1]
	Direction   Direction `json:"direction"`
	TargetPrice float64   `json:"target_price"`
	Timeframe   string    `json:"timeframe"`
	PatternName string    `json:"pattern_name"`
	Reasoning   string    `json:"reasoning"`
	KeyLevels   KeyLevels `json:"key_levels"`
	CreatedAt   time.Time `json:"created_at"`
}

// PredictionRequest is a fully-specified generation request for the
// generative collaborator: system role text, user prompt, and the output
// contract the model must honor.
type PredictionRequest struct {
	System       string   `json:"system"`
	Prompt       string   `json:"prompt"`
	Horizons     []string `json:"horizons"`
	Count        int      `json:"count"`
	CurrentPrice float64  `json:"current_price"`
}

// PredictionSet bundles the ranked predictions of one analysis run together
// with the inputs a downstream consumer needs to display them.
type PredictionSet struct {
	Symbol       string              `json:"symbol"`
	CurrentPrice float64             `json:"current_price"`
	Patterns     []PredictionPattern `json:"patterns"`
	Summary      string              `json:"analysis_summary"`
	CreatedAt    time.Time           `json:"created_at"`
}
