package models

// Requests for the analysis HTTP endpoints. Defined in domain for
// consistency and reuse, same as the other request models.

type AnalyzeRequest struct {
	Symbol   string   `query:"symbol" json:"symbol" default:"BTCUSDT" validate:"required"`
	Count    int      `query:"count" json:"count" default:"10" validate:"gte=1,lte=20"`
	Horizons []string `query:"horizons" json:"horizons"`
}

type AnalysisRequest struct {
	Symbol string `query:"symbol" json:"symbol" default:"BTCUSDT" validate:"required"`
}

type PredictionsRequest struct {
	Symbol string `query:"symbol" json:"symbol" default:"BTCUSDT" validate:"required"`
	Top    int    `query:"top" json:"top" default:"0" validate:"gte=0,lte=20"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" default:"BTCUSDT" validate:"required"`
	N      int    `query:"n" json:"n" default:"365" validate:"gte=1,lte=2000"`
	TF     string `query:"tf" json:"tf" default:"1d" validate:"oneof=1d 1w 1M"`
	// Optional explicit range; RFC3339 or unix seconds. When both are set
	// they take precedence over N.
	From string `query:"from" json:"from"`
	To   string `query:"to" json:"to"`
}
