package models

import "time"

// MarketSnapshot is the current spot view of the asset from the market-data
// provider (price, caps, 24h change).
type MarketSnapshot struct {
	Symbol       string
	PriceUSD     float64
	MarketCapUSD float64
	Volume24hUSD float64
	Change24hPct float64
	Change7dPct  float64
	FetchedAt    time.Time
}

// CryptoNews is one news article headline used for context building.
type CryptoNews struct {
	Title       string
	Source      string
	PublishedAt time.Time
	Categories  string
	URL         string
}

// FearGreed is one Fear & Greed index observation (0 = extreme fear,
// 100 = extreme greed).
type FearGreed struct {
	Value          int
	Classification string
	Timestamp      time.Time
}

// EconomicIndicator is one macro series observation (FRED).
type EconomicIndicator struct {
	Name  string
	Value float64
	Unit  string
	Date  time.Time
}

// StockQuote is one equity/ETF quote used as macro context.
type StockQuote struct {
	Symbol    string
	Price     float64
	ChangePct float64
}

// Commentary is one piece of past analyst commentary stored in the
// similarity store, searchable by market situation.
type Commentary struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Trend     Direction `json:"trend"`
	ChangePct float64   `json:"change_pct"` // 7d price change when written
	FearGreed int       `json:"fear_greed"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoredCommentary is a similarity-search hit with its cosine score.
type ScoredCommentary struct {
	Commentary
	Score float64 `json:"score"`
}
