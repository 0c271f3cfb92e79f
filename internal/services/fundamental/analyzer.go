package fundamental

import (
	"fmt"
	"strings"

	"CoinPulse/internal/domain/models"
)

// Event is one news item classified into a market-impact category.
type Event struct {
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Impact   float64 `json:"impact"` // -1 to 1
	Source   string  `json:"source,omitempty"`
}

// HistoricalEvent is a past market-moving event with the price path that
// followed it, used as precedent context for matching categories.
type HistoricalEvent struct {
	Title        string  `json:"title"`
	Date         string  `json:"date"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	PriceBefore  float64 `json:"price_before"`
	PriceAfter1M float64 `json:"price_after_1m,omitempty"`
	PriceAfter6M float64 `json:"price_after_6m,omitempty"`
}

// Result is the fundamental read of the current news flow: a sentiment
// score in [-1, 1], the classified events, matching historical precedents
// and a one-paragraph summary.
type Result struct {
	Sentiment       float64           `json:"sentiment"`
	KeyEvents       []Event           `json:"key_events"`
	SimilarEvents   []HistoricalEvent `json:"similar_historical_events"`
	AnalysisSummary string            `json:"analysis_summary"`
}

// historicalEvents is a small fixed precedent database keyed by category.
var historicalEvents = []HistoricalEvent{
	{
		Title:        "Bitcoin Halving 2024",
		Date:         "2024-04-20",
		Category:     "halving",
		Description:  "Fourth halving; block reward cut from 6.25 to 3.125 BTC.",
		PriceBefore:  64000,
		PriceAfter1M: 67000,
	},
	{
		Title:        "Bitcoin Spot ETF Approval",
		Date:         "2024-01-10",
		Category:     "etf",
		Description:  "US SEC approved spot bitcoin ETFs.",
		PriceBefore:  46000,
		PriceAfter1M: 52000,
		PriceAfter6M: 67000,
	},
	{
		Title:        "Bitcoin Halving 2020",
		Date:         "2020-05-11",
		Category:     "halving",
		Description:  "Third halving; block reward cut from 12.5 to 6.25 BTC.",
		PriceBefore:  8500,
		PriceAfter1M: 9500,
		PriceAfter6M: 19000,
	},
	{
		Title:        "COVID-19 Market Crash",
		Date:         "2020-03-12",
		Category:     "macro",
		Description:  "Global market crash at the onset of the pandemic.",
		PriceBefore:  8000,
		PriceAfter1M: 6500,
		PriceAfter6M: 11500,
	},
	{
		Title:        "China Crypto Ban",
		Date:         "2021-05-21",
		Category:     "regulation",
		Description:  "China banned cryptocurrency mining and trading.",
		PriceBefore:  40000,
		PriceAfter1M: 35000,
		PriceAfter6M: 47000,
	},
}

const maxSimilarEvents = 5

// Analyzer classifies recent news into impact categories and scores
// aggregate sentiment. Pure; no network calls.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze classifies the news flow, pulls matching historical precedents
// and computes the mean-impact sentiment. Empty news is a valid input and
// yields a neutral result.
func (a *Analyzer) Analyze(news []models.CryptoNews) Result {
	events := classifyEvents(news)
	similar := findSimilarEvents(events)
	sentiment := meanImpact(events)

	return Result{
		Sentiment:       sentiment,
		KeyEvents:       events,
		SimilarEvents:   similar,
		AnalysisSummary: buildSummary(events, similar, sentiment),
	}
}

// SentimentFromFearGreed maps the 0-100 index onto [-1, 1]
// (0 = extreme fear, 50 = neutral, 100 = extreme greed). When the index is
// available it overrides the news-derived score, matching the reference
// pipeline.
func SentimentFromFearGreed(value int) float64 {
	return (float64(value) - 50) / 50
}

// categoryKeywords maps a category to title substrings that select it.
// First match wins, in this order.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"halving", []string{"halving"}},
	{"etf", []string{"etf", "sec"}},
	{"regulation", []string{"regulation", "ban", "lawsuit"}},
	{"macro", []string{"fed", "fomc", "rate cut", "rate hike", "inflation"}},
}

func classifyEvents(news []models.CryptoNews) []Event {
	events := make([]Event, 0, len(news))
	for _, n := range news {
		title := strings.ToLower(n.Title)
		category := "other"
		for _, ck := range categoryKeywords {
			for _, w := range ck.words {
				if strings.Contains(title, w) {
					category = ck.category
					break
				}
			}
			if category != "other" {
				break
			}
		}

		impact := 0.0
		categories := strings.ToLower(n.Categories)
		if strings.Contains(categories, "bullish") {
			impact = 0.3
		} else if strings.Contains(categories, "bearish") {
			impact = -0.3
		}

		events = append(events, Event{
			Title:    n.Title,
			Category: category,
			Impact:   impact,
			Source:   n.Source,
		})
	}
	return events
}

func findSimilarEvents(events []Event) []HistoricalEvent {
	categories := make(map[string]bool, len(events))
	for _, e := range events {
		categories[e.Category] = true
	}

	similar := make([]HistoricalEvent, 0, maxSimilarEvents)
	for _, h := range historicalEvents {
		if categories[h.Category] {
			similar = append(similar, h)
			if len(similar) == maxSimilarEvents {
				break
			}
		}
	}
	return similar
}

func meanImpact(events []Event) float64 {
	if len(events) == 0 {
		return 0
	}
	var sum float64
	for _, e := range events {
		sum += e.Impact
	}
	return sum / float64(len(events))
}

func buildSummary(events []Event, similar []HistoricalEvent, sentiment float64) string {
	parts := make([]string, 0, 3)

	switch {
	case sentiment > 0.2:
		parts = append(parts, "Market sentiment is optimistic")
	case sentiment < -0.2:
		parts = append(parts, "Market sentiment is pessimistic")
	default:
		parts = append(parts, "Market sentiment is neutral")
	}

	if len(events) > 0 {
		parts = append(parts, fmt.Sprintf("Recent notable events: %d", len(events)))
	}
	if len(similar) > 0 {
		names := make([]string, 0, 2)
		for _, h := range similar {
			names = append(names, h.Title)
			if len(names) == 2 {
				break
			}
		}
		parts = append(parts, "Comparable historical events: "+strings.Join(names, ", "))
	}

	return strings.Join(parts, ". ") + "."
}
