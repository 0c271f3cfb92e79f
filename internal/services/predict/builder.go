// Package predict builds fully-specified generation requests for the
// generative collaborator and validates/ranks whatever structured
// candidates come back. Both halves are pure: the stochastic part of
// prediction lives entirely outside this package.
package predict

import (
	"fmt"
	"sort"
	"strings"

	"CoinPulse/internal/domain/models"
)

const (
	DefaultCandidateCount = 10
)

// DefaultHorizons are the forecast horizons requested when the caller
// supplies none.
var DefaultHorizons = []string{"1week", "2weeks", "1month"}

const systemPrompt = `You are an expert in technical analysis and chart pattern forecasting for crypto assets.

Your role:
1. Interpret the provided technical analysis data
2. Compare the situation with historical patterns
3. Present multiple future scenarios, each with a probability
4. Explain concrete price levels and the reasoning behind each scenario

Hard requirements:
- The probabilities must not sum to more than 100%
- Include both optimistic and pessimistic scenarios
- Always include concrete numbers (price levels, horizons)
- Keep the reasoning specific and verifiable
- Respond in JSON format`

const outputSchema = "```json\n" + `{
  "patterns": [
    {
      "rank": 1,
      "probability": 0.35,
      "direction": "bullish",
      "target_price": 105000,
      "timeframe": "2weeks",
      "pattern_name": "Ascending Triangle Breakout",
      "reasoning": "Ascending triangle breakout in progress...",
      "key_levels": {
        "entry": 98000,
        "stop_loss": 95000,
        "take_profit": [102000, 105000, 110000]
      }
    }
  ]
}` + "\n```"

// BuildRequest assembles the generation request from the analysis result,
// the current price, the requested horizons/candidate count and an
// optional free-text context block (news, macro commentary, similar past
// commentary). The minimum-output and probability-balance requirements
// are guidance for the collaborator only; they are not mechanically
// enforced downstream.
func BuildRequest(a models.AnalysisResult, currentPrice float64, horizons []string, count int, contextText string) models.PredictionRequest {
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}
	if count <= 0 {
		count = DefaultCandidateCount
	}

	var b strings.Builder
	b.WriteString("# Price prediction request\n\n")
	fmt.Fprintf(&b, "## Current price: $%.2f\n\n", currentPrice)

	b.WriteString("## Technical analysis summary\n")
	fmt.Fprintf(&b, "- Trend: %s (strength: %.1f%%)\n", a.Trend, a.Strength)
	fmt.Fprintf(&b, "- Analysis: %s\n\n", a.Summary)

	b.WriteString("## Indicator values\n")
	for _, k := range sortedKeys(a.Indicators) {
		fmt.Fprintf(&b, "- %s: %v\n", k, a.Indicators[k])
	}

	b.WriteString("\n## Support / resistance\n")
	fmt.Fprintf(&b, "- Resistance: %v\n", a.SupportResistance.Resistance)
	fmt.Fprintf(&b, "- Support: %v\n", a.SupportResistance.Support)

	if len(a.Patterns) > 0 {
		b.WriteString("\n## Detected chart patterns\n")
		for _, p := range a.Patterns {
			fmt.Fprintf(&b, "- %s: %s\n", p.Name, p.Description)
		}
	}

	if contextText != "" {
		b.WriteString("\n## Fundamentals and news context (incl. similar past commentary)\n")
		b.WriteString(contextText)
		b.WriteString("\n")
	}

	b.WriteString("\n## Output requirements\n")
	fmt.Fprintf(&b, "- Generate exactly %d distinct price scenarios (fewer than %d is not acceptable)\n", count, count)
	fmt.Fprintf(&b, "- Forecast horizons: %s\n", strings.Join(horizons, ", "))
	b.WriteString("- Each scenario must include a probability, target price, reasoning and key price levels\n")
	b.WriteString("- Balance bullish, bearish and neutral scenarios\n")
	b.WriteString("- Keep the probabilities summing to 100% or less\n\n")
	b.WriteString("Respond with the following JSON structure:\n")
	b.WriteString(outputSchema)

	return models.PredictionRequest{
		System:       systemPrompt,
		Prompt:       b.String(),
		Horizons:     horizons,
		Count:        count,
		CurrentPrice: currentPrice,
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
