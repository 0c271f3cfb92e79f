package technical

import (
	"fmt"
	"math"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	applogger "CoinPulse/pkg/logger"
)

// snapshotColumns lists the indicator columns reported in the analysis
// summary, in output order.
var snapshotColumns = []string{
	"rsi_14",
	"macd",
	"macd_signal",
	"macd_histogram",
	"adx_14",
	"bb_upper",
	"bb_middle",
	"bb_lower",
	"sma_20",
	"sma_50",
	"sma_200",
	"atr_14",
	"stoch_k",
	"stoch_d",
}

// Analyzer runs the full technical pass over a candle window: trend
// fusion, pattern detection, pivot levels, indicator snapshot, summary.
// An Analyzer is stateless; Analyze is a pure function of the window.
type Analyzer struct {
	l         *applogger.Logger
	detectors []detector
}

func NewAnalyzer(l *applogger.Logger) *Analyzer {
	return &Analyzer{l: l, detectors: defaultDetectors()}
}

// Analyze produces one immutable AnalysisResult for the window. The window
// must be ordered ascending by timestamp; the latest candle is read for
// the indicator snapshot and trend fusion.
func (a *Analyzer) Analyze(window []models.Candle) (models.AnalysisResult, error) {
	if len(window) == 0 {
		return models.AnalysisResult{}, fmt.Errorf("analyze: empty candle window")
	}

	trend, strength := classifyTrend(window[len(window)-1])
	patterns := a.detectPatterns(window)
	indicators := indicatorSnapshot(window[len(window)-1])
	levels := calculateLevels(window, levelsLookback)
	summary := buildSummary(trend, strength, patterns, indicators)

	return models.AnalysisResult{
		Symbol:            window[len(window)-1].Symbol,
		Trend:             trend,
		Strength:          strength,
		Patterns:          patterns,
		Indicators:        indicators,
		SupportResistance: levels,
		Summary:           summary,
		GeneratedAt:       time.Now().UTC(),
	}, nil
}

// detectPatterns runs the registry in fixed order. A detector that panics
// is skipped and logged; it never aborts the batch.
func (a *Analyzer) detectPatterns(window []models.Candle) []models.DetectedPattern {
	patterns := make([]models.DetectedPattern, 0, len(a.detectors))
	for _, d := range a.detectors {
		if p := a.runDetector(d, window); p != nil {
			patterns = append(patterns, *p)
		}
	}
	return patterns
}

func (a *Analyzer) runDetector(d detector, window []models.Candle) (p *models.DetectedPattern) {
	defer func() {
		if r := recover(); r != nil {
			if a.l != nil {
				a.l.Warn("pattern detection failed",
					applogger.String("detector", d.name),
					applogger.Any("panic", r),
				)
			}
			p = nil
		}
	}()
	return d.fn(window)
}

// indicatorSnapshot extracts the latest value of each known column,
// rounded to two decimals, plus current price and volume.
func indicatorSnapshot(latest models.Candle) map[string]float64 {
	out := make(map[string]float64, len(snapshotColumns)+2)
	for _, col := range snapshotColumns {
		if v, ok := latest.Indicator(col); ok && !math.IsNaN(v) {
			out[col] = round2(v)
		}
	}
	out["current_price"] = round2(latest.Close)
	out["volume"] = round2(latest.Volume)
	return out
}

func buildSummary(trend models.Direction, strength float64, patterns []models.DetectedPattern, indicators map[string]float64) string {
	label := map[models.Direction]string{
		models.DirectionBullish: "uptrend",
		models.DirectionBearish: "downtrend",
		models.DirectionNeutral: "range-bound",
	}[trend]

	parts := []string{
		fmt.Sprintf("Current market: %s (strength %.1f%%)", label, strength),
	}

	if rsi, ok := indicators["rsi_14"]; ok {
		if rsi > 70 {
			parts = append(parts, fmt.Sprintf("RSI(%.2f) in overbought territory", rsi))
		} else if rsi < 30 {
			parts = append(parts, fmt.Sprintf("RSI(%.2f) in oversold territory", rsi))
		}
	}

	if len(patterns) > 0 {
		names := make([]string, len(patterns))
		for i, p := range patterns {
			names[i] = p.Name
		}
		parts = append(parts, "Detected patterns: "+strings.Join(names, ", "))
	}

	return strings.Join(parts, ". ") + "."
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
