package predict

import (
	"encoding/json"
	"fmt"
	"testing"

	"CoinPulse/internal/domain/models"
	applogger "CoinPulse/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func candidate(prob float64, rank any) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"rank": %v,
		"probability": %v,
		"direction": "bullish",
		"target_price": 105000,
		"timeframe": "2weeks",
		"pattern_name": "Breakout",
		"reasoning": "momentum continuation",
		"key_levels": {"entry": 98000, "stop_loss": 95000, "take_profit": [102000, 105000]}
	}`, rank, prob))
}

func TestValidateAndRankSortsAndReranks(t *testing.T) {
	v := NewValidator(testLogger(t))
	raw := []json.RawMessage{
		candidate(0.1, 9),
		candidate(0.5, 7),
		candidate(0.3, 1),
		candidate(0.5, 3),
		candidate(0.2, 2),
	}

	got := v.ValidateAndRank(raw, 100000)
	if len(got) != 5 {
		t.Fatalf("expected 5 patterns, got %d", len(got))
	}

	wantProbs := []float64{0.5, 0.5, 0.3, 0.2, 0.1}
	for i, p := range got {
		if p.Probability != wantProbs[i] {
			t.Fatalf("position %d: expected probability %v, got %v", i, wantProbs[i], p.Probability)
		}
		if p.Rank != i+1 {
			t.Fatalf("position %d: expected rank %d, got %d", i, i+1, p.Rank)
		}
	}
	// Stable sort: the 0.5 that came first in the input stays first.
	if got[0].Rank != 1 || got[1].Rank != 2 {
		t.Fatalf("expected dense ranks 1,2 for the tied pair")
	}
}

func TestValidateAndRankDiscardsMalformed(t *testing.T) {
	v := NewValidator(testLogger(t))
	raw := []json.RawMessage{
		candidate(0.4, 1),
		json.RawMessage(`{"rank": 2, "probability": 0.3, "direction": "bearish",
			"target_price": 90000, "timeframe": "1week", "pattern_name": "Breakdown",
			"reasoning": "support lost", "key_levels": {"entry": 95000, "take_profit": []}}`),
		json.RawMessage(`not json at all`),
	}

	got := v.ValidateAndRank(raw, 100000)
	if len(got) != 1 {
		t.Fatalf("expected 1 surviving pattern, got %d", len(got))
	}
	if got[0].Probability != 0.4 || got[0].Rank != 1 {
		t.Fatalf("unexpected survivor: %+v", got[0])
	}
}

func TestValidateAndRankCoercesStringsAndNumbers(t *testing.T) {
	v := NewValidator(testLogger(t))
	raw := []json.RawMessage{json.RawMessage(`{
		"rank": "3",
		"probability": "0.25",
		"direction": "neutral",
		"target_price": "100000.5",
		"timeframe": "1month",
		"pattern_name": "Range",
		"reasoning": "consolidation",
		"key_levels": {"entry": "99000", "stop_loss": 97000.5, "take_profit": []}
	}`)}

	got := v.ValidateAndRank(raw, 100000)
	if len(got) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(got))
	}
	p := got[0]
	if p.Probability != 0.25 || p.TargetPrice != 100000.5 {
		t.Fatalf("coercion failed: %+v", p)
	}
	if p.Direction != models.DirectionNeutral {
		t.Fatalf("expected typed direction %q, got %q", models.DirectionNeutral, p.Direction)
	}
	if p.KeyLevels.Entry != 99000 || p.KeyLevels.StopLoss != 97000.5 {
		t.Fatalf("key level coercion failed: %+v", p.KeyLevels)
	}
	if len(p.KeyLevels.TakeProfit) != 0 {
		t.Fatalf("expected empty take_profit, got %v", p.KeyLevels.TakeProfit)
	}
}

func TestValidateAndRankEmptyInput(t *testing.T) {
	v := NewValidator(testLogger(t))
	got := v.ValidateAndRank(nil, 100000)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestValidateAndRankIdempotent(t *testing.T) {
	v := NewValidator(testLogger(t))
	raw := []json.RawMessage{candidate(0.2, 5), candidate(0.6, 1), candidate(0.4, 8)}

	first := v.ValidateAndRank(raw, 100000)

	// Re-encode the validated output and run it through again.
	rerun := make([]json.RawMessage, len(first))
	for i, p := range first {
		b, err := json.Marshal(map[string]any{
			"rank":         p.Rank,
			"probability":  p.Probability,
			"direction":    p.Direction,
			"target_price": p.TargetPrice,
			"timeframe":    p.Timeframe,
			"pattern_name": p.PatternName,
			"reasoning":    p.Reasoning,
			"key_levels": map[string]any{
				"entry":       p.KeyLevels.Entry,
				"stop_loss":   p.KeyLevels.StopLoss,
				"take_profit": p.KeyLevels.TakeProfit,
			},
		})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rerun[i] = b
	}

	second := v.ValidateAndRank(rerun, 100000)
	if len(second) != len(first) {
		t.Fatalf("expected %d patterns, got %d", len(first), len(second))
	}
	for i := range first {
		if second[i].Rank != first[i].Rank || second[i].Probability != first[i].Probability {
			t.Fatalf("not idempotent at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestToFloatRejectsNonNumericString(t *testing.T) {
	if _, err := toFloat("not-a-number"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := toFloat(nil); err == nil {
		t.Fatalf("expected error for missing value")
	}
	if v, err := toFloat("3.5"); err != nil || v != 3.5 {
		t.Fatalf("expected 3.5, got %v err=%v", v, err)
	}
}

func TestToIntTruncates(t *testing.T) {
	if v, err := toInt(json.Number("3.7")); err != nil || v != 3 {
		t.Fatalf("expected 3, got %v err=%v", v, err)
	}
}
