package predict

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"CoinPulse/internal/domain/models"
	applogger "CoinPulse/pkg/logger"
)

// Validator normalizes raw generated candidates into
// models.PredictionPattern values. Malformed candidates are discarded
// individually; a single bad item never rejects the whole batch.
type Validator struct {
	l *applogger.Logger
}

func NewValidator(l *applogger.Logger) *Validator {
	return &Validator{l: l}
}

// ValidateAndRank coerces every raw candidate, drops the ones that fail,
// stable-sorts the survivors by probability (descending) and reassigns
// dense ranks starting at 1. Whatever rank the collaborator proposed is
// discarded after coercion. An empty result is a valid result.
//
// Probabilities are taken as-is: out-of-range or over-unity total mass is
// the collaborator's problem, not a validation failure.
func (v *Validator) ValidateAndRank(raw []json.RawMessage, currentPrice float64) []models.PredictionPattern {
	patterns := make([]models.PredictionPattern, 0, len(raw))
	for i, rm := range raw {
		p, err := coercePattern(rm)
		if err != nil {
			v.l.Warn("discarding prediction candidate",
				applogger.Int("index", i),
				applogger.Float64("current_price", currentPrice),
				applogger.Error(err))
			continue
		}
		patterns = append(patterns, p)
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Probability > patterns[j].Probability
	})
	for i := range patterns {
		patterns[i].Rank = i + 1
	}
	return patterns
}

func coercePattern(raw json.RawMessage) (models.PredictionPattern, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var item map[string]any
	if err := dec.Decode(&item); err != nil {
		return models.PredictionPattern{}, fmt.Errorf("decode candidate: %w", err)
	}

	var (
		p   models.PredictionPattern
		err error
	)
	if p.Rank, err = toInt(item["rank"]); err != nil {
		return p, fmt.Errorf("rank: %w", err)
	}
	if p.Probability, err = toFloat(item["probability"]); err != nil {
		return p, fmt.Errorf("probability: %w", err)
	}
	direction, err := toString(item["direction"])
	if err != nil {
		return p, fmt.Errorf("direction: %w", err)
	}
	p.Direction = models.Direction(direction)
	if p.TargetPrice, err = toFloat(item["target_price"]); err != nil {
		return p, fmt.Errorf("target_price: %w", err)
	}
	if p.Timeframe, err = toString(item["timeframe"]); err != nil {
		return p, fmt.Errorf("timeframe: %w", err)
	}
	if p.PatternName, err = toString(item["pattern_name"]); err != nil {
		return p, fmt.Errorf("pattern_name: %w", err)
	}
	if p.Reasoning, err = toString(item["reasoning"]); err != nil {
		return p, fmt.Errorf("reasoning: %w", err)
	}

	levels, ok := item["key_levels"].(map[string]any)
	if !ok {
		return p, fmt.Errorf("key_levels: expected object, got %T", item["key_levels"])
	}
	if p.KeyLevels.Entry, err = toFloat(levels["entry"]); err != nil {
		return p, fmt.Errorf("key_levels.entry: %w", err)
	}
	if p.KeyLevels.StopLoss, err = toFloat(levels["stop_loss"]); err != nil {
		return p, fmt.Errorf("key_levels.stop_loss: %w", err)
	}
	if p.KeyLevels.TakeProfit, err = toFloatSlice(levels["take_profit"]); err != nil {
		return p, fmt.Errorf("key_levels.take_profit: %w", err)
	}

	p.CreatedAt = time.Now().UTC()
	return p, nil
}

// toFloat accepts JSON numbers and numeric strings. Anything else,
// including absent fields, is a coercion failure.
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Float64()
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric string %q", x)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// toInt truncates fractional numbers the same way float-to-int
// conversion does.
func toInt(v any) (int, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case nil:
		return "", fmt.Errorf("missing value")
	default:
		return "", fmt.Errorf("unsupported type %T", v)
	}
}

// toFloatSlice coerces take_profit arrays. An empty array is valid; a
// missing or non-array value is not.
func toFloatSlice(v any) ([]float64, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]float64, 0, len(arr))
	for i, el := range arr {
		f, err := toFloat(el)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}
