package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/config"
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

func TestBybitGetKlinesAscendingOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v5/market/kline" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("interval"); got != "D" {
			t.Errorf("expected interval D, got %s", got)
		}
		// newest first, as the API delivers
		json.NewEncoder(w).Encode(map[string]any{
			"retCode": 0,
			"result": map[string]any{
				"symbol": "BTCUSDT",
				"list": [][]string{
					{"1700092800000", "101", "105", "99", "103", "1200", "0"},
					{"1700006400000", "100", "104", "98", "101", "1000", "0"},
				},
			},
		})
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Bybit.BaseURL = srv.URL
	src := NewBybitClient(cfg, testLogger(t))

	candles, err := src.GetKlines(context.Background(), "BTCUSDT", drepo.TF1d, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if !candles[0].Timestamp.Before(candles[1].Timestamp) {
		t.Fatalf("candles not ascending: %v, %v", candles[0].Timestamp, candles[1].Timestamp)
	}
	if candles[0].Open != 100 || candles[1].Close != 103 {
		t.Fatalf("unexpected values: %+v", candles)
	}
}

func TestBybitGetKlinesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"retCode": 10001, "retMsg": "params error"})
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Bybit.BaseURL = srv.URL
	src := NewBybitClient(cfg, testLogger(t))

	if _, err := src.GetKlines(context.Background(), "BTCUSDT", drepo.TF1d, 10); err == nil {
		t.Fatalf("expected error on non-zero retCode")
	}
}

func TestBybitUnsupportedTimeframe(t *testing.T) {
	cfg := &config.Config{}
	src := NewBybitClient(cfg, testLogger(t))
	if _, err := src.GetKlines(context.Background(), "BTCUSDT", drepo.Timeframe("5m"), 10); err == nil {
		t.Fatalf("expected error for unsupported timeframe")
	}
}

func TestParseWSTrade(t *testing.T) {
	tick, err := parseWSTrade(wsTrade{T: 1700000000123, S: "BTCUSDT", P: "98000.5", V: "0.25"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick.Timestamp != 1700000000 {
		t.Fatalf("expected unix seconds, got %d", tick.Timestamp)
	}
	if tick.Price != 98000.5 || tick.Volume != 0.25 {
		t.Fatalf("unexpected tick %+v", tick)
	}

	if _, err := parseWSTrade(wsTrade{P: "bad", V: "1"}); err == nil {
		t.Fatalf("expected error on bad price")
	}
}
