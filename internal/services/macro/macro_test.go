package macro

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

func TestFREDMissingAPIKey(t *testing.T) {
	f := NewFREDClient(&config.Config{}, testLogger(t))
	if _, err := f.GetSeries(context.Background(), "DFF", "Federal Funds Rate", "%"); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestFREDGetSeriesParsesLatestObservation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("series_id"); got != "DFF" {
			t.Errorf("expected series_id DFF, got %s", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"observations": []map[string]any{
				{"date": "2026-08-28", "value": "4.33"},
			},
		})
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Macro.FredAPIKey = "test"
	f := NewFREDClient(cfg, testLogger(t))
	f.baseURL = srv.URL

	ind, err := f.GetSeries(context.Background(), "DFF", "Federal Funds Rate", "%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ind.Value != 4.33 || ind.Name != "Federal Funds Rate" {
		t.Fatalf("unexpected indicator %+v", ind)
	}
}

func TestAlphaVantageQuoteParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"Global Quote": map[string]any{
				"01. symbol":         "SPY",
				"05. price":          "652.10",
				"10. change percent": "0.42%",
			},
		})
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Macro.AlphaVantageAPIKey = "test"
	a := NewAlphaVantageClient(cfg, testLogger(t))
	a.baseURL = srv.URL

	q, err := a.GetQuote(context.Background(), "SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Price != 652.10 || q.ChangePct != 0.42 {
		t.Fatalf("unexpected quote %+v", q)
	}
}
