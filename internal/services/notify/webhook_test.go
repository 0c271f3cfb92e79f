package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/config"
	applogger "CoinPulse/pkg/logger"
)

func testNotifier(t *testing.T, url, secret string) *WebhookNotifier {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg := &config.Config{}
	cfg.Webhook.URL = url
	cfg.Webhook.Secret = secret
	return NewWebhookNotifier(cfg, l)
}

func TestSendPredictionsSignsBody(t *testing.T) {
	const secret = "test-secret"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		sig := r.Header.Get("X-Webhook-Signature")
		if sig == "" {
			t.Errorf("missing signature header")
		}
		if !VerifySignature(secret, body, sig) {
			t.Errorf("signature does not verify")
		}
		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("unmarshal payload: %v", err)
		}
		if payload.CurrentPrice != 98000 || len(payload.Patterns) != 1 {
			t.Errorf("unexpected payload %+v", payload)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := testNotifier(t, srv.URL, secret)
	err := n.SendPredictions(context.Background(), &models.PredictionSet{
		Symbol:       "BTCUSDT",
		CurrentPrice: 98000,
		Patterns:     []models.PredictionPattern{{Rank: 1, Probability: 0.4}},
		Summary:      "uptrend",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendPredictionsTruncatesSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		json.NewDecoder(r.Body).Decode(&payload)
		if len(payload.Summary) != summaryLimit {
			t.Errorf("expected truncated summary, got %d chars", len(payload.Summary))
		}
	}))
	defer srv.Close()

	n := testNotifier(t, srv.URL, "s")
	err := n.SendPredictions(context.Background(), &models.PredictionSet{
		Summary: strings.Repeat("a", summaryLimit*2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendPredictionsNotConfigured(t *testing.T) {
	n := testNotifier(t, "", "s")
	if err := n.SendPredictions(context.Background(), &models.PredictionSet{}); err == nil {
		t.Fatalf("expected error when unconfigured")
	}
}

func TestSendPredictionsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := testNotifier(t, srv.URL, "s")
	if err := n.SendPredictions(context.Background(), &models.PredictionSet{}); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	body := []byte(`{"a":1}`)
	sig := Sign("secret", body)
	if !VerifySignature("secret", body, sig) {
		t.Fatalf("expected signature to verify")
	}
	if VerifySignature("secret", []byte(`{"a":2}`), sig) {
		t.Fatalf("expected tampered body to fail")
	}
	if VerifySignature("other", body, sig) {
		t.Fatalf("expected wrong secret to fail")
	}
	if VerifySignature("secret", body, "zz-not-hex") {
		t.Fatalf("expected malformed signature to fail")
	}
}
