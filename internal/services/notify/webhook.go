// Package notify delivers completed prediction sets to external
// endpoints.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/config"
	applogger "CoinPulse/pkg/logger"
)

const summaryLimit = 500

// WebhookNotifier POSTs signed prediction payloads to a generic HTTP
// webhook endpoint. The body is signed with HMAC-SHA256 and the hex
// digest travels in the X-Webhook-Signature header.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
	l      *applogger.Logger
}

func NewWebhookNotifier(cfg *config.Config, l *applogger.Logger) *WebhookNotifier {
	timeout := cfg.Webhook.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebhookNotifier{
		url:    cfg.Webhook.URL,
		secret: cfg.Webhook.Secret,
		client: &http.Client{Timeout: timeout},
		l:      l,
	}
}

// IsConfigured reports whether a target URL is set.
func (w *WebhookNotifier) IsConfigured() bool { return w.url != "" }

type webhookPayload struct {
	Timestamp    string                     `json:"timestamp"`
	CurrentPrice float64                    `json:"current_price"`
	Patterns     []models.PredictionPattern `json:"patterns"`
	Summary      string                     `json:"summary"`
}

// SendPredictions posts the prediction set. The summary is truncated to
// keep the payload chart-annotation sized.
func (w *WebhookNotifier) SendPredictions(ctx context.Context, set *models.PredictionSet) error {
	if !w.IsConfigured() {
		return fmt.Errorf("webhook: not configured")
	}

	summary := set.Summary
	if len(summary) > summaryLimit {
		summary = summary[:summaryLimit]
	}
	body, err := json.Marshal(webhookPayload{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		CurrentPrice: set.CurrentPrice,
		Patterns:     set.Patterns,
		Summary:      summary,
	})
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", Sign(w.secret, body))

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook: unexpected status %d: %s", resp.StatusCode, respBody)
	}

	w.l.Info("sent predictions to webhook",
		applogger.String("symbol", set.Symbol),
		applogger.Int("patterns", len(set.Patterns)))
	return nil
}

// Sign computes the hex HMAC-SHA256 digest of the payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether the given signature matches the
// payload, in constant time.
func VerifySignature(secret string, payload []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}
