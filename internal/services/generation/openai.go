// Package generation talks to the OpenAI API: chat completions for
// prediction candidate generation and the embeddings endpoint for
// commentary similarity.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

const (
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultModel          = "gpt-4o"
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultTemperature    = 0.7
	defaultMaxTokens      = 4000
	defaultTimeout        = 120 * time.Second
	defaultAttempts       = 3
)

// OpenAIClient generates prediction candidates and text embeddings.
type OpenAIClient struct {
	apiKey         string
	baseURL        string
	model          string
	embeddingModel string
	temperature    float64
	maxTokens      int
	attempts       int
	client         *xhttp.Client
	l              *applogger.Logger
}

func NewOpenAIClient(cfg *config.Config, l *applogger.Logger) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:         cfg.OpenAI.APIKey,
		baseURL:        strings.TrimRight(cfg.OpenAI.BaseURL, "/"),
		model:          cfg.OpenAI.Model,
		embeddingModel: cfg.OpenAI.EmbeddingModel,
		temperature:    cfg.OpenAI.Temperature,
		maxTokens:      cfg.OpenAI.MaxTokens,
		attempts:       cfg.OpenAI.RetryAttempts,
		l:              l,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.embeddingModel == "" {
		c.embeddingModel = defaultEmbeddingModel
	}
	if c.temperature == 0 {
		c.temperature = defaultTemperature
	}
	if c.maxTokens == 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.attempts <= 0 {
		c.attempts = defaultAttempts
	}

	timeout := cfg.OpenAI.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c.client = xhttp.NewClient(xhttp.WithTimeout(timeout))
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// candidateEnvelope is the JSON shape the collaborator is instructed to
// emit: a patterns array of structured candidates.
type candidateEnvelope struct {
	Patterns []json.RawMessage `json:"patterns"`
}

// GenerateCandidates sends the prediction request and returns the raw
// candidate objects from the response envelope. The items come back
// unvalidated; coercion happens downstream.
func (c *OpenAIClient) GenerateCandidates(ctx context.Context, req models.PredictionRequest) ([]json.RawMessage, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	body.ResponseFormat.Type = "json_object"

	var resp chatResponse
	if err := c.postWithRetry(ctx, "/chat/completions", body, &resp); err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty choices")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)
	var envelope candidateEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("parse candidate envelope: %w", err)
	}

	c.l.Info("generated prediction candidates",
		applogger.Int("candidates", len(envelope.Patterns)),
		applogger.Int("prompt_tokens", resp.Usage.PromptTokens),
		applogger.Int("completion_tokens", resp.Usage.CompletionTokens))
	return envelope.Patterns, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for one text.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float64, error) {
	var resp embeddingResponse
	err := c.postWithRetry(ctx, "/embeddings", embeddingRequest{Model: c.embeddingModel, Input: text}, &resp)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding: empty response")
	}
	return resp.Data[0].Embedding, nil
}

// postWithRetry posts JSON with exponential backoff between attempts
// (500ms, 1s, 2s, ...).
func (c *OpenAIClient) postWithRetry(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	var err error
	backoff := 500 * time.Millisecond
	for i := 1; i <= c.attempts; i++ {
		err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    c.baseURL + path,
			Headers: map[string]string{
				"Content-Type":  "application/json",
				"Authorization": "Bearer " + c.apiKey,
			},
			Body: payload,
		}, dest)
		if err == nil {
			return nil
		}
		if i == c.attempts {
			break
		}
		c.l.Warn("openai request failed, retrying",
			applogger.String("path", path),
			applogger.Int("attempt", i),
			applogger.Error(err))
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// stripCodeFence tolerates responses wrapped in a markdown code block
// despite the json_object response format.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
