package service

import (
	"context"
	"encoding/json"

	"CoinPulse/internal/domain/models"
)

// Generator is the generative collaborator producing raw scenario
// candidates from a prediction request. The raw output is intentionally
// untyped: the validator owns coercion and discards malformed entries.
type Generator interface {
	GenerateCandidates(ctx context.Context, req models.PredictionRequest) ([]json.RawMessage, error)
}

// Embedder turns free text into an embedding vector for the similarity
// store.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
