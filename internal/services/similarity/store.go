// Package similarity stores past analyst commentary with embedding
// vectors in Redis and retrieves the closest matches for the current
// market situation by cosine similarity.
package similarity

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/service"
	"CoinPulse/pkg/config"
	applogger "CoinPulse/pkg/logger"
)

const (
	defaultIndexKey = "coinpulse:commentary"
	defaultTopK     = 5
	defaultMaxItems = 500
)

// storedCommentary is the Redis hash value: commentary plus its vector.
type storedCommentary struct {
	models.Commentary
	Vector []float64 `json:"vector"`
}

// Store keeps embedded commentary in a Redis hash keyed by commentary ID
// and searches it client-side. The corpus stays small (hundreds of
// entries), which keeps a full scan cheaper than a dedicated vector index.
type Store struct {
	cli      *redis.Client
	embedder service.Embedder
	indexKey string
	minScore float64
	maxItems int
	l        *applogger.Logger
}

func NewStore(cfg *config.Config, cli *redis.Client, embedder service.Embedder, l *applogger.Logger) *Store {
	indexKey := cfg.Similarity.IndexKey
	if indexKey == "" {
		indexKey = defaultIndexKey
	}
	maxItems := cfg.Similarity.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return &Store{
		cli:      cli,
		embedder: embedder,
		indexKey: indexKey,
		minScore: cfg.Similarity.MinScore,
		maxItems: maxItems,
		l:        l,
	}
}

// Add embeds the commentary text and stores it. When the corpus exceeds
// maxItems the oldest entries are evicted.
func (s *Store) Add(ctx context.Context, c models.Commentary) error {
	if c.ID == "" {
		return fmt.Errorf("similarity add: empty commentary id")
	}
	vector, err := s.embedder.Embed(ctx, c.Text)
	if err != nil {
		return fmt.Errorf("similarity add: %w", err)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	b, err := json.Marshal(storedCommentary{Commentary: c, Vector: vector})
	if err != nil {
		return fmt.Errorf("similarity add: marshal: %w", err)
	}
	if err := s.cli.HSet(ctx, s.indexKey, c.ID, b).Err(); err != nil {
		return fmt.Errorf("similarity add: hset: %w", err)
	}

	if err := s.evict(ctx); err != nil {
		s.l.Warn("commentary eviction failed", applogger.Error(err))
	}
	return nil
}

// SearchSimilar embeds the query and returns the top-k stored entries
// above the minimum score, best first.
func (s *Store) SearchSimilar(ctx context.Context, query string, k int) ([]models.ScoredCommentary, error) {
	if k <= 0 {
		k = defaultTopK
	}
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	entries, err := s.cli.HGetAll(ctx, s.indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("similarity search: hgetall: %w", err)
	}

	scored := make([]models.ScoredCommentary, 0, len(entries))
	for id, raw := range entries {
		var sc storedCommentary
		if err := json.Unmarshal([]byte(raw), &sc); err != nil {
			s.l.Warn("skipping corrupt commentary entry", applogger.String("id", id))
			continue
		}
		score := cosine(queryVec, sc.Vector)
		if score < s.minScore {
			continue
		}
		scored = append(scored, models.ScoredCommentary{Commentary: sc.Commentary, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// evict trims the corpus down to maxItems by dropping the oldest
// entries.
func (s *Store) evict(ctx context.Context) error {
	size, err := s.cli.HLen(ctx, s.indexKey).Result()
	if err != nil || int(size) <= s.maxItems {
		return err
	}

	entries, err := s.cli.HGetAll(ctx, s.indexKey).Result()
	if err != nil {
		return err
	}
	type aged struct {
		id string
		at time.Time
	}
	all := make([]aged, 0, len(entries))
	for id, raw := range entries {
		var sc storedCommentary
		if err := json.Unmarshal([]byte(raw), &sc); err != nil {
			all = append(all, aged{id: id}) // corrupt entries evict first
			continue
		}
		all = append(all, aged{id: id, at: sc.CreatedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	excess := len(all) - s.maxItems
	ids := make([]string, 0, excess)
	for _, a := range all[:excess] {
		ids = append(ids, a.id)
	}
	return s.cli.HDel(ctx, s.indexKey, ids...).Err()
}

// cosine returns the cosine similarity of two vectors, 0 when either is
// degenerate.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
