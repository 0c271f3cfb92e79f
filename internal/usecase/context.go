package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	icache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/services/fundamental"
	"CoinPulse/internal/services/macro"
	"CoinPulse/internal/services/marketdata"
	"CoinPulse/pkg/config"
	applogger "CoinPulse/pkg/logger"
)

const contextBlockSeparator = "\n\n---\n\n"

// ContextBuilder assembles the fundamentals context for a prediction
// request. Every provider is optional: a failed or unconfigured provider
// drops its block and the rest of the context survives.
type ContextBuilder struct {
	gecko     *marketdata.CoinGeckoClient
	fearGreed *marketdata.FearGreedClient
	news      *marketdata.CryptoCompareClient
	fred      *macro.FREDClient
	av        *macro.AlphaVantageClient
	polygon   *macro.PolygonClient
	finnhub   *macro.FinnhubClient
	fund      *fundamental.Analyzer
	similar   drepo.CommentaryStore
	cache     icache.BytesCache
	cfg       *config.Config
	l         *applogger.Logger
}

func NewContextBuilder(
	gecko *marketdata.CoinGeckoClient,
	fearGreed *marketdata.FearGreedClient,
	news *marketdata.CryptoCompareClient,
	fred *macro.FREDClient,
	av *macro.AlphaVantageClient,
	polygon *macro.PolygonClient,
	finnhub *macro.FinnhubClient,
	fund *fundamental.Analyzer,
	similar drepo.CommentaryStore,
	cache icache.BytesCache,
	cfg *config.Config,
	l *applogger.Logger,
) *ContextBuilder {
	return &ContextBuilder{
		gecko:     gecko,
		fearGreed: fearGreed,
		news:      news,
		fred:      fred,
		av:        av,
		polygon:   polygon,
		finnhub:   finnhub,
		fund:      fund,
		similar:   similar,
		cache:     cache,
		cfg:       cfg,
		l:         l,
	}
}

// Build assembles all available context blocks for the symbol. snap may be
// nil when the market-data provider is down; its block is skipped then.
func (b *ContextBuilder) Build(ctx context.Context, symbol string, snap *models.MarketSnapshot, a models.AnalysisResult, fg *models.FearGreed) string {
	blocks := make([]string, 0, 6)
	news := b.fetchNews(ctx)

	if block := b.marketBlock(ctx, symbol, snap); block != "" {
		blocks = append(blocks, block)
	}
	if block := b.sentimentBlock(fg); block != "" {
		blocks = append(blocks, block)
	}
	if block := b.fundamentalBlock(news, fg); block != "" {
		blocks = append(blocks, block)
	}
	if block := b.newsBlock(news); block != "" {
		blocks = append(blocks, block)
	}
	if block := b.macroBlock(ctx); block != "" {
		blocks = append(blocks, block)
	}
	if block := b.similarBlock(ctx, snap, a, fg); block != "" {
		blocks = append(blocks, block)
	}

	return strings.Join(blocks, contextBlockSeparator)
}

// fetchNews pulls the headline list once per build; the news and
// fundamental blocks share it.
func (b *ContextBuilder) fetchNews(ctx context.Context) []models.CryptoNews {
	if b.news == nil {
		return nil
	}
	items, err := b.news.GetBTCNews(ctx)
	if err != nil {
		b.l.Warn("context: news unavailable", applogger.Error(err))
		return nil
	}
	return items
}

func (b *ContextBuilder) marketBlock(ctx context.Context, symbol string, snap *models.MarketSnapshot) string {
	if b.gecko == nil {
		return ""
	}
	const cacheKey = "context:market"
	if cached := b.cached(cacheKey); cached != "" && snap == nil {
		return cached
	}

	var sb strings.Builder
	sb.WriteString("Market overview:\n")
	if snap != nil {
		fmt.Fprintf(&sb, "- %s price: $%.2f (24h %+.2f%%, 7d %+.2f%%)\n",
			symbol, snap.PriceUSD, snap.Change24hPct, snap.Change7dPct)
		fmt.Fprintf(&sb, "- Market cap: $%.0f, 24h volume: $%.0f\n",
			snap.MarketCapUSD, snap.Volume24hUSD)
	}
	if global, err := b.gecko.GetGlobalStats(ctx); err != nil {
		b.l.Warn("context: global stats unavailable", applogger.Error(err))
	} else {
		fmt.Fprintf(&sb, "- Total crypto market cap: $%.0f (24h %+.2f%%)\n",
			global.TotalMarketCapUSD, global.MarketCapChange)
		fmt.Fprintf(&sb, "- BTC dominance: %.1f%%, ETH dominance: %.1f%%\n",
			global.BTCDominancePct, global.ETHDominancePct)
	}
	block := strings.TrimRight(sb.String(), "\n")
	if block == "Market overview:" {
		return ""
	}
	b.store(cacheKey, block, b.cfg.Cache.MarketTTL)
	return block
}

func (b *ContextBuilder) sentimentBlock(fg *models.FearGreed) string {
	if fg == nil {
		return ""
	}
	return fmt.Sprintf("Market sentiment:\n- Fear & Greed index: %d (%s)",
		fg.Value, fg.Classification)
}

func (b *ContextBuilder) newsBlock(items []models.CryptoNews) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Recent headlines:\n")
	for _, n := range items {
		fmt.Fprintf(&sb, "- %s (%s)\n", n.Title, n.Source)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// fundamentalBlock renders the classified news-event read. The Fear & Greed
// index, when present, overrides the news-derived sentiment score.
func (b *ContextBuilder) fundamentalBlock(news []models.CryptoNews, fg *models.FearGreed) string {
	if b.fund == nil || (len(news) == 0 && fg == nil) {
		return ""
	}
	res := b.fund.Analyze(news)
	sentiment := res.Sentiment
	if fg != nil {
		sentiment = fundamental.SentimentFromFearGreed(fg.Value)
	}

	var sb strings.Builder
	sb.WriteString("Fundamental analysis:\n")
	fmt.Fprintf(&sb, "- %s\n", res.AnalysisSummary)
	fmt.Fprintf(&sb, "- Sentiment score: %+.2f (-1 extreme fear, +1 extreme greed)\n", sentiment)
	for _, h := range res.SimilarEvents {
		fmt.Fprintf(&sb, "- Precedent %s (%s): $%.0f before", h.Title, h.Date, h.PriceBefore)
		if h.PriceAfter1M > 0 {
			fmt.Fprintf(&sb, ", $%.0f one month after", h.PriceAfter1M)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *ContextBuilder) macroBlock(ctx context.Context) string {
	const cacheKey = "context:macro"
	if cached := b.cached(cacheKey); cached != "" {
		return cached
	}

	var sb strings.Builder
	sb.WriteString("Macro environment:\n")
	wrote := false

	if b.fred != nil {
		for _, ind := range b.fred.GetAllIndicators(ctx) {
			fmt.Fprintf(&sb, "- %s: %.2f %s (as of %s)\n",
				ind.Name, ind.Value, ind.Unit, ind.Date.Format("2006-01-02"))
			wrote = true
		}
	}
	if b.av != nil {
		for _, q := range b.av.GetQuotes(ctx) {
			fmt.Fprintf(&sb, "- %s: $%.2f (%+.2f%%)\n", q.Symbol, q.Price, q.ChangePct)
			wrote = true
		}
	}
	if b.polygon != nil {
		if q, err := b.polygon.GetCryptoPreviousClose(ctx, "BTC"); err != nil {
			b.l.Warn("context: polygon unavailable", applogger.Error(err))
		} else {
			fmt.Fprintf(&sb, "- BTC previous session close: $%.2f (%+.2f%%)\n", q.Price, q.ChangePct)
			wrote = true
		}
	}
	if b.finnhub != nil {
		if items, err := b.finnhub.GetCryptoNews(ctx, 3); err != nil {
			b.l.Warn("context: finnhub news unavailable", applogger.Error(err))
		} else {
			for _, n := range items {
				fmt.Fprintf(&sb, "- News: %s (%s)\n", n.Title, n.Source)
				wrote = true
			}
		}
	}

	if !wrote {
		return ""
	}
	block := strings.TrimRight(sb.String(), "\n")
	b.store(cacheKey, block, b.cfg.Cache.MacroTTL)
	return block
}

// similarBlock searches past commentary written in comparable market
// conditions: same trend, similar 7d move and sentiment reading.
func (b *ContextBuilder) similarBlock(ctx context.Context, snap *models.MarketSnapshot, a models.AnalysisResult, fg *models.FearGreed) string {
	if b.similar == nil {
		return ""
	}
	change7d := 0.0
	if snap != nil {
		change7d = snap.Change7dPct
	}
	fgValue := 50
	if fg != nil {
		fgValue = fg.Value
	}
	query := fmt.Sprintf("trend %s, 7d change %.1f%%, fear greed %d", a.Trend, change7d, fgValue)

	hits, err := b.similar.SearchSimilar(ctx, query, b.cfg.Similarity.TopK)
	if err != nil {
		b.l.Warn("context: similarity search unavailable", applogger.Error(err))
		return ""
	}
	if len(hits) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Commentary from historically similar conditions:\n")
	for _, h := range hits {
		fmt.Fprintf(&sb, "- [%s, score %.2f] %s\n",
			h.CreatedAt.Format("2006-01-02"), h.Score, h.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *ContextBuilder) cached(key string) string {
	if b.cache == nil {
		return ""
	}
	v, ok, err := b.cache.GetBytes(key)
	if err != nil || !ok {
		return ""
	}
	return string(v)
}

func (b *ContextBuilder) store(key, block string, ttl time.Duration) {
	if b.cache == nil || ttl <= 0 {
		return
	}
	if err := b.cache.SetBytes(key, []byte(block), ttl); err != nil {
		b.l.Warn("context: cache store failed", applogger.String("key", key), applogger.Error(err))
	}
}
