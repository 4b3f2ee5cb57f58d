package pricing

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const lastQuotesKey = "last-quotes"

// CachedPriceSource keeps the most recent successful quote batch so a
// rate-limited or failed fetch degrades to stale data instead of failing the
// whole snapshot run.
type CachedPriceSource struct {
	src   PriceSource
	cache *gocache.Cache
}

func NewCachedPriceSource(src PriceSource, ttl time.Duration) *CachedPriceSource {
	return &CachedPriceSource{
		src:   src,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// GetPrices fetches fresh quotes and caches them. On error it falls back to
// the last cached batch; the error propagates only when no cached batch
// exists either.
func (c *CachedPriceSource) GetPrices(ctx context.Context, coingeckoIds []string) (map[string]Quote, error) {
	quotes, err := c.src.GetPrices(ctx, coingeckoIds)
	if err == nil {
		c.cache.SetDefault(lastQuotesKey, quotes)
		return quotes, nil
	}

	if cached, found := c.cache.Get(lastQuotesKey); found {
		zap.L().Warn("Price fetch failed, reusing last known quotes",
			zap.Int("requested_ids", len(coingeckoIds)),
			zap.Error(err))
		return cached.(map[string]Quote), nil
	}
	return nil, err
}
