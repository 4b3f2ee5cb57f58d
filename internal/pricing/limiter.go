package pricing

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LimitedPriceSource paces calls to an underlying PriceSource with a token
// bucket, replacing the fixed pre-call sleep the source's rate limit would
// otherwise force. The jobs still make exactly one batched call per run;
// the limiter only spaces out runs that share the source.
type LimitedPriceSource struct {
	src     PriceSource
	limiter *rate.Limiter
}

// NewLimitedPriceSource wraps src so consecutive calls are at least interval
// apart. A single burst token lets the first call through immediately.
func NewLimitedPriceSource(src PriceSource, interval time.Duration) *LimitedPriceSource {
	return &LimitedPriceSource{
		src:     src,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (l *LimitedPriceSource) GetPrices(ctx context.Context, coingeckoIds []string) (map[string]Quote, error) {
	reservationStart := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if waited := time.Since(reservationStart); waited > time.Second {
		zap.L().Info("Price call delayed by rate limiter", zap.Duration("waited", waited))
	}
	return l.src.GetPrices(ctx, coingeckoIds)
}
