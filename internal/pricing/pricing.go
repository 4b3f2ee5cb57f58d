// Package pricing defines the contracts for the external price and exchange
// rate sources and the resilience layer around them: token-bucket pacing for
// the batched price call, last-known-value caching, and the tiered exchange
// rate fallback. The actual HTTP clients live outside this module; the jobs
// only ever see these interfaces.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is one asset's current market data, keyed by coingecko id.
// Change percentages are pass-through from the source; nil means the source
// had no figure, which is distinct from a genuine 0% change.
type Quote struct {
	Usd       decimal.Decimal
	Change24h *float64
	Change7d  *float64
	Change30d *float64
	Change60d *float64
	Change1y  *float64
}

// PriceSource returns current USD quotes for a batch of coingecko ids. Ids
// unknown to the source are simply absent from the result map. A rate-limit
// rejection surfaces as an error; callers degrade to cached values rather
// than failing the batch.
type PriceSource interface {
	GetPrices(ctx context.Context, coingeckoIds []string) (map[string]Quote, error)
}

// RateSource returns the current USD to VND exchange rate.
type RateSource interface {
	GetRate(ctx context.Context) (decimal.Decimal, error)
}

// RateStore persists the last successfully fetched exchange rate, the middle
// tier of the fallback chain.
type RateStore interface {
	LastExchangeRate(ctx context.Context) (decimal.Decimal, error)
	SaveExchangeRate(ctx context.Context, rate decimal.Decimal) error
}
