package pricing

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Rate fallback tiers, reported alongside the resolved rate so job summaries
// can show how degraded the run was.
const (
	RateTierApi       = "api"
	RateTierPersisted = "persisted"
	RateTierDefault   = "default"
)

// ResolveRate returns a usable USD to VND rate, degrading through three
// tiers: the live source, the last persisted rate, and finally the
// configured default. It never returns an error; a fresh rate is persisted
// for the next degraded run.
func ResolveRate(ctx context.Context, src RateSource, store RateStore, defaultRate decimal.Decimal) (decimal.Decimal, string) {
	if src != nil {
		rate, err := src.GetRate(ctx)
		if err == nil && rate.IsPositive() {
			if store != nil {
				if saveErr := store.SaveExchangeRate(ctx, rate); saveErr != nil {
					zap.L().Warn("Failed to persist exchange rate", zap.Error(saveErr))
				}
			}
			return rate, RateTierApi
		}
		zap.L().Warn("Exchange rate source unavailable, falling back", zap.Error(err))
	}

	if store != nil {
		rate, err := store.LastExchangeRate(ctx)
		if err == nil && rate.IsPositive() {
			zap.L().Info("Using last persisted exchange rate", zap.String("rate", rate.String()))
			return rate, RateTierPersisted
		}
	}

	zap.L().Warn("No live or persisted exchange rate, using configured default",
		zap.String("rate", defaultRate.String()))
	return defaultRate, RateTierDefault
}
