// Package valuation combines ledger balances with market quotes and an
// exchange rate into per-asset and per-storage VND values, portfolio
// percentages, and aggregate totals. Everything here is a pure function of
// its inputs.
package valuation

import (
	"github.com/shopspring/decimal"

	"crypto-networth-go/internal/ledger"
	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/pricing"
)

var oneHundred = decimal.NewFromInt(100)

// AssetValuation is one asset's balance and value within the portfolio.
// PriceMissing marks assets the price source had no quote for; their value
// defaults to zero but must not render as a genuine $0.
type AssetValuation struct {
	Asset        models.Asset
	Balance      decimal.Decimal
	PriceUsd     decimal.Decimal
	PriceMissing bool
	ValueUsd     decimal.Decimal
	ValueVnd     decimal.Decimal
	Percentage   decimal.Decimal

	// Pass-through from the price source; nil means no data, never zero.
	Change24h *float64
	Change7d  *float64
	Change30d *float64
	Change60d *float64
	Change1y  *float64
}

// StorageValuation is the VND value held in one storage across all assets.
type StorageValuation struct {
	Storage    models.Storage
	ValueVnd   decimal.Decimal
	Percentage decimal.Decimal
}

// Portfolio is the full valuation result.
type Portfolio struct {
	Assets        []AssetValuation
	Storages      []StorageValuation
	TotalValueUsd decimal.Decimal
	TotalValueVnd decimal.Decimal
	ExchangeRate  decimal.Decimal
	// Coingecko ids that had no quote, surfaced so callers can flag
	// "price unavailable" instead of showing zero.
	MissingPrices []string
}

// Compute values every asset and storage against the given quotes and VND
// per USD rate. Transactions are the user's full unfiltered log; balances
// come from replaying it. Zero-asset, zero-balance, and zero-price inputs
// all produce zero totals and zero percentages, never NaN or a division by
// zero.
func Compute(assets []models.Asset, storages []models.Storage, transactions []models.CryptoTransaction,
	quotes map[string]pricing.Quote, exchangeRate decimal.Decimal) Portfolio {

	entries, _ := ledger.Decode(transactions)

	result := Portfolio{
		Assets:        make([]AssetValuation, 0, len(assets)),
		Storages:      make([]StorageValuation, 0, len(storages)),
		TotalValueUsd: decimal.Zero,
		TotalValueVnd: decimal.Zero,
		ExchangeRate:  exchangeRate,
	}

	for _, asset := range assets {
		av := AssetValuation{
			Asset:   asset,
			Balance: ledger.ComputeBalance(asset.Id, "", entries),
		}
		if quote, ok := quotes[asset.CoingeckoId]; ok {
			av.PriceUsd = quote.Usd
			av.Change24h = quote.Change24h
			av.Change7d = quote.Change7d
			av.Change30d = quote.Change30d
			av.Change60d = quote.Change60d
			av.Change1y = quote.Change1y
		} else {
			av.PriceMissing = true
			result.MissingPrices = append(result.MissingPrices, asset.CoingeckoId)
		}
		av.ValueUsd = av.Balance.Mul(av.PriceUsd)
		av.ValueVnd = av.ValueUsd.Mul(exchangeRate)
		result.TotalValueUsd = result.TotalValueUsd.Add(av.ValueUsd)
		result.TotalValueVnd = result.TotalValueVnd.Add(av.ValueVnd)
		result.Assets = append(result.Assets, av)
	}

	for i := range result.Assets {
		result.Assets[i].Percentage = percentage(result.Assets[i].ValueVnd, result.TotalValueVnd)
	}

	for _, storage := range storages {
		sv := StorageValuation{Storage: storage, ValueVnd: decimal.Zero}
		for _, asset := range assets {
			balance := ledger.ComputeBalance(asset.Id, storage.Id, entries)
			if balance.IsZero() {
				continue
			}
			quote := quotes[asset.CoingeckoId] // zero quote when missing
			sv.ValueVnd = sv.ValueVnd.Add(balance.Mul(quote.Usd).Mul(exchangeRate))
		}
		sv.Percentage = percentage(sv.ValueVnd, result.TotalValueVnd)
		result.Storages = append(result.Storages, sv)
	}

	return result
}

// NetWorth is the unified total: fiat bank balance plus crypto portfolio
// value, both in VND. The two inputs come from separate components and are
// combined only here.
func NetWorth(bankBalance, cryptoValueVnd decimal.Decimal) decimal.Decimal {
	return bankBalance.Add(cryptoValueVnd)
}

// percentage is part/total*100, defined as 0 when total is zero.
func percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(oneHundred).Div(total)
}
