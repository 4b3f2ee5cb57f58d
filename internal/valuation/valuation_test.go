package valuation

import (
	"testing"

	"github.com/shopspring/decimal"

	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/pricing"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testAssets() []models.Asset {
	return []models.Asset{
		{Id: "a-btc", UserId: "u1", CoingeckoId: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
		{Id: "a-eth", UserId: "u1", CoingeckoId: "ethereum", Symbol: "ETH", Name: "Ethereum"},
	}
}

func testStorages() []models.Storage {
	return []models.Storage{
		{Id: "s-binance", UserId: "u1", Type: models.StorageCex, Name: "Binance"},
		{Id: "s-ledger", UserId: "u1", Type: models.StorageWallet, Name: "Ledger"},
	}
}

func testTransactions() []models.CryptoTransaction {
	return []models.CryptoTransaction{
		{Id: "t1", Type: models.TxBuy, AssetId: "a-btc", StorageId: "s-binance", Amount: d("1.0")},
		{Id: "t2", Type: models.TxBuy, AssetId: "a-eth", StorageId: "s-ledger", Amount: d("10")},
		{Id: "t3", Type: models.TxTransferBetween, AssetId: "a-btc", FromStorageId: "s-binance", ToStorageId: "s-ledger", Amount: d("0.25")},
	}
}

func testQuotes() map[string]pricing.Quote {
	return map[string]pricing.Quote{
		"bitcoin":  {Usd: d("50000")},
		"ethereum": {Usd: d("2500")},
	}
}

func TestCompute_Totals(t *testing.T) {
	rate := d("25000")
	portfolio := Compute(testAssets(), testStorages(), testTransactions(), testQuotes(), rate)

	// 1 BTC * 50000 + 10 ETH * 2500 = 75000 USD.
	if !portfolio.TotalValueUsd.Equal(d("75000")) {
		t.Errorf("Expected total 75000 USD, got %s", portfolio.TotalValueUsd.String())
	}
	if !portfolio.TotalValueVnd.Equal(d("1875000000")) {
		t.Errorf("Expected total 1875000000 VND, got %s", portfolio.TotalValueVnd.String())
	}
	if len(portfolio.MissingPrices) != 0 {
		t.Errorf("Expected no missing prices, got %v", portfolio.MissingPrices)
	}
}

func TestCompute_Percentages(t *testing.T) {
	portfolio := Compute(testAssets(), testStorages(), testTransactions(), testQuotes(), d("25000"))

	var sum decimal.Decimal
	for _, av := range portfolio.Assets {
		sum = sum.Add(av.Percentage)
	}
	if !sum.Round(6).Equal(d("100")) {
		t.Errorf("Asset percentages sum to %s, expected 100", sum.String())
	}

	for _, av := range portfolio.Assets {
		switch av.Asset.Symbol {
		case "BTC":
			// 50000/75000 of the portfolio.
			if !av.Percentage.Round(4).Equal(d("66.6667")) {
				t.Errorf("Expected BTC share 66.6667, got %s", av.Percentage.String())
			}
		case "ETH":
			if !av.Percentage.Round(4).Equal(d("33.3333")) {
				t.Errorf("Expected ETH share 33.3333, got %s", av.Percentage.String())
			}
		}
	}
}

func TestCompute_StorageValues(t *testing.T) {
	portfolio := Compute(testAssets(), testStorages(), testTransactions(), testQuotes(), d("25000"))

	values := make(map[string]decimal.Decimal)
	for _, sv := range portfolio.Storages {
		values[sv.Storage.Name] = sv.ValueVnd
	}

	// Binance: 0.75 BTC * 50000 * 25000.
	if !values["Binance"].Equal(d("937500000")) {
		t.Errorf("Expected Binance value 937500000 VND, got %s", values["Binance"].String())
	}
	// Ledger: 0.25 BTC * 50000 + 10 ETH * 2500, times the rate.
	if !values["Ledger"].Equal(d("937500000")) {
		t.Errorf("Expected Ledger value 937500000 VND, got %s", values["Ledger"].String())
	}
}

func TestCompute_ZeroTotalGuards(t *testing.T) {
	// No transactions at all: totals and every percentage must be exactly
	// zero, never a division-by-zero panic.
	portfolio := Compute(testAssets(), testStorages(), nil, testQuotes(), d("25000"))

	if !portfolio.TotalValueUsd.IsZero() || !portfolio.TotalValueVnd.IsZero() {
		t.Errorf("Expected zero totals, got %s USD / %s VND",
			portfolio.TotalValueUsd.String(), portfolio.TotalValueVnd.String())
	}
	for _, av := range portfolio.Assets {
		if !av.Percentage.IsZero() {
			t.Errorf("Expected zero percentage for %s, got %s", av.Asset.Symbol, av.Percentage.String())
		}
	}
	for _, sv := range portfolio.Storages {
		if !sv.Percentage.IsZero() {
			t.Errorf("Expected zero percentage for %s, got %s", sv.Storage.Name, sv.Percentage.String())
		}
	}
}

func TestCompute_MissingPriceFlagged(t *testing.T) {
	quotes := map[string]pricing.Quote{"bitcoin": {Usd: d("50000")}}
	portfolio := Compute(testAssets(), testStorages(), testTransactions(), quotes, d("25000"))

	var eth AssetValuation
	for _, av := range portfolio.Assets {
		if av.Asset.Symbol == "ETH" {
			eth = av
		}
	}
	if !eth.PriceMissing {
		t.Error("Expected ETH to be flagged as missing a price")
	}
	if !eth.ValueUsd.IsZero() {
		t.Errorf("Expected zero value for unpriced ETH, got %s", eth.ValueUsd.String())
	}
	if len(portfolio.MissingPrices) != 1 || portfolio.MissingPrices[0] != "ethereum" {
		t.Errorf("Expected missing prices [ethereum], got %v", portfolio.MissingPrices)
	}

	// A genuinely zero-priced asset is NOT flagged; the two cases differ.
	quotes["ethereum"] = pricing.Quote{Usd: decimal.Zero}
	portfolio = Compute(testAssets(), testStorages(), testTransactions(), quotes, d("25000"))
	for _, av := range portfolio.Assets {
		if av.Asset.Symbol == "ETH" && av.PriceMissing {
			t.Error("Zero-priced asset must not be flagged as missing")
		}
	}
}

func TestCompute_ChangePassThrough(t *testing.T) {
	change := 4.2
	quotes := map[string]pricing.Quote{
		"bitcoin":  {Usd: d("50000"), Change24h: &change},
		"ethereum": {Usd: d("2500")},
	}
	portfolio := Compute(testAssets(), testStorages(), testTransactions(), quotes, d("25000"))
	for _, av := range portfolio.Assets {
		switch av.Asset.Symbol {
		case "BTC":
			if av.Change24h == nil || *av.Change24h != 4.2 {
				t.Errorf("Expected BTC 24h change 4.2, got %v", av.Change24h)
			}
		case "ETH":
			if av.Change24h != nil {
				t.Errorf("Expected nil 24h change for ETH, got %v", *av.Change24h)
			}
		}
	}
}

func TestNetWorth(t *testing.T) {
	total := NetWorth(d("150000000"), d("1875000000"))
	if !total.Equal(d("2025000000")) {
		t.Errorf("Expected net worth 2025000000, got %s", total.String())
	}

	if !NetWorth(decimal.Zero, decimal.Zero).IsZero() {
		t.Error("Expected zero net worth for zero inputs")
	}
}
