package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"crypto-networth-go/internal/models"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// baseRows is the recurring scenario: buy 1.0 BTC on Binance,
// buy 0.5 BTC on Ledger, sell 0.3 BTC from Binance.
func baseRows() []models.CryptoTransaction {
	return []models.CryptoTransaction{
		{Id: "t1", UserId: "u1", Type: models.TxBuy, AssetId: "BTC", StorageId: "Binance", Amount: d("1.0"), FiatAmount: d("1000000")},
		{Id: "t2", UserId: "u1", Type: models.TxBuy, AssetId: "BTC", StorageId: "Ledger", Amount: d("0.5"), FiatAmount: d("500000")},
		{Id: "t3", UserId: "u1", Type: models.TxSell, AssetId: "BTC", StorageId: "Binance", Amount: d("0.3"), FiatAmount: d("300000")},
	}
}

func balanceOf(t *testing.T, rows []models.CryptoTransaction, assetId, storageId string) decimal.Decimal {
	t.Helper()
	entries, skipped := Decode(rows)
	if skipped != 0 {
		t.Fatalf("Decode skipped %d rows, expected none", skipped)
	}
	return ComputeBalance(assetId, storageId, entries)
}

func assertBalance(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("Expected balance %s, got %s", want, got.String())
	}
}

func TestComputeBalance_EmptyLog(t *testing.T) {
	balance := ComputeBalance("BTC", "Binance", nil)
	if !balance.IsZero() {
		t.Errorf("Expected exactly 0 for empty log, got %s", balance.String())
	}
	balance = ComputeBalance("BTC", "", []Entry{})
	if !balance.IsZero() {
		t.Errorf("Expected exactly 0 for empty log, got %s", balance.String())
	}
}

func TestComputeBalance_BuySell(t *testing.T) {
	rows := baseRows()
	assertBalance(t, balanceOf(t, rows, "BTC", "Binance"), "0.7")
	assertBalance(t, balanceOf(t, rows, "BTC", "Ledger"), "0.5")
	assertBalance(t, balanceOf(t, rows, "BTC", ""), "1.2")
}

func TestComputeBalance_TransferBetween(t *testing.T) {
	rows := append(baseRows(), models.CryptoTransaction{
		Id: "t4", UserId: "u1", Type: models.TxTransferBetween,
		AssetId: "BTC", FromStorageId: "Binance", ToStorageId: "Ledger", Amount: d("0.2"),
	})

	assertBalance(t, balanceOf(t, rows, "BTC", "Binance"), "0.5")
	assertBalance(t, balanceOf(t, rows, "BTC", "Ledger"), "0.7")
	// A transfer moves location only; total holdings are unchanged.
	assertBalance(t, balanceOf(t, rows, "BTC", ""), "1.2")
}

func TestComputeBalance_Swap(t *testing.T) {
	rows := append(baseRows(), models.CryptoTransaction{
		Id: "t4", UserId: "u1", Type: models.TxSwap,
		FromAssetId: "BTC", FromAmount: d("0.5"),
		ToAssetId: "ETH", ToAmount: d("8.0"), StorageId: "Ledger",
	})

	assertBalance(t, balanceOf(t, rows, "BTC", "Ledger"), "0")
	assertBalance(t, balanceOf(t, rows, "ETH", "Ledger"), "8.0")
	// Other storages are untouched by a swap.
	assertBalance(t, balanceOf(t, rows, "BTC", "Binance"), "0.7")
	assertBalance(t, balanceOf(t, rows, "ETH", "Binance"), "0")
	// Totals reflect both legs.
	assertBalance(t, balanceOf(t, rows, "BTC", ""), "0.7")
	assertBalance(t, balanceOf(t, rows, "ETH", ""), "8.0")
}

func TestComputeBalance_TransfersInOut(t *testing.T) {
	rows := []models.CryptoTransaction{
		{Id: "t1", Type: models.TxTransferIn, AssetId: "ETH", StorageId: "Ledger", Amount: d("3.5")},
		{Id: "t2", Type: models.TxTransferOut, AssetId: "ETH", StorageId: "Ledger", Amount: d("1.25")},
	}
	assertBalance(t, balanceOf(t, rows, "ETH", "Ledger"), "2.25")
	assertBalance(t, balanceOf(t, rows, "ETH", ""), "2.25")
}

func TestComputeBalance_OrderIndependence(t *testing.T) {
	rows := append(baseRows(),
		models.CryptoTransaction{
			Id: "t4", Type: models.TxTransferBetween,
			AssetId: "BTC", FromStorageId: "Binance", ToStorageId: "Ledger", Amount: d("0.2"),
		},
		models.CryptoTransaction{
			Id: "t5", Type: models.TxSwap,
			FromAssetId: "BTC", FromAmount: d("0.1"),
			ToAssetId: "ETH", ToAmount: d("1.6"), StorageId: "Ledger",
		},
	)

	reversed := make([]models.CryptoTransaction, len(rows))
	for i, row := range rows {
		reversed[len(rows)-1-i] = row
	}

	for _, storageId := range []string{"", "Binance", "Ledger"} {
		forward := balanceOf(t, rows, "BTC", storageId)
		backward := balanceOf(t, reversed, "BTC", storageId)
		if !forward.Equal(backward) {
			t.Errorf("Balance depends on order for storage %q: %s vs %s",
				storageId, forward.String(), backward.String())
		}
	}
}

func TestComputeBalance_Deterministic(t *testing.T) {
	rows := baseRows()
	first := balanceOf(t, rows, "BTC", "")
	second := balanceOf(t, rows, "BTC", "")
	if !first.Equal(second) {
		t.Errorf("Repeated computation differs: %s vs %s", first.String(), second.String())
	}
}

func TestComputeBalance_DecimalPrecision(t *testing.T) {
	// Many small 8-decimal amounts must not drift the way binary floats do.
	rows := make([]models.CryptoTransaction, 0, 1000)
	for i := 0; i < 1000; i++ {
		rows = append(rows, models.CryptoTransaction{
			Id: "t", Type: models.TxBuy, AssetId: "BTC", StorageId: "S", Amount: d("0.00000001"),
		})
	}
	assertBalance(t, balanceOf(t, rows, "BTC", ""), "0.00001")
}

func TestDecode_SkipsMalformedRows(t *testing.T) {
	rows := []models.CryptoTransaction{
		{Id: "ok", Type: models.TxBuy, AssetId: "BTC", StorageId: "S", Amount: d("1")},
		{Id: "no-asset", Type: models.TxBuy, StorageId: "S", Amount: d("1")},
		{Id: "no-storage", Type: models.TxSell, AssetId: "BTC", Amount: d("1")},
		{Id: "zero-amount", Type: models.TxBuy, AssetId: "BTC", StorageId: "S"},
		{Id: "same-storage", Type: models.TxTransferBetween, AssetId: "BTC", FromStorageId: "S", ToStorageId: "S", Amount: d("1")},
		{Id: "same-asset", Type: models.TxSwap, FromAssetId: "BTC", ToAssetId: "BTC", StorageId: "S", FromAmount: d("1"), ToAmount: d("1")},
		{Id: "unknown-type", Type: "airdrop", AssetId: "BTC", StorageId: "S", Amount: d("1")},
	}

	entries, skipped := Decode(rows)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 decoded entry, got %d", len(entries))
	}
	if skipped != 6 {
		t.Errorf("Expected 6 skipped rows, got %d", skipped)
	}
	assertBalance(t, ComputeBalance("BTC", "", entries), "1")
}

func TestComputeBalance_NegativeAllowed(t *testing.T) {
	// An inconsistent log (sell before any buy was recorded) yields a
	// negative balance; the engine does not clamp.
	rows := []models.CryptoTransaction{
		{Id: "t1", Type: models.TxSell, AssetId: "BTC", StorageId: "S", Amount: d("0.4")},
	}
	assertBalance(t, balanceOf(t, rows, "BTC", "S"), "-0.4")
}

func TestComputeBalances_IncludesZeroHoldings(t *testing.T) {
	entries, _ := Decode(baseRows())
	balances := ComputeBalances([]string{"BTC", "ETH"}, entries)
	if !balances["BTC"].Equal(d("1.2")) {
		t.Errorf("Expected BTC total 1.2, got %s", balances["BTC"].String())
	}
	if eth, ok := balances["ETH"]; !ok || !eth.IsZero() {
		t.Errorf("Expected ETH present with zero balance, got %v (present=%v)", eth, ok)
	}
}
