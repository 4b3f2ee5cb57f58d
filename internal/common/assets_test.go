package common

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	return path
}

func TestLoadCoinCatalog(t *testing.T) {
	path := writeCatalog(t, `
coins:
  - symbol: BTC
    coingecko_id: bitcoin
    name: Bitcoin
  - symbol: ETH
    coingecko_id: ethereum
    name: Ethereum
`)

	coins, err := LoadCoinCatalog(path)
	if err != nil {
		t.Fatalf("LoadCoinCatalog failed: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("Expected 2 coins, got %d", len(coins))
	}
	if coins[0].Symbol != "BTC" || coins[0].CoingeckoId != "bitcoin" {
		t.Errorf("Unexpected first coin: %+v", coins[0])
	}
}

func TestLoadCoinCatalog_MissingCoingeckoId(t *testing.T) {
	path := writeCatalog(t, `
coins:
  - symbol: BTC
    name: Bitcoin
`)
	if _, err := LoadCoinCatalog(path); err == nil {
		t.Fatal("Expected error for coin without coingecko_id")
	}
}

func TestLoadCoinCatalog_FileNotFound(t *testing.T) {
	if _, err := LoadCoinCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing catalog file")
	}
}
