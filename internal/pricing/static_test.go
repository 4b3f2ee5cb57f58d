package pricing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func writeQuoteFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quotes.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write quote file: %v", err)
	}
	return path
}

func TestLoadStaticSource(t *testing.T) {
	path := writeQuoteFile(t, `
vnd_per_usd: "25400"
quotes:
  - coingecko_id: bitcoin
    usd: "50000.25"
    change_24h: 1.5
  - coingecko_id: ethereum
    usd: "2500"
`)

	src, err := LoadStaticSource(path)
	if err != nil {
		t.Fatalf("LoadStaticSource failed: %v", err)
	}

	rate, err := src.GetRate(context.Background())
	if err != nil {
		t.Fatalf("GetRate failed: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("25400")) {
		t.Errorf("Expected rate 25400, got %s", rate.String())
	}

	quotes, err := src.GetPrices(context.Background(), []string{"bitcoin", "ethereum", "dogecoin"})
	if err != nil {
		t.Fatalf("GetPrices failed: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("Expected 2 quotes, unknown ids absent, got %d", len(quotes))
	}
	if !quotes["bitcoin"].Usd.Equal(decimal.RequireFromString("50000.25")) {
		t.Errorf("Expected bitcoin at 50000.25, got %s", quotes["bitcoin"].Usd.String())
	}
	if quotes["bitcoin"].Change24h == nil || *quotes["bitcoin"].Change24h != 1.5 {
		t.Errorf("Expected bitcoin 24h change 1.5, got %v", quotes["bitcoin"].Change24h)
	}
	if quotes["ethereum"].Change24h != nil {
		t.Error("Expected nil 24h change for ethereum")
	}
}

func TestLoadStaticSource_InvalidPrice(t *testing.T) {
	path := writeQuoteFile(t, `
quotes:
  - coingecko_id: bitcoin
    usd: "not-a-number"
`)
	if _, err := LoadStaticSource(path); err == nil {
		t.Fatal("Expected error for invalid usd price")
	}
}

func TestStaticSource_NoRateConfigured(t *testing.T) {
	src := &StaticSource{Quotes: map[string]Quote{}}
	if _, err := src.GetRate(context.Background()); err == nil {
		t.Fatal("Expected error when no rate is configured")
	}
}
