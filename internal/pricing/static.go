package pricing

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// StaticSource serves quotes and a rate from a fixed in-memory table. It
// stands in for the external market-data client in the CLI tools and tests;
// production deployments inject their own PriceSource/RateSource.
type StaticSource struct {
	Quotes map[string]Quote
	Rate   decimal.Decimal
}

func (s *StaticSource) GetPrices(_ context.Context, coingeckoIds []string) (map[string]Quote, error) {
	result := make(map[string]Quote, len(coingeckoIds))
	for _, id := range coingeckoIds {
		if quote, ok := s.Quotes[id]; ok {
			result[id] = quote
		}
	}
	return result, nil
}

func (s *StaticSource) GetRate(_ context.Context) (decimal.Decimal, error) {
	if !s.Rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("no static exchange rate configured")
	}
	return s.Rate, nil
}

type quoteFileEntry struct {
	CoingeckoId string   `yaml:"coingecko_id"`
	Usd         string   `yaml:"usd"`
	Change24h   *float64 `yaml:"change_24h"`
	Change7d    *float64 `yaml:"change_7d"`
}

type quoteFile struct {
	VndPerUsd string           `yaml:"vnd_per_usd"`
	Quotes    []quoteFileEntry `yaml:"quotes"`
}

// LoadStaticSource reads a quote table from a YAML file. Used by the CLI
// binaries when no live market-data source is wired in.
func LoadStaticSource(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}

	var file quoteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", path, err)
	}

	src := &StaticSource{Quotes: make(map[string]Quote, len(file.Quotes))}
	if file.VndPerUsd != "" {
		if src.Rate, err = decimal.NewFromString(file.VndPerUsd); err != nil {
			return nil, fmt.Errorf("invalid vnd_per_usd in %s: %w", path, err)
		}
	}
	for i, entry := range file.Quotes {
		if entry.CoingeckoId == "" {
			return nil, fmt.Errorf("quote at index %d missing coingecko_id", i)
		}
		usd, err := decimal.NewFromString(entry.Usd)
		if err != nil {
			return nil, fmt.Errorf("quote %s has invalid usd price: %w", entry.CoingeckoId, err)
		}
		src.Quotes[entry.CoingeckoId] = Quote{
			Usd:       usd,
			Change24h: entry.Change24h,
			Change7d:  entry.Change7d,
		}
	}
	return src, nil
}
