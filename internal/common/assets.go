package common

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// CoinConfig maps a tracked coin to its external price-source key.
type CoinConfig struct {
	Symbol      string `yaml:"symbol"`
	CoingeckoId string `yaml:"coingecko_id"`
	Name        string `yaml:"name"`
	IconUrl     string `yaml:"icon_url"`
}

type CoinsConfig struct {
	Coins []CoinConfig `yaml:"coins"`
}

// LoadCoinCatalog reads the coin catalog used to seed asset rows.
func LoadCoinCatalog(assetsFile string) ([]CoinConfig, error) {
	var assetsPath string
	if filepath.IsAbs(assetsFile) {
		assetsPath = assetsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		assetsPath = filepath.Join(wd, assetsFile)
	}

	data, err := os.ReadFile(assetsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", assetsFile, err)
	}

	var config CoinsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", assetsFile, err)
	}

	for i, coin := range config.Coins {
		if coin.Symbol == "" {
			return nil, fmt.Errorf("coin at index %d missing symbol", i)
		}
		if coin.CoingeckoId == "" {
			return nil, fmt.Errorf("coin at index %d missing coingecko_id", i)
		}
	}

	return config.Coins, nil
}
