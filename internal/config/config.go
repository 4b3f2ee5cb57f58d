/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"crypto-networth-go/internal/models"
)

// DefaultExchangeRate is the hardcoded last-resort VND-per-USD rate, shared
// by both snapshot jobs. One configured constant instead of per-job values.
var DefaultExchangeRate = decimal.NewFromInt(25000)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	priceCallInterval, err := getEnvDuration("PRICE_CALL_INTERVAL", 10*time.Second)
	if err != nil {
		return nil, err
	}

	priceCacheTTL, err := getEnvDuration("PRICE_CACHE_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	defaultRate, err := getEnvDecimal("DEFAULT_EXCHANGE_RATE", DefaultExchangeRate)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "portfolio.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			CreateDemoData:  getEnvBool("CREATE_DEMO_DATA", false),
		},
		Pricing: models.PricingConfig{
			PriceCallInterval:   priceCallInterval,
			CacheTTL:            priceCacheTTL,
			DefaultExchangeRate: defaultRate,
			AssetsFile:          getEnvString("ASSETS_FILE", "assets.yaml"),
		},
		Snapshot: models.SnapshotConfig{
			AuthToken: os.Getenv("SNAPSHOT_AUTH_TOKEN"),
			Addr:      getEnvString("SNAPSHOT_ADDR", ":8080"),
			Workers:   getEnvInt("SNAPSHOT_WORKERS", 4),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal for %s: %w", key, err)
	}
	return parsed, nil
}
