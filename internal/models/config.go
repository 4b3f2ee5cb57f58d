package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Pricing  PricingConfig
	Snapshot SnapshotConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	CreateDemoData  bool
}

// PricingConfig holds external price/rate source settings
type PricingConfig struct {
	// Minimum spacing between calls to the price source. The jobs make one
	// batched call per run; the limiter paces runs that share a source.
	PriceCallInterval time.Duration
	// Cache lifetime for last-known quotes and rates.
	CacheTTL time.Duration
	// Hardcoded last-resort VND-per-USD rate, used only when both the rate
	// source and the persisted rate are unavailable.
	DefaultExchangeRate decimal.Decimal
	AssetsFile          string
}

// SnapshotConfig holds snapshot job and HTTP entry point settings
type SnapshotConfig struct {
	// Bearer token required on the job endpoints.
	AuthToken string
	// Listen address of the job server.
	Addr string
	// Upper bound on concurrent per-user snapshot writes.
	Workers int
}
