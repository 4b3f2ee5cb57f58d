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

package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/store"
)

// Compile-time check: *Service must satisfy store.PortfolioStore.
var _ store.PortfolioStore = (*Service)(nil)

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.InitSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

// NewServiceFromDB wraps an already-open connection. Used by tests with
// :memory: databases.
func NewServiceFromDB(db *sql.DB) (*Service, error) {
	service := &Service{db: db}
	if err := service.InitSchema(); err != nil {
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) InitSchema() error {
	schema := `
	-- Users
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	-- Crypto assets (immutable identity; referenced by transactions via id)
	CREATE TABLE IF NOT EXISTS crypto_assets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		coingecko_id TEXT NOT NULL,
		name TEXT NOT NULL,
		symbol TEXT NOT NULL,
		icon_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_crypto_assets_user ON crypto_assets(user_id);
	CREATE INDEX IF NOT EXISTS idx_crypto_assets_coingecko ON crypto_assets(coingecko_id);

	-- Crypto storages (cex account or self-custody wallet)
	CREATE TABLE IF NOT EXISTS crypto_storages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL CHECK (type IN ('cex', 'wallet')),
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		explorer_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_crypto_storages_user ON crypto_storages(user_id);

	-- Append-only crypto transaction log. One flat row per transaction;
	-- type-specific columns are NULL (stored as '') when unused. Decimal
	-- quantities are stored as TEXT to avoid float drift.
	CREATE TABLE IF NOT EXISTS crypto_transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		date TEXT NOT NULL,
		tx_id TEXT NOT NULL DEFAULT '',
		tx_explorer_url TEXT NOT NULL DEFAULT '',
		asset_id TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL DEFAULT '',
		storage_id TEXT NOT NULL DEFAULT '',
		fiat_amount TEXT NOT NULL DEFAULT '',
		linked_transaction_id TEXT NOT NULL DEFAULT '',
		from_storage_id TEXT NOT NULL DEFAULT '',
		to_storage_id TEXT NOT NULL DEFAULT '',
		from_asset_id TEXT NOT NULL DEFAULT '',
		from_amount TEXT NOT NULL DEFAULT '',
		to_asset_id TEXT NOT NULL DEFAULT '',
		to_amount TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_crypto_transactions_user ON crypto_transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_crypto_transactions_user_date ON crypto_transactions(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_crypto_transactions_asset ON crypto_transactions(asset_id);

	-- Fiat bank ledger (calendar income/expense rows, VND)
	CREATE TABLE IF NOT EXISTS calendar_transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_calendar_transactions_user ON calendar_transactions(user_id);

	-- Daily portfolio snapshots, one row per (user, date)
	CREATE TABLE IF NOT EXISTS crypto_portfolio_snapshots (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		snapshot_date TEXT NOT NULL,
		total_value_usd TEXT NOT NULL,
		allocations TEXT NOT NULL DEFAULT '{}',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, snapshot_date)
	);
	CREATE INDEX IF NOT EXISTS idx_portfolio_snapshots_user_date
		ON crypto_portfolio_snapshots(user_id, snapshot_date);

	-- Daily net worth snapshots, one row per (user, date)
	CREATE TABLE IF NOT EXISTS net_worth_snapshots (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		snapshot_date TEXT NOT NULL,
		bank_balance TEXT NOT NULL,
		crypto_value_vnd TEXT NOT NULL,
		total_net_worth TEXT NOT NULL,
		exchange_rate TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, snapshot_date)
	);

	-- Last successfully fetched USD->VND rate (single row)
	CREATE TABLE IF NOT EXISTS exchange_rates (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		vnd_per_usd TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}
