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
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/store"
)

// UpsertPortfolioSnapshot writes one dated portfolio row per user. The
// ON CONFLICT clause makes reruns on the same date overwrite in place, so a
// retried or doubly-scheduled job never duplicates rows.
func (s *Service) UpsertPortfolioSnapshot(ctx context.Context, snapshot models.PortfolioSnapshot) error {
	allocations, err := json.Marshal(snapshot.Allocations)
	if err != nil {
		return fmt.Errorf("failed to encode allocations: %w", err)
	}

	_, err = s.db.ExecContext(ctx, queryUpsertPortfolioSnapshot,
		snapshot.UserId,
		snapshot.SnapshotDate.Format(models.DateLayout),
		snapshot.TotalValueUsd.String(),
		string(allocations))
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio snapshot: %w", err)
	}

	zap.L().Debug("Portfolio snapshot upserted",
		zap.String("user_id", snapshot.UserId),
		zap.String("date", snapshot.SnapshotDate.Format(models.DateLayout)),
		zap.String("total_value_usd", snapshot.TotalValueUsd.String()))
	return nil
}

// LatestPortfolioSnapshot returns the user's snapshot on the given date,
// falling back to the most recent prior date. store.ErrNoSnapshot when the
// user has never been snapshotted.
func (s *Service) LatestPortfolioSnapshot(ctx context.Context, userId string, onOrBefore time.Time) (*models.PortfolioSnapshot, error) {
	var snap models.PortfolioSnapshot
	var date, totalValue, allocations string

	err := s.db.QueryRowContext(ctx, queryGetLatestPortfolioSnapshot,
		userId, onOrBefore.Format(models.DateLayout)).
		Scan(&snap.UserId, &date, &totalValue, &allocations, &snap.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", store.ErrNoSnapshot, userId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio snapshot: %w", err)
	}

	if snap.SnapshotDate, err = parseDate(date); err != nil {
		return nil, fmt.Errorf("snapshot for %s has invalid date %q: %w", userId, date, err)
	}
	if snap.TotalValueUsd, err = parseDecimalText(totalValue); err != nil {
		return nil, fmt.Errorf("snapshot for %s has invalid total %q: %w", userId, totalValue, err)
	}
	if err := json.Unmarshal([]byte(allocations), &snap.Allocations); err != nil {
		return nil, fmt.Errorf("snapshot for %s has invalid allocations: %w", userId, err)
	}
	return &snap, nil
}

func (s *Service) ListPortfolioSnapshotUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, queryGetPortfolioSnapshotUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot users: %w", err)
	}
	defer closeRows(rows)

	var userIds []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot user id: %w", err)
		}
		userIds = append(userIds, id)
	}
	return userIds, rows.Err()
}

// CountPortfolioSnapshots reports how many rows exist for a (user, date)
// pair. Used by tests to assert the upsert invariant.
func (s *Service) CountPortfolioSnapshots(ctx context.Context, userId string, date time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, queryCountPortfolioSnapshots,
		userId, date.Format(models.DateLayout)).Scan(&n)
	return n, err
}

func (s *Service) UpsertNetWorthSnapshot(ctx context.Context, snapshot models.NetWorthSnapshot) error {
	_, err := s.db.ExecContext(ctx, queryUpsertNetWorthSnapshot,
		snapshot.UserId,
		snapshot.SnapshotDate.Format(models.DateLayout),
		snapshot.BankBalance.String(),
		snapshot.CryptoValueVnd.String(),
		snapshot.TotalNetWorth.String(),
		snapshot.ExchangeRate.String())
	if err != nil {
		return fmt.Errorf("failed to upsert net worth snapshot: %w", err)
	}

	zap.L().Debug("Net worth snapshot upserted",
		zap.String("user_id", snapshot.UserId),
		zap.String("date", snapshot.SnapshotDate.Format(models.DateLayout)),
		zap.String("total_net_worth", snapshot.TotalNetWorth.String()))
	return nil
}

func (s *Service) GetNetWorthSnapshot(ctx context.Context, userId string, date time.Time) (*models.NetWorthSnapshot, error) {
	var snap models.NetWorthSnapshot
	var snapDate, bank, crypto, total, rate string

	err := s.db.QueryRowContext(ctx, queryGetNetWorthSnapshot,
		userId, date.Format(models.DateLayout)).
		Scan(&snap.UserId, &snapDate, &bank, &crypto, &total, &rate, &snap.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", store.ErrNoSnapshot, userId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read net worth snapshot: %w", err)
	}

	if snap.SnapshotDate, err = parseDate(snapDate); err != nil {
		return nil, err
	}
	if snap.BankBalance, err = parseDecimalText(bank); err != nil {
		return nil, err
	}
	if snap.CryptoValueVnd, err = parseDecimalText(crypto); err != nil {
		return nil, err
	}
	if snap.TotalNetWorth, err = parseDecimalText(total); err != nil {
		return nil, err
	}
	if snap.ExchangeRate, err = parseDecimalText(rate); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Service) SaveExchangeRate(ctx context.Context, rate decimal.Decimal) error {
	if _, err := s.db.ExecContext(ctx, queryUpsertExchangeRate, rate.String()); err != nil {
		return fmt.Errorf("failed to persist exchange rate: %w", err)
	}
	return nil
}

func (s *Service) LastExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	var rateStr string
	err := s.db.QueryRowContext(ctx, queryGetExchangeRate).Scan(&rateStr)
	if err == sql.ErrNoRows {
		return decimal.Zero, store.ErrNoRate
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read exchange rate: %w", err)
	}
	return parseDecimalText(rateStr)
}

// --- TEXT column helpers ---

// decimalText renders a decimal for storage; zero becomes the empty string
// so unused type-specific columns stay visibly unpopulated.
func decimalText(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// parseDecimalText parses a TEXT decimal, treating the empty string as zero.
func parseDecimalText(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(models.DateLayout, s)
}
