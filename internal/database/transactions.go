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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/store"
)

// CreateTransaction appends one row to the crypto transaction log. Decimal
// quantities go in as TEXT; empty strings stand in for the NULLs of unused
// type-specific columns.
func (s *Service) CreateTransaction(ctx context.Context, params store.CreateTransactionParams) (*models.CryptoTransaction, error) {
	id := uuid.New().String()

	zap.L().Debug("Recording crypto transaction",
		zap.String("id", id),
		zap.String("user_id", params.UserId),
		zap.String("type", params.Type))

	_, err := s.db.ExecContext(ctx, queryInsertCryptoTransaction,
		id, params.UserId, params.Type, params.Date.Format(models.DateLayout),
		params.TxId, params.TxExplorerUrl,
		params.AssetId, decimalText(params.Amount), params.StorageId,
		decimalText(params.FiatAmount), params.LinkedTransactionId,
		params.FromStorageId, params.ToStorageId,
		params.FromAssetId, decimalText(params.FromAmount),
		params.ToAssetId, decimalText(params.ToAmount))
	if err != nil {
		return nil, fmt.Errorf("failed to insert crypto transaction: %w", err)
	}

	return s.getTransaction(ctx, id)
}

func (s *Service) getTransaction(ctx context.Context, id string) (*models.CryptoTransaction, error) {
	row := s.db.QueryRowContext(ctx, queryGetCryptoTransaction, id)
	tx, err := scanCryptoTransaction(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to read back transaction %s: %w", id, err)
	}
	return tx, nil
}

func (s *Service) ListTransactions(ctx context.Context, userId string) ([]models.CryptoTransaction, error) {
	return s.scanTransactions(ctx, queryGetUserCryptoTransactions, userId)
}

func (s *Service) ListAllTransactions(ctx context.Context) ([]models.CryptoTransaction, error) {
	return s.scanTransactions(ctx, queryGetAllCryptoTransactions)
}

func (s *Service) scanTransactions(ctx context.Context, query string, args ...any) ([]models.CryptoTransaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crypto transactions: %w", err)
	}
	defer closeRows(rows)

	var transactions []models.CryptoTransaction
	for rows.Next() {
		tx, err := scanCryptoTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}

// DeleteTransaction permanently removes a row. There is no soft delete: the
// next balance replay no longer sees the transaction.
func (s *Service) DeleteTransaction(ctx context.Context, userId, transactionId string) error {
	result, err := s.db.ExecContext(ctx, queryDeleteCryptoTransaction, userId, transactionId)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s not found for user %s", transactionId, userId)
	}
	return nil
}

func (s *Service) CreateCalendarTransaction(ctx context.Context, row models.CalendarTransaction) error {
	id := row.Id
	if id == "" {
		id = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, queryInsertCalendarTransaction,
		id, row.UserId, row.Kind, row.Amount.String(), row.Date.Format(models.DateLayout))
	if err != nil {
		return fmt.Errorf("failed to insert calendar transaction: %w", err)
	}
	return nil
}

// BankBalancesByUser computes every user's fiat balance in one grouped scan
// instead of per-user queries.
func (s *Service) BankBalancesByUser(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, queryBankBalancesByUser)
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank balances: %w", err)
	}
	defer closeRows(rows)

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var userId string
		var balance float64
		if err := rows.Scan(&userId, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan bank balance: %w", err)
		}
		balances[userId] = decimal.NewFromFloat(balance)
	}
	return balances, rows.Err()
}

// scanCryptoTransaction reads one flat transaction row from either a
// sql.Row or sql.Rows scan function.
func scanCryptoTransaction(scan func(...any) error) (*models.CryptoTransaction, error) {
	var tx models.CryptoTransaction
	var date string
	var amount, fiatAmount, fromAmount, toAmount string

	err := scan(&tx.Id, &tx.UserId, &tx.Type, &date, &tx.TxId, &tx.TxExplorerUrl,
		&tx.AssetId, &amount, &tx.StorageId, &fiatAmount, &tx.LinkedTransactionId,
		&tx.FromStorageId, &tx.ToStorageId,
		&tx.FromAssetId, &fromAmount, &tx.ToAssetId, &toAmount,
		&tx.CreatedAt, &tx.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan crypto transaction: %w", err)
	}

	if tx.Date, err = parseDate(date); err != nil {
		return nil, fmt.Errorf("transaction %s has invalid date %q: %w", tx.Id, date, err)
	}
	if tx.Amount, err = parseDecimalText(amount); err != nil {
		return nil, fmt.Errorf("transaction %s has invalid amount %q: %w", tx.Id, amount, err)
	}
	if tx.FiatAmount, err = parseDecimalText(fiatAmount); err != nil {
		return nil, fmt.Errorf("transaction %s has invalid fiat_amount %q: %w", tx.Id, fiatAmount, err)
	}
	if tx.FromAmount, err = parseDecimalText(fromAmount); err != nil {
		return nil, fmt.Errorf("transaction %s has invalid from_amount %q: %w", tx.Id, fromAmount, err)
	}
	if tx.ToAmount, err = parseDecimalText(toAmount); err != nil {
		return nil, fmt.Errorf("transaction %s has invalid to_amount %q: %w", tx.Id, toAmount, err)
	}
	return &tx, nil
}
