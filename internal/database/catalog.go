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
	"go.uber.org/zap"

	"crypto-networth-go/internal/ledger"
	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/store"
)

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, queryGetActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer closeRows(rows)

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Id, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Service) CreateUser(ctx context.Context, name, email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, queryInsertUser, uuid.New().String(), name, email).
		Scan(&u.Id, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

func (s *Service) ListUsersWithAssets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, queryGetUsersWithAssets)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with assets: %w", err)
	}
	defer closeRows(rows)

	var userIds []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIds = append(userIds, id)
	}
	return userIds, rows.Err()
}

func (s *Service) ListAssets(ctx context.Context, userId string) ([]models.Asset, error) {
	return s.scanAssets(ctx, queryGetUserAssets, userId)
}

func (s *Service) ListAllAssets(ctx context.Context) ([]models.Asset, error) {
	return s.scanAssets(ctx, queryGetAllAssets)
}

func (s *Service) scanAssets(ctx context.Context, query string, args ...any) ([]models.Asset, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer closeRows(rows)

	var assets []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.Id, &a.UserId, &a.CoingeckoId, &a.Name, &a.Symbol, &a.IconUrl, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (s *Service) CreateAsset(ctx context.Context, asset models.Asset) (*models.Asset, error) {
	id := asset.Id
	if id == "" {
		id = uuid.New().String()
	}
	var a models.Asset
	err := s.db.QueryRowContext(ctx, queryInsertAsset,
		id, asset.UserId, asset.CoingeckoId, asset.Name, asset.Symbol, asset.IconUrl).
		Scan(&a.Id, &a.UserId, &a.CoingeckoId, &a.Name, &a.Symbol, &a.IconUrl, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}
	return &a, nil
}

// AssetHasBalance replays the user's transaction log and reports whether the
// asset still holds a nonzero total. Consulted before asset deletion.
func (s *Service) AssetHasBalance(ctx context.Context, userId, assetId string) (bool, error) {
	transactions, err := s.ListTransactions(ctx, userId)
	if err != nil {
		return false, err
	}
	entries, _ := ledger.Decode(transactions)
	return !ledger.ComputeBalance(assetId, "", entries).IsZero(), nil
}

// DeleteAsset removes an asset after checking the deletion oracle. Returns
// store.ErrAssetInUse while any transaction leaves a nonzero balance.
func (s *Service) DeleteAsset(ctx context.Context, userId, assetId string) error {
	hasBalance, err := s.AssetHasBalance(ctx, userId, assetId)
	if err != nil {
		return err
	}
	if hasBalance {
		return fmt.Errorf("%w: asset %s", store.ErrAssetInUse, assetId)
	}

	result, err := s.db.ExecContext(ctx, queryDeleteAsset, userId, assetId)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		zap.L().Warn("Delete of unknown asset", zap.String("user_id", userId), zap.String("asset_id", assetId))
	}
	return nil
}

func (s *Service) ListStorages(ctx context.Context, userId string) ([]models.Storage, error) {
	rows, err := s.db.QueryContext(ctx, queryGetUserStorages, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list storages: %w", err)
	}
	defer closeRows(rows)

	var storages []models.Storage
	for rows.Next() {
		var st models.Storage
		if err := rows.Scan(&st.Id, &st.UserId, &st.Type, &st.Name, &st.Address, &st.ExplorerUrl, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan storage: %w", err)
		}
		storages = append(storages, st)
	}
	return storages, rows.Err()
}

func (s *Service) CreateStorage(ctx context.Context, storage models.Storage) (*models.Storage, error) {
	id := storage.Id
	if id == "" {
		id = uuid.New().String()
	}
	var st models.Storage
	err := s.db.QueryRowContext(ctx, queryInsertStorage,
		id, storage.UserId, storage.Type, storage.Name, storage.Address, storage.ExplorerUrl).
		Scan(&st.Id, &st.UserId, &st.Type, &st.Name, &st.Address, &st.ExplorerUrl, &st.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	return &st, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zap.L().Warn("Failed to close rows", zap.Error(err))
	}
}
