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

const (
	// User queries
	queryGetActiveUsers = `
		SELECT id, name, email, created_at, updated_at
		FROM users
		WHERE active = 1
		ORDER BY created_at`

	queryInsertUser = `
		INSERT INTO users (id, name, email) VALUES (?, ?, ?)
		RETURNING id, name, email, created_at, updated_at`

	queryGetUsersWithAssets = `
		SELECT DISTINCT user_id
		FROM crypto_assets
		ORDER BY user_id`

	// Asset queries
	queryInsertAsset = `
		INSERT INTO crypto_assets (id, user_id, coingecko_id, name, symbol, icon_url)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, user_id, coingecko_id, name, symbol, icon_url, created_at`

	queryGetUserAssets = `
		SELECT id, user_id, coingecko_id, name, symbol, icon_url, created_at
		FROM crypto_assets
		WHERE user_id = ?
		ORDER BY symbol`

	queryGetAllAssets = `
		SELECT id, user_id, coingecko_id, name, symbol, icon_url, created_at
		FROM crypto_assets
		ORDER BY user_id, symbol`

	queryDeleteAsset = `
		DELETE FROM crypto_assets WHERE user_id = ? AND id = ?`

	// Storage queries
	queryInsertStorage = `
		INSERT INTO crypto_storages (id, user_id, type, name, address, explorer_url)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, user_id, type, name, address, explorer_url, created_at`

	queryGetUserStorages = `
		SELECT id, user_id, type, name, address, explorer_url, created_at
		FROM crypto_storages
		WHERE user_id = ?
		ORDER BY name`

	// Crypto transaction queries
	queryInsertCryptoTransaction = `
		INSERT INTO crypto_transactions (
			id, user_id, type, date, tx_id, tx_explorer_url,
			asset_id, amount, storage_id, fiat_amount, linked_transaction_id,
			from_storage_id, to_storage_id,
			from_asset_id, from_amount, to_asset_id, to_amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetUserCryptoTransactions = `
		SELECT id, user_id, type, date, tx_id, tx_explorer_url,
		       asset_id, amount, storage_id, fiat_amount, linked_transaction_id,
		       from_storage_id, to_storage_id,
		       from_asset_id, from_amount, to_asset_id, to_amount,
		       created_at, updated_at
		FROM crypto_transactions
		WHERE user_id = ?
		ORDER BY date, created_at`

	queryGetAllCryptoTransactions = `
		SELECT id, user_id, type, date, tx_id, tx_explorer_url,
		       asset_id, amount, storage_id, fiat_amount, linked_transaction_id,
		       from_storage_id, to_storage_id,
		       from_asset_id, from_amount, to_asset_id, to_amount,
		       created_at, updated_at
		FROM crypto_transactions
		ORDER BY user_id, date, created_at`

	queryGetCryptoTransaction = `
		SELECT id, user_id, type, date, tx_id, tx_explorer_url,
		       asset_id, amount, storage_id, fiat_amount, linked_transaction_id,
		       from_storage_id, to_storage_id,
		       from_asset_id, from_amount, to_asset_id, to_amount,
		       created_at, updated_at
		FROM crypto_transactions
		WHERE id = ?`

	queryDeleteCryptoTransaction = `
		DELETE FROM crypto_transactions WHERE user_id = ? AND id = ?`

	// Bank ledger queries
	queryInsertCalendarTransaction = `
		INSERT INTO calendar_transactions (id, user_id, kind, amount, date)
		VALUES (?, ?, ?, ?, ?)`

	// Signed full scan grouped by user: income counts positive, expense
	// negative. TEXT amounts are summed through CAST, which is acceptable
	// for integer VND values.
	queryBankBalancesByUser = `
		SELECT user_id,
		       COALESCE(SUM(CASE WHEN kind = 'income' THEN CAST(amount AS REAL)
		                         ELSE -CAST(amount AS REAL) END), 0)
		FROM calendar_transactions
		GROUP BY user_id`

	// Snapshot queries. The (user_id, snapshot_date) unique key plus
	// ON CONFLICT upsert keeps reruns idempotent: last write wins, never a
	// second row.
	queryUpsertPortfolioSnapshot = `
		INSERT INTO crypto_portfolio_snapshots (user_id, snapshot_date, total_value_usd, allocations, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, snapshot_date) DO UPDATE SET
			total_value_usd = excluded.total_value_usd,
			allocations = excluded.allocations,
			updated_at = CURRENT_TIMESTAMP`

	queryGetLatestPortfolioSnapshot = `
		SELECT user_id, snapshot_date, total_value_usd, allocations, updated_at
		FROM crypto_portfolio_snapshots
		WHERE user_id = ? AND snapshot_date <= ?
		ORDER BY snapshot_date DESC
		LIMIT 1`

	queryGetPortfolioSnapshotUsers = `
		SELECT DISTINCT user_id
		FROM crypto_portfolio_snapshots
		ORDER BY user_id`

	queryCountPortfolioSnapshots = `
		SELECT COUNT(*)
		FROM crypto_portfolio_snapshots
		WHERE user_id = ? AND snapshot_date = ?`

	queryUpsertNetWorthSnapshot = `
		INSERT INTO net_worth_snapshots (user_id, snapshot_date, bank_balance, crypto_value_vnd, total_net_worth, exchange_rate, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, snapshot_date) DO UPDATE SET
			bank_balance = excluded.bank_balance,
			crypto_value_vnd = excluded.crypto_value_vnd,
			total_net_worth = excluded.total_net_worth,
			exchange_rate = excluded.exchange_rate,
			updated_at = CURRENT_TIMESTAMP`

	queryGetNetWorthSnapshot = `
		SELECT user_id, snapshot_date, bank_balance, crypto_value_vnd, total_net_worth, exchange_rate, updated_at
		FROM net_worth_snapshots
		WHERE user_id = ? AND snapshot_date = ?`

	// Exchange rate persistence (single-row table, id = 1)
	queryUpsertExchangeRate = `
		INSERT INTO exchange_rates (id, vnd_per_usd, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			vnd_per_usd = excluded.vnd_per_usd,
			updated_at = CURRENT_TIMESTAMP`

	queryGetExchangeRate = `
		SELECT vnd_per_usd FROM exchange_rates WHERE id = 1`
)
