package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"crypto-networth-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrNoSnapshot   = errors.New("no snapshot for user")
	ErrNoRate       = errors.New("no persisted exchange rate")
	ErrAssetInUse   = errors.New("asset still has a nonzero balance")
)

// CreateTransactionParams carries the flat transaction row shape for writes.
// Exactly one field group should be populated for the given Type; the ledger
// replay skips rows that violate this, so the store does not enforce it.
type CreateTransactionParams struct {
	UserId        string
	Type          string
	Date          time.Time
	TxId          string
	TxExplorerUrl string

	AssetId             string
	Amount              decimal.Decimal
	StorageId           string
	FiatAmount          decimal.Decimal
	LinkedTransactionId string

	FromStorageId string
	ToStorageId   string

	FromAssetId string
	FromAmount  decimal.Decimal
	ToAssetId   string
	ToAmount    decimal.Decimal
}

// PortfolioStore defines the contract the snapshot jobs and CLI tools need
// from a backend. The SQLite implementation lives in internal/database.
type PortfolioStore interface {
	// --- Users ---
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, name, email string) (*models.User, error)
	// ListUsersWithAssets returns the distinct ids of users who own at
	// least one crypto asset, the population of the portfolio snapshot job.
	ListUsersWithAssets(ctx context.Context) ([]string, error)

	// --- Assets & storages ---
	ListAssets(ctx context.Context, userId string) ([]models.Asset, error)
	ListAllAssets(ctx context.Context) ([]models.Asset, error)
	CreateAsset(ctx context.Context, asset models.Asset) (*models.Asset, error)
	// AssetHasBalance is the deletion oracle: removal of an asset is
	// blocked while any transaction leaves it with a nonzero balance.
	AssetHasBalance(ctx context.Context, userId, assetId string) (bool, error)
	DeleteAsset(ctx context.Context, userId, assetId string) error
	ListStorages(ctx context.Context, userId string) ([]models.Storage, error)
	CreateStorage(ctx context.Context, storage models.Storage) (*models.Storage, error)

	// --- Crypto transaction log ---
	ListTransactions(ctx context.Context, userId string) ([]models.CryptoTransaction, error)
	ListAllTransactions(ctx context.Context) ([]models.CryptoTransaction, error)
	CreateTransaction(ctx context.Context, params CreateTransactionParams) (*models.CryptoTransaction, error)
	DeleteTransaction(ctx context.Context, userId, transactionId string) error

	// --- Bank ledger ---
	CreateCalendarTransaction(ctx context.Context, row models.CalendarTransaction) error
	// BankBalancesByUser sums signed calendar amounts grouped by user in a
	// single scan (income positive, expense negative).
	BankBalancesByUser(ctx context.Context) (map[string]decimal.Decimal, error)

	// --- Snapshots ---
	UpsertPortfolioSnapshot(ctx context.Context, snapshot models.PortfolioSnapshot) error
	// LatestPortfolioSnapshot returns the user's snapshot on the given date
	// or, failing that, the most recent prior one. ErrNoSnapshot when the
	// user has none at all.
	LatestPortfolioSnapshot(ctx context.Context, userId string, onOrBefore time.Time) (*models.PortfolioSnapshot, error)
	ListPortfolioSnapshotUsers(ctx context.Context) ([]string, error)
	UpsertNetWorthSnapshot(ctx context.Context, snapshot models.NetWorthSnapshot) error
	GetNetWorthSnapshot(ctx context.Context, userId string, date time.Time) (*models.NetWorthSnapshot, error)

	// --- Exchange rate persistence (pricing.RateStore) ---
	LastExchangeRate(ctx context.Context) (decimal.Decimal, error)
	SaveExchangeRate(ctx context.Context, rate decimal.Decimal) error
}
