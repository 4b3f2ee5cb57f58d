package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types stored in crypto_transactions.type.
const (
	TxBuy             = "buy"
	TxSell            = "sell"
	TxTransferBetween = "transfer_between"
	TxSwap            = "swap"
	TxTransferIn      = "transfer_in"
	TxTransferOut     = "transfer_out"
)

// Storage types stored in crypto_storages.type.
const (
	StorageCex    = "cex"
	StorageWallet = "wallet"
)

// DateLayout is the calendar-date format used for transaction dates and
// snapshot keys. Dates carry no time component.
const DateLayout = "2006-01-02"

// User represents a user in the system
type User struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Asset is a crypto asset owned by a user. Identity is immutable once
// created; transactions reference it by id.
type Asset struct {
	Id          string    `db:"id"`
	UserId      string    `db:"user_id"`
	CoingeckoId string    `db:"coingecko_id"`
	Name        string    `db:"name"`
	Symbol      string    `db:"symbol"`
	IconUrl     string    `db:"icon_url"`
	CreatedAt   time.Time `db:"created_at"`
}

// Storage is a named holding location for crypto assets: a centralized
// exchange account or a self-custody wallet.
type Storage struct {
	Id          string    `db:"id"`
	UserId      string    `db:"user_id"`
	Type        string    `db:"type"` // cex or wallet
	Name        string    `db:"name"`
	Address     string    `db:"address"` // wallet only
	ExplorerUrl string    `db:"explorer_url"`
	CreatedAt   time.Time `db:"created_at"`
}

// CryptoTransaction is the flat append-only transaction row. Exactly one
// shape of the type-specific fields is populated per Type; unused fields
// stay empty/zero. The ledger package decodes rows into typed entries and
// skips rows whose shape is inconsistent with their type.
type CryptoTransaction struct {
	Id            string    `db:"id"`
	UserId        string    `db:"user_id"`
	Type          string    `db:"type"`
	Date          time.Time `db:"date"` // calendar date, no time component
	TxId          string    `db:"tx_id"`
	TxExplorerUrl string    `db:"tx_explorer_url"`

	// buy / sell / transfer_in / transfer_out
	AssetId    string          `db:"asset_id"`
	Amount     decimal.Decimal `db:"amount"`
	StorageId  string          `db:"storage_id"`
	FiatAmount decimal.Decimal `db:"fiat_amount"` // VND, buy/sell only

	// optional back-reference to the calendar row created by buy/sell
	LinkedTransactionId string `db:"linked_transaction_id"`

	// transfer_between
	FromStorageId string `db:"from_storage_id"`
	ToStorageId   string `db:"to_storage_id"`

	// swap
	FromAssetId string          `db:"from_asset_id"`
	FromAmount  decimal.Decimal `db:"from_amount"`
	ToAssetId   string          `db:"to_asset_id"`
	ToAmount    decimal.Decimal `db:"to_amount"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CalendarTransaction is a row of the fiat bank ledger: a VND amount per
// calendar entry. Income counts positive towards the bank balance, expense
// negative.
type CalendarTransaction struct {
	Id        string          `db:"id"`
	UserId    string          `db:"user_id"`
	Kind      string          `db:"kind"` // income or expense
	Amount    decimal.Decimal `db:"amount"`
	Date      time.Time       `db:"date"`
	CreatedAt time.Time       `db:"created_at"`
}

// Allocation is one asset's share of a portfolio snapshot, keyed by
// coingecko id in the snapshot's allocations map.
type Allocation struct {
	Percentage decimal.Decimal `json:"percentage"`
	ValueUsd   decimal.Decimal `json:"value_usd"`
}

// PortfolioSnapshot is the dated per-user crypto portfolio aggregate.
// One row per (user_id, snapshot_date); reruns upsert.
type PortfolioSnapshot struct {
	UserId        string                `db:"user_id"`
	SnapshotDate  time.Time             `db:"snapshot_date"`
	TotalValueUsd decimal.Decimal       `db:"total_value_usd"`
	Allocations   map[string]Allocation `db:"allocations"`
	UpdatedAt     time.Time             `db:"updated_at"`
}

// NetWorthSnapshot is the dated per-user unified net worth row.
// One row per (user_id, snapshot_date); reruns upsert.
type NetWorthSnapshot struct {
	UserId         string          `db:"user_id"`
	SnapshotDate   time.Time       `db:"snapshot_date"`
	BankBalance    decimal.Decimal `db:"bank_balance"`
	CryptoValueVnd decimal.Decimal `db:"crypto_value_vnd"`
	TotalNetWorth  decimal.Decimal `db:"total_net_worth"`
	ExchangeRate   decimal.Decimal `db:"exchange_rate"`
	UpdatedAt      time.Time       `db:"updated_at"`
}
