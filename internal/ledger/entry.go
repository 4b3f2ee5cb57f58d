// Package ledger derives crypto balances by replaying the append-only
// transaction log. Nothing here touches I/O: the engine is a pure fold over
// decoded entries, so results depend only on the inputs and the entry order
// never matters.
package ledger

import "github.com/shopspring/decimal"

// Entry is one decoded transaction effect. Each variant carries only the
// fields its type needs, so a constructed Entry cannot be malformed.
//
// Effect returns the signed contribution of the entry to the balance of
// assetId held in storageId. An empty storageId means "across all storages".
type Entry interface {
	Effect(assetId, storageId string) decimal.Decimal
}

// Buy credits Amount of AssetId into StorageId.
type Buy struct {
	AssetId   string
	StorageId string
	Amount    decimal.Decimal
}

func (e Buy) Effect(assetId, storageId string) decimal.Decimal {
	if assetId != e.AssetId || (storageId != "" && storageId != e.StorageId) {
		return decimal.Zero
	}
	return e.Amount
}

// Sell debits Amount of AssetId from StorageId.
type Sell struct {
	AssetId   string
	StorageId string
	Amount    decimal.Decimal
}

func (e Sell) Effect(assetId, storageId string) decimal.Decimal {
	if assetId != e.AssetId || (storageId != "" && storageId != e.StorageId) {
		return decimal.Zero
	}
	return e.Amount.Neg()
}

// TransferIn credits Amount of AssetId into StorageId from outside the
// tracked portfolio.
type TransferIn struct {
	AssetId   string
	StorageId string
	Amount    decimal.Decimal
}

func (e TransferIn) Effect(assetId, storageId string) decimal.Decimal {
	if assetId != e.AssetId || (storageId != "" && storageId != e.StorageId) {
		return decimal.Zero
	}
	return e.Amount
}

// TransferOut debits Amount of AssetId from StorageId to outside the
// tracked portfolio.
type TransferOut struct {
	AssetId   string
	StorageId string
	Amount    decimal.Decimal
}

func (e TransferOut) Effect(assetId, storageId string) decimal.Decimal {
	if assetId != e.AssetId || (storageId != "" && storageId != e.StorageId) {
		return decimal.Zero
	}
	return e.Amount.Neg()
}

// TransferBetween moves Amount of AssetId from FromStorageId to ToStorageId.
// It never changes the asset's total holdings, only their location, so the
// all-storages effect is always zero.
type TransferBetween struct {
	AssetId       string
	FromStorageId string
	ToStorageId   string
	Amount        decimal.Decimal
}

func (e TransferBetween) Effect(assetId, storageId string) decimal.Decimal {
	if assetId != e.AssetId || storageId == "" {
		return decimal.Zero
	}
	switch storageId {
	case e.FromStorageId:
		return e.Amount.Neg()
	case e.ToStorageId:
		return e.Amount
	}
	return decimal.Zero
}

// Swap exchanges FromAmount of FromAssetId for ToAmount of ToAssetId within
// a single storage.
type Swap struct {
	FromAssetId string
	FromAmount  decimal.Decimal
	ToAssetId   string
	ToAmount    decimal.Decimal
	StorageId   string
}

func (e Swap) Effect(assetId, storageId string) decimal.Decimal {
	if storageId != "" && storageId != e.StorageId {
		return decimal.Zero
	}
	switch assetId {
	case e.FromAssetId:
		return e.FromAmount.Neg()
	case e.ToAssetId:
		return e.ToAmount
	}
	return decimal.Zero
}
