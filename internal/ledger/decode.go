package ledger

import (
	"go.uber.org/zap"

	"crypto-networth-go/internal/models"
)

// Decode converts flat transaction rows into typed ledger entries. Rows
// whose type-specific fields are inconsistent with their type (missing ids,
// non-positive amounts, same-storage transfers, same-asset swaps) are
// skipped rather than failing the replay; the skipped count is returned so
// callers can surface partial data.
func Decode(rows []models.CryptoTransaction) ([]Entry, int) {
	entries := make([]Entry, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		entry, ok := decodeRow(row)
		if !ok {
			skipped++
			zap.L().Debug("Skipping malformed transaction row",
				zap.String("id", row.Id),
				zap.String("type", row.Type))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped
}

func decodeRow(row models.CryptoTransaction) (Entry, bool) {
	switch row.Type {
	case models.TxBuy:
		if !validQuantity(row.AssetId, row.StorageId, row) {
			return nil, false
		}
		return Buy{AssetId: row.AssetId, StorageId: row.StorageId, Amount: row.Amount}, true

	case models.TxSell:
		if !validQuantity(row.AssetId, row.StorageId, row) {
			return nil, false
		}
		return Sell{AssetId: row.AssetId, StorageId: row.StorageId, Amount: row.Amount}, true

	case models.TxTransferIn:
		if !validQuantity(row.AssetId, row.StorageId, row) {
			return nil, false
		}
		return TransferIn{AssetId: row.AssetId, StorageId: row.StorageId, Amount: row.Amount}, true

	case models.TxTransferOut:
		if !validQuantity(row.AssetId, row.StorageId, row) {
			return nil, false
		}
		return TransferOut{AssetId: row.AssetId, StorageId: row.StorageId, Amount: row.Amount}, true

	case models.TxTransferBetween:
		if row.AssetId == "" || row.FromStorageId == "" || row.ToStorageId == "" ||
			row.FromStorageId == row.ToStorageId || !row.Amount.IsPositive() {
			return nil, false
		}
		return TransferBetween{
			AssetId:       row.AssetId,
			FromStorageId: row.FromStorageId,
			ToStorageId:   row.ToStorageId,
			Amount:        row.Amount,
		}, true

	case models.TxSwap:
		if row.FromAssetId == "" || row.ToAssetId == "" || row.FromAssetId == row.ToAssetId ||
			row.StorageId == "" || !row.FromAmount.IsPositive() || !row.ToAmount.IsPositive() {
			return nil, false
		}
		return Swap{
			FromAssetId: row.FromAssetId,
			FromAmount:  row.FromAmount,
			ToAssetId:   row.ToAssetId,
			ToAmount:    row.ToAmount,
			StorageId:   row.StorageId,
		}, true
	}

	// Unknown transaction type.
	return nil, false
}

func validQuantity(assetId, storageId string, row models.CryptoTransaction) bool {
	return assetId != "" && storageId != "" && row.Amount.IsPositive()
}
