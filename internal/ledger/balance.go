package ledger

import "github.com/shopspring/decimal"

// ComputeBalance returns the quantity of assetId held in storageId after
// replaying every entry. An empty storageId sums across all storages, i.e.
// the asset's total holdings. The fold is commutative, so the entry order is
// irrelevant, and an empty log yields exactly zero.
//
// The result can go negative when the log is inconsistent (e.g. a sell
// recorded before its buy was entered); the engine does no clamping and
// leaves write-time validation to the caller.
func ComputeBalance(assetId, storageId string, entries []Entry) decimal.Decimal {
	balance := decimal.Zero
	for _, entry := range entries {
		balance = balance.Add(entry.Effect(assetId, storageId))
	}
	return balance
}

// ComputeBalances replays the log once per asset and returns total holdings
// keyed by asset id. Zero balances are included so callers can distinguish
// "holds nothing" from "unknown asset".
func ComputeBalances(assetIds []string, entries []Entry) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(assetIds))
	for _, assetId := range assetIds {
		balances[assetId] = ComputeBalance(assetId, "", entries)
	}
	return balances
}
