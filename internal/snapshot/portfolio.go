package snapshot

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"crypto-networth-go/internal/ledger"
	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/pricing"
	"crypto-networth-go/internal/store"
)

var oneHundred = decimal.NewFromInt(100)

// PortfolioJob computes each user's total crypto value and per-asset
// allocation percentages and upserts one dated row per user.
type PortfolioJob struct {
	store   store.PortfolioStore
	prices  pricing.PriceSource
	workers int
}

func NewPortfolioJob(st store.PortfolioStore, prices pricing.PriceSource, workers int) *PortfolioJob {
	if workers <= 0 {
		workers = 1
	}
	return &PortfolioJob{store: st, prices: prices, workers: workers}
}

// Run executes one snapshot pass for the given calendar date. The setup
// phase (batched loads and the single price call) is fatal on error; the
// per-user phase isolates failures and reports them in the summary.
func (j *PortfolioJob) Run(ctx context.Context, date time.Time) (*PortfolioSummary, error) {
	zap.L().Info("Starting portfolio snapshot job", zap.String("date", date.Format(models.DateLayout)))

	// --- Shared setup phase: batched, fatal on error ---

	userIds, err := j.store.ListUsersWithAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with assets: %w", err)
	}

	allAssets, err := j.store.ListAllAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	assetsByUser := make(map[string][]models.Asset)
	coingeckoIdSet := make(map[string]bool)
	for _, asset := range allAssets {
		assetsByUser[asset.UserId] = append(assetsByUser[asset.UserId], asset)
		coingeckoIdSet[asset.CoingeckoId] = true
	}

	allTransactions, err := j.store.ListAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	transactionsByUser := make(map[string][]models.CryptoTransaction)
	for _, tx := range allTransactions {
		transactionsByUser[tx.UserId] = append(transactionsByUser[tx.UserId], tx)
	}

	// One batched price call for the union of all users' coins, never
	// per-user calls.
	coingeckoIds := make([]string, 0, len(coingeckoIdSet))
	for id := range coingeckoIdSet {
		coingeckoIds = append(coingeckoIds, id)
	}
	sort.Strings(coingeckoIds)

	quotes := map[string]pricing.Quote{}
	if len(coingeckoIds) > 0 {
		quotes, err = j.prices.GetPrices(ctx, coingeckoIds)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch prices: %w", err)
		}
	}

	summary := &PortfolioSummary{
		Date:           date.Format(models.DateLayout),
		UsersProcessed: len(userIds),
		TotalValueUsd:  decimal.Zero,
	}
	for _, id := range coingeckoIds {
		if _, ok := quotes[id]; !ok {
			summary.MissingPrices = append(summary.MissingPrices, id)
		}
	}

	// --- Per-user phase: bounded parallelism, isolated failures ---

	type userOutcome struct {
		failure  *UserFailure
		skipped  bool
		valueUsd decimal.Decimal
	}
	outcomes := make([]userOutcome, len(userIds))

	var group errgroup.Group
	group.SetLimit(j.workers)
	for i, userId := range userIds {
		group.Go(func() error {
			valueUsd, wrote, err := j.snapshotUser(ctx, userId, date, assetsByUser[userId], transactionsByUser[userId], quotes)
			if err != nil {
				zap.L().Error("Portfolio snapshot failed for user",
					zap.String("user_id", userId), zap.Error(err))
				outcomes[i] = userOutcome{failure: &UserFailure{UserId: userId, Error: err.Error()}}
				return nil // isolate the failure, keep the batch going
			}
			outcomes[i] = userOutcome{skipped: !wrote, valueUsd: valueUsd}
			return nil
		})
	}
	_ = group.Wait() // workers never return errors

	var totalValue decimal.Decimal
	for _, outcome := range outcomes {
		switch {
		case outcome.failure != nil:
			summary.Failed++
			summary.Failures = append(summary.Failures, *outcome.failure)
		case outcome.skipped:
			summary.SkippedZeroValue++
		default:
			summary.Succeeded++
			totalValue = totalValue.Add(outcome.valueUsd)
		}
	}
	summary.TotalValueUsd = totalValue

	zap.L().Info("Portfolio snapshot job completed",
		zap.String("date", summary.Date),
		zap.Int("users_processed", summary.UsersProcessed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped_zero_value", summary.SkippedZeroValue),
		zap.String("total_value_usd", summary.TotalValueUsd.String()))
	return summary, nil
}

// snapshotUser replays one user's ledger, values it, and upserts the dated
// row. Users whose portfolio is worth nothing get no row at all.
func (j *PortfolioJob) snapshotUser(ctx context.Context, userId string, date time.Time,
	assets []models.Asset, transactions []models.CryptoTransaction,
	quotes map[string]pricing.Quote) (decimal.Decimal, bool, error) {

	entries, skipped := ledger.Decode(transactions)
	if skipped > 0 {
		zap.L().Warn("Skipped malformed transactions during snapshot",
			zap.String("user_id", userId), zap.Int("skipped", skipped))
	}

	// Value per coingecko id; two assets sharing a coin merge into one
	// allocation entry.
	valueByCoin := make(map[string]decimal.Decimal)
	totalValueUsd := decimal.Zero
	for _, asset := range assets {
		balance := ledger.ComputeBalance(asset.Id, "", entries)
		if balance.IsZero() {
			continue
		}
		quote, ok := quotes[asset.CoingeckoId]
		if !ok {
			continue // no price, values as zero; flagged in the summary
		}
		valueUsd := balance.Mul(quote.Usd)
		valueByCoin[asset.CoingeckoId] = valueByCoin[asset.CoingeckoId].Add(valueUsd)
		totalValueUsd = totalValueUsd.Add(valueUsd)
	}

	if totalValueUsd.IsZero() {
		zap.L().Debug("Skipping zero-value portfolio", zap.String("user_id", userId))
		return decimal.Zero, false, nil
	}

	allocations := make(map[string]models.Allocation, len(valueByCoin))
	for coinId, valueUsd := range valueByCoin {
		allocations[coinId] = models.Allocation{
			Percentage: valueUsd.Mul(oneHundred).Div(totalValueUsd),
			ValueUsd:   valueUsd,
		}
	}

	err := j.store.UpsertPortfolioSnapshot(ctx, models.PortfolioSnapshot{
		UserId:        userId,
		SnapshotDate:  date,
		TotalValueUsd: totalValueUsd,
		Allocations:   allocations,
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	return totalValueUsd, true, nil
}
