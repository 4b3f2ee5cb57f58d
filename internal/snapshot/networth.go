package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/pricing"
	"crypto-networth-go/internal/store"
	"crypto-networth-go/internal/valuation"
)

// NetWorthJob combines each user's fiat bank balance with their latest
// crypto portfolio snapshot into one dated net worth row. It runs after the
// portfolio job and reads that job's output.
type NetWorthJob struct {
	store       store.PortfolioStore
	rates       pricing.RateSource
	defaultRate decimal.Decimal
	workers     int
}

func NewNetWorthJob(st store.PortfolioStore, rates pricing.RateSource, defaultRate decimal.Decimal, workers int) *NetWorthJob {
	if workers <= 0 {
		workers = 1
	}
	return &NetWorthJob{store: st, rates: rates, defaultRate: defaultRate, workers: workers}
}

// Run executes one net worth pass for the given calendar date. Processes the
// union of users with bank activity and users with portfolio snapshots: a
// user with only fiat still gets a row, and vice versa. Crypto values fall
// back to the most recent prior snapshot (or zero with none at all), and
// the exchange rate degrades through API, persisted, and configured-default
// tiers without ever failing the run.
func (j *NetWorthJob) Run(ctx context.Context, date time.Time) (*NetWorthSummary, error) {
	zap.L().Info("Starting net worth snapshot job", zap.String("date", date.Format(models.DateLayout)))

	// --- Shared setup phase: batched, fatal on error ---

	bankBalances, err := j.store.BankBalancesByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank balances: %w", err)
	}

	snapshotUsers, err := j.store.ListPortfolioSnapshotUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot users: %w", err)
	}

	userIdSet := make(map[string]bool, len(bankBalances)+len(snapshotUsers))
	for userId := range bankBalances {
		userIdSet[userId] = true
	}
	for _, userId := range snapshotUsers {
		userIdSet[userId] = true
	}
	userIds := make([]string, 0, len(userIdSet))
	for userId := range userIdSet {
		userIds = append(userIds, userId)
	}
	sort.Strings(userIds)

	rate, tier := pricing.ResolveRate(ctx, j.rates, j.store, j.defaultRate)

	summary := &NetWorthSummary{
		Date:           date.Format(models.DateLayout),
		UsersProcessed: len(userIds),
		ExchangeRate:   rate,
		RateTier:       tier,
	}

	// --- Per-user phase: bounded parallelism, isolated failures ---

	failures := make([]*UserFailure, len(userIds))

	var group errgroup.Group
	group.SetLimit(j.workers)
	for i, userId := range userIds {
		group.Go(func() error {
			if err := j.snapshotUser(ctx, userId, date, bankBalances[userId], rate); err != nil {
				zap.L().Error("Net worth snapshot failed for user",
					zap.String("user_id", userId), zap.Error(err))
				failures[i] = &UserFailure{UserId: userId, Error: err.Error()}
			}
			return nil // isolate the failure, keep the batch going
		})
	}
	_ = group.Wait() // workers never return errors

	for _, failure := range failures {
		if failure != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, *failure)
		}
	}
	summary.Succeeded = summary.UsersProcessed - summary.Failed

	zap.L().Info("Net worth snapshot job completed",
		zap.String("date", summary.Date),
		zap.Int("users_processed", summary.UsersProcessed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.String("exchange_rate", rate.String()),
		zap.String("rate_tier", tier))
	return summary, nil
}

func (j *NetWorthJob) snapshotUser(ctx context.Context, userId string, date time.Time,
	bankBalance, rate decimal.Decimal) error {

	cryptoValueUsd := decimal.Zero
	snap, err := j.store.LatestPortfolioSnapshot(ctx, userId, date)
	switch {
	case err == nil:
		cryptoValueUsd = snap.TotalValueUsd
		if !snap.SnapshotDate.Equal(date) {
			zap.L().Debug("Using stale portfolio snapshot for net worth",
				zap.String("user_id", userId),
				zap.String("snapshot_date", snap.SnapshotDate.Format(models.DateLayout)))
		}
	case errors.Is(err, store.ErrNoSnapshot):
		// Fiat-only user; crypto contributes zero.
	default:
		return err
	}

	cryptoValueVnd := cryptoValueUsd.Mul(rate)
	return j.store.UpsertNetWorthSnapshot(ctx, models.NetWorthSnapshot{
		UserId:         userId,
		SnapshotDate:   date,
		BankBalance:    bankBalance,
		CryptoValueVnd: cryptoValueVnd,
		TotalNetWorth:  valuation.NetWorth(bankBalance, cryptoValueVnd),
		ExchangeRate:   rate,
	})
}
