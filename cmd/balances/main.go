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

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crypto-networth-go/internal/common"
	"crypto-networth-go/internal/config"
	"crypto-networth-go/internal/database"
	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/pricing"
	"crypto-networth-go/internal/store"
	"crypto-networth-go/internal/valuation"
)

type reportStats struct {
	totalUsers        int
	usersWithHoldings int
	totalValueVnd     decimal.Decimal
}

func printAssetLine(av valuation.AssetValuation, isLast bool) {
	symbol := common.BoxPrefix(isLast)
	price := "price unavailable"
	if !av.PriceMissing {
		price = fmt.Sprintf("$%s, %s%% of portfolio", av.PriceUsd.String(), av.Percentage.StringFixed(2))
	}
	fmt.Printf("%s %-8s: %20s (%s)\n", symbol, av.Asset.Symbol, av.Balance.String(), price)
}

func printUserPortfolio(user models.User, portfolio valuation.Portfolio) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  Total: %s VND ($%s)\n",
		portfolio.TotalValueVnd.StringFixed(0), portfolio.TotalValueUsd.StringFixed(2))
	common.PrintBoxSeparator(common.DefaultWidth - 2)

	held := make([]valuation.AssetValuation, 0, len(portfolio.Assets))
	for _, av := range portfolio.Assets {
		if !av.Balance.IsZero() {
			held = append(held, av)
		}
	}
	for i, av := range held {
		printAssetLine(av, i == len(held)-1)
	}
}

func processUser(ctx context.Context, user models.User, dbService *database.Service,
	quotes map[string]pricing.Quote, rate decimal.Decimal) (valuation.Portfolio, error) {

	assets, err := dbService.ListAssets(ctx, user.Id)
	if err != nil {
		return valuation.Portfolio{}, fmt.Errorf("failed to list assets: %w", err)
	}
	storages, err := dbService.ListStorages(ctx, user.Id)
	if err != nil {
		return valuation.Portfolio{}, fmt.Errorf("failed to list storages: %w", err)
	}
	transactions, err := dbService.ListTransactions(ctx, user.Id)
	if err != nil {
		return valuation.Portfolio{}, fmt.Errorf("failed to list transactions: %w", err)
	}

	return valuation.Compute(assets, storages, transactions, quotes, rate), nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	quotesFile := flag.String("quotes", "", "YAML quote table standing in for the live market-data source")
	flag.Parse()

	logger.Info("Starting portfolio valuation report")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	quotes := map[string]pricing.Quote{}
	var rateSource pricing.RateSource
	if *quotesFile != "" {
		staticSource, err := pricing.LoadStaticSource(*quotesFile)
		if err != nil {
			logger.Fatal("Failed to load quote table", zap.Error(err))
		}
		assets, err := dbService.ListAllAssets(ctx)
		if err != nil {
			logger.Fatal("Failed to list assets", zap.Error(err))
		}
		ids := make([]string, 0, len(assets))
		for _, asset := range assets {
			ids = append(ids, asset.CoingeckoId)
		}
		if quotes, err = staticSource.GetPrices(ctx, ids); err != nil {
			logger.Fatal("Failed to resolve quotes", zap.Error(err))
		}
		rateSource = staticSource
	}
	rate, rateTier := pricing.ResolveRate(ctx, rateSource, dbService, cfg.Pricing.DefaultExchangeRate)

	users, err := dbService.ListUsers(ctx)
	if err != nil {
		logger.Fatal("Failed to list users", zap.Error(err))
	}

	common.PrintHeader("PORTFOLIO VALUATION REPORT", common.DefaultWidth)

	stats := reportStats{totalValueVnd: decimal.Zero}
	for _, user := range users {
		if *emailFlag != "" && user.Email != *emailFlag {
			continue
		}
		stats.totalUsers++

		portfolio, err := processUser(ctx, user, dbService, quotes, rate)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("user_name", user.Name),
				zap.Error(err))
			continue
		}
		if portfolio.TotalValueVnd.IsZero() {
			continue
		}

		stats.usersWithHoldings++
		stats.totalValueVnd = stats.totalValueVnd.Add(portfolio.TotalValueVnd)
		printUserPortfolio(user, portfolio)
	}

	if *emailFlag != "" && stats.totalUsers == 0 {
		logger.Fatal("No matching user",
			zap.String("email", *emailFlag),
			zap.Error(store.ErrUserNotFound))
	}

	summary := fmt.Sprintf("SUMMARY: %d users with holdings of %d queried, %s VND total (rate %s, %s)",
		stats.usersWithHoldings, stats.totalUsers, stats.totalValueVnd.StringFixed(0),
		rate.String(), rateTier)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Valuation report completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_holdings", stats.usersWithHoldings),
		zap.String("total_value_vnd", stats.totalValueVnd.String()))
}
