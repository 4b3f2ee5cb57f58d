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
	"time"

	"go.uber.org/zap"

	"crypto-networth-go/internal/common"
	"crypto-networth-go/internal/config"
	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/pricing"
	"crypto-networth-go/internal/snapshot"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	jobFlag := flag.String("job", "all", "Which job to run: portfolio, networth, or all")
	dateFlag := flag.String("date", "", "Snapshot date (YYYY-MM-DD), defaults to today")
	quotesFile := flag.String("quotes", "", "YAML quote table standing in for the live market-data source")
	flag.Parse()

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if *dateFlag != "" {
		parsed, err := time.Parse(models.DateLayout, *dateFlag)
		if err != nil {
			logger.Fatal("Invalid -date value", zap.String("date", *dateFlag), zap.Error(err))
		}
		date = parsed
	}

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

	var priceSource pricing.PriceSource = &pricing.StaticSource{}
	var rateSource pricing.RateSource
	if *quotesFile != "" {
		staticSource, err := pricing.LoadStaticSource(*quotesFile)
		if err != nil {
			logger.Fatal("Failed to load quote table", zap.Error(err))
		}
		priceSource = staticSource
		rateSource = staticSource
	}
	priceSource = pricing.NewCachedPriceSource(
		pricing.NewLimitedPriceSource(priceSource, cfg.Pricing.PriceCallInterval),
		cfg.Pricing.CacheTTL)

	runPortfolio := *jobFlag == "portfolio" || *jobFlag == "all"
	runNetWorth := *jobFlag == "networth" || *jobFlag == "all"
	if !runPortfolio && !runNetWorth {
		logger.Fatal("Unknown -job value", zap.String("job", *jobFlag))
	}

	common.PrintHeader("DAILY SNAPSHOT RUN: "+date.Format(models.DateLayout), common.DefaultWidth)

	if runPortfolio {
		job := snapshot.NewPortfolioJob(dbService, priceSource, cfg.Snapshot.Workers)
		summary, err := job.Run(ctx, date)
		if err != nil {
			logger.Fatal("Portfolio snapshot job failed", zap.Error(err))
		}
		fmt.Printf("portfolio : %d processed, %d written, %d failed, %d zero-value skipped, total $%s\n",
			summary.UsersProcessed, summary.Succeeded, summary.Failed,
			summary.SkippedZeroValue, summary.TotalValueUsd.StringFixed(2))
	}

	if runNetWorth {
		job := snapshot.NewNetWorthJob(dbService, rateSource, cfg.Pricing.DefaultExchangeRate, cfg.Snapshot.Workers)
		summary, err := job.Run(ctx, date)
		if err != nil {
			logger.Fatal("Net worth snapshot job failed", zap.Error(err))
		}
		fmt.Printf("net worth : %d processed, %d written, %d failed, rate %s (%s)\n",
			summary.UsersProcessed, summary.Succeeded, summary.Failed,
			summary.ExchangeRate.String(), summary.RateTier)
	}

	common.PrintFooter("SNAPSHOT RUN COMPLETE", common.DefaultWidth)
}
