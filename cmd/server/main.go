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
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"crypto-networth-go/internal/common"
	"crypto-networth-go/internal/config"
	"crypto-networth-go/internal/pricing"
	"crypto-networth-go/internal/server"
	"crypto-networth-go/internal/snapshot"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	quotesFile := flag.String("quotes", "", "YAML quote table standing in for the live market-data source (optional)")
	flag.Parse()

	logger.Info("Starting snapshot job server")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.Snapshot.AuthToken == "" {
		logger.Fatal("SNAPSHOT_AUTH_TOKEN must be set")
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	var priceSource pricing.PriceSource
	var rateSource pricing.RateSource
	if *quotesFile != "" {
		staticSource, err := pricing.LoadStaticSource(*quotesFile)
		if err != nil {
			logger.Fatal("Failed to load quote table", zap.Error(err))
		}
		priceSource = staticSource
		rateSource = staticSource
		logger.Info("Using static quote table", zap.String("file", *quotesFile))
	} else {
		logger.Warn("No market-data source configured; price batches return no quotes and rates degrade to fallbacks")
		priceSource = &pricing.StaticSource{}
	}

	// Paced and cached so a failed or rate-limited fetch degrades to the
	// last known batch instead of failing the run.
	priceSource = pricing.NewCachedPriceSource(
		pricing.NewLimitedPriceSource(priceSource, cfg.Pricing.PriceCallInterval),
		cfg.Pricing.CacheTTL)

	portfolioJob := snapshot.NewPortfolioJob(dbService, priceSource, cfg.Snapshot.Workers)
	netWorthJob := snapshot.NewNetWorthJob(dbService, rateSource, cfg.Pricing.DefaultExchangeRate, cfg.Snapshot.Workers)

	httpServer := &http.Server{
		Addr:              cfg.Snapshot.Addr,
		Handler:           server.New(portfolioJob, netWorthJob, cfg.Snapshot.AuthToken),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Listening", zap.String("addr", cfg.Snapshot.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}
