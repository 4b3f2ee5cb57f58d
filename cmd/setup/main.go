package main

import (
	"context"
	"flag"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crypto-networth-go/internal/common"
	"crypto-networth-go/internal/config"
	"crypto-networth-go/internal/database"
	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/store"
)

// setup initializes the database schema and, when demo data is enabled,
// seeds a user with assets from the coin catalog, two storages, and a small
// transaction history so the jobs and reports have something to chew on.
func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	demoFlag := flag.Bool("demo", false, "Seed demo data regardless of CREATE_DEMO_DATA")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Initializing database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	if !cfg.Database.CreateDemoData && !*demoFlag {
		logger.Info("Schema initialized; skipping demo data (CREATE_DEMO_DATA=false)")
		return
	}

	if err := seedDemoData(ctx, dbService, cfg.Pricing.AssetsFile); err != nil {
		logger.Fatal("Failed to seed demo data", zap.Error(err))
	}
	logger.Info("Demo data seeded")
}

func seedDemoData(ctx context.Context, dbService *database.Service, assetsFile string) error {
	catalog, err := common.LoadCoinCatalog(assetsFile)
	if err != nil {
		return err
	}

	user, err := dbService.CreateUser(ctx, "Alice Johnson", "alice.johnson@example.com")
	if err != nil {
		return err
	}

	exchange, err := dbService.CreateStorage(ctx, models.Storage{
		UserId: user.Id, Type: models.StorageCex, Name: "Binance",
	})
	if err != nil {
		return err
	}
	wallet, err := dbService.CreateStorage(ctx, models.Storage{
		UserId: user.Id, Type: models.StorageWallet, Name: "Ledger",
		Address: "bc1qdemo", ExplorerUrl: "https://mempool.space/address/bc1qdemo",
	})
	if err != nil {
		return err
	}

	assetsByCoin := make(map[string]*models.Asset, len(catalog))
	for _, coin := range catalog {
		asset, err := dbService.CreateAsset(ctx, models.Asset{
			UserId:      user.Id,
			CoingeckoId: coin.CoingeckoId,
			Name:        coin.Name,
			Symbol:      coin.Symbol,
			IconUrl:     coin.IconUrl,
		})
		if err != nil {
			return err
		}
		assetsByCoin[coin.CoingeckoId] = asset
	}

	btc, ok := assetsByCoin["bitcoin"]
	if !ok {
		zap.L().Warn("Coin catalog has no bitcoin entry; skipping demo transactions")
		return nil
	}

	date := time.Now().UTC().AddDate(0, 0, -30)
	demo := []store.CreateTransactionParams{
		{
			UserId: user.Id, Type: models.TxBuy, Date: date,
			AssetId: btc.Id, Amount: decimal.RequireFromString("0.5"),
			StorageId: exchange.Id, FiatAmount: decimal.NewFromInt(500_000_000),
		},
		{
			UserId: user.Id, Type: models.TxTransferBetween, Date: date.AddDate(0, 0, 7),
			AssetId: btc.Id, Amount: decimal.RequireFromString("0.2"),
			FromStorageId: exchange.Id, ToStorageId: wallet.Id,
		},
		{
			UserId: user.Id, Type: models.TxSell, Date: date.AddDate(0, 0, 14),
			AssetId: btc.Id, Amount: decimal.RequireFromString("0.1"),
			StorageId: exchange.Id, FiatAmount: decimal.NewFromInt(110_000_000),
		},
	}
	if eth, ok := assetsByCoin["ethereum"]; ok {
		demo = append(demo, store.CreateTransactionParams{
			UserId: user.Id, Type: models.TxSwap, Date: date.AddDate(0, 0, 21),
			FromAssetId: btc.Id, FromAmount: decimal.RequireFromString("0.05"),
			ToAssetId: eth.Id, ToAmount: decimal.RequireFromString("1.2"),
			StorageId: wallet.Id,
		})
	}
	for _, params := range demo {
		if _, err := dbService.CreateTransaction(ctx, params); err != nil {
			return err
		}
	}

	calendar := []models.CalendarTransaction{
		{UserId: user.Id, Kind: "income", Amount: decimal.NewFromInt(40_000_000), Date: date},
		{UserId: user.Id, Kind: "expense", Amount: decimal.NewFromInt(12_500_000), Date: date.AddDate(0, 0, 10)},
	}
	for _, row := range calendar {
		if err := dbService.CreateCalendarTransaction(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
