package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"crypto-networth-go/internal/database"
	"crypto-networth-go/internal/models"
	"crypto-networth-go/internal/pricing"
	"crypto-networth-go/internal/store"
)

func seedBankActivity(t *testing.T, s *database.Service, userId string, income, expense string) {
	t.Helper()
	ctx := context.Background()
	if income != "0" {
		err := s.CreateCalendarTransaction(ctx, models.CalendarTransaction{
			UserId: userId, Kind: "income", Amount: d(income), Date: date("2026-08-01"),
		})
		if err != nil {
			t.Fatalf("Failed to create income row: %v", err)
		}
	}
	if expense != "0" {
		err := s.CreateCalendarTransaction(ctx, models.CalendarTransaction{
			UserId: userId, Kind: "expense", Amount: d(expense), Date: date("2026-08-15"),
		})
		if err != nil {
			t.Fatalf("Failed to create expense row: %v", err)
		}
	}
}

// failingNetWorthStore fails net worth writes for one specific user.
type failingNetWorthStore struct {
	store.PortfolioStore
	failUserId string
}

func (f *failingNetWorthStore) UpsertNetWorthSnapshot(ctx context.Context, snapshot models.NetWorthSnapshot) error {
	if snapshot.UserId == f.failUserId {
		return errors.New("disk full")
	}
	return f.PortfolioStore.UpsertNetWorthSnapshot(ctx, snapshot)
}

func TestNetWorthJob_CombinesBankAndCrypto(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	snapshotDate := date("2026-08-30")

	user := seedUser(t, s, "alice@example.com", "1")
	seedBankActivity(t, s, user.Id, "50000000", "12000000")

	// Portfolio job first, then net worth reads its output.
	if _, err := NewPortfolioJob(s, staticPrices(), 2).Run(ctx, snapshotDate); err != nil {
		t.Fatalf("Portfolio run failed: %v", err)
	}

	job := NewNetWorthJob(s, staticPrices(), d("25000"), 2)
	summary, err := job.Run(ctx, snapshotDate)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 0 {
		t.Fatalf("Unexpected summary: %+v", summary)
	}
	if summary.RateTier != pricing.RateTierApi {
		t.Errorf("Expected api rate tier, got %s", summary.RateTier)
	}

	snap, err := s.GetNetWorthSnapshot(ctx, user.Id, snapshotDate)
	if err != nil {
		t.Fatalf("GetNetWorthSnapshot failed: %v", err)
	}
	if !snap.BankBalance.Equal(d("38000000")) {
		t.Errorf("Expected bank balance 38000000, got %s", snap.BankBalance.String())
	}
	// 1 BTC * 50000 USD * 25400 VND.
	if !snap.CryptoValueVnd.Equal(d("1270000000")) {
		t.Errorf("Expected crypto value 1270000000, got %s", snap.CryptoValueVnd.String())
	}
	if !snap.TotalNetWorth.Equal(d("1308000000")) {
		t.Errorf("Expected net worth 1308000000, got %s", snap.TotalNetWorth.String())
	}
	if !snap.ExchangeRate.Equal(d("25400")) {
		t.Errorf("Expected exchange rate 25400, got %s", snap.ExchangeRate.String())
	}
}

func TestNetWorthJob_UnionOfPopulations(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	snapshotDate := date("2026-08-30")

	// Fiat-only user: bank rows but no assets or snapshots.
	fiatOnly, err := s.CreateUser(ctx, "Fiat Only", "fiat@example.com")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	seedBankActivity(t, s, fiatOnly.Id, "20000000", "0")

	// Crypto-only user: a portfolio snapshot but no bank rows.
	cryptoOnly := seedUser(t, s, "crypto@example.com", "1")
	if _, err := NewPortfolioJob(s, staticPrices(), 2).Run(ctx, snapshotDate); err != nil {
		t.Fatalf("Portfolio run failed: %v", err)
	}

	summary, err := NewNetWorthJob(s, staticPrices(), d("25000"), 2).Run(ctx, snapshotDate)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.UsersProcessed != 2 || summary.Succeeded != 2 {
		t.Fatalf("Expected both populations processed, got %+v", summary)
	}

	fiatSnap, err := s.GetNetWorthSnapshot(ctx, fiatOnly.Id, snapshotDate)
	if err != nil {
		t.Fatalf("Missing row for fiat-only user: %v", err)
	}
	if !fiatSnap.CryptoValueVnd.IsZero() || !fiatSnap.BankBalance.Equal(d("20000000")) {
		t.Errorf("Unexpected fiat-only row: %+v", fiatSnap)
	}

	cryptoSnap, err := s.GetNetWorthSnapshot(ctx, cryptoOnly.Id, snapshotDate)
	if err != nil {
		t.Fatalf("Missing row for crypto-only user: %v", err)
	}
	if !cryptoSnap.BankBalance.IsZero() || cryptoSnap.CryptoValueVnd.IsZero() {
		t.Errorf("Unexpected crypto-only row: %+v", cryptoSnap)
	}
}

func TestNetWorthJob_UsesStalePortfolioSnapshot(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()

	user := seedUser(t, s, "alice@example.com", "1")
	// Portfolio snapshotted days earlier; net worth runs today.
	if _, err := NewPortfolioJob(s, staticPrices(), 2).Run(ctx, date("2026-08-25")); err != nil {
		t.Fatalf("Portfolio run failed: %v", err)
	}

	summary, err := NewNetWorthJob(s, staticPrices(), d("25000"), 2).Run(ctx, date("2026-08-30"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("Expected success with stale snapshot, got %+v", summary)
	}

	snap, err := s.GetNetWorthSnapshot(ctx, user.Id, date("2026-08-30"))
	if err != nil {
		t.Fatalf("GetNetWorthSnapshot failed: %v", err)
	}
	if snap.CryptoValueVnd.IsZero() {
		t.Error("Expected stale portfolio value carried forward, got zero")
	}
}

func TestNetWorthJob_RateFallsBackToDefault(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	snapshotDate := date("2026-08-30")

	user := seedUser(t, s, "alice@example.com", "0")
	seedBankActivity(t, s, user.Id, "10000000", "0")

	// No rate source and no persisted rate: the configured default applies.
	summary, err := NewNetWorthJob(s, nil, d("25000"), 2).Run(ctx, snapshotDate)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.RateTier != pricing.RateTierDefault {
		t.Errorf("Expected default rate tier, got %s", summary.RateTier)
	}
	if !summary.ExchangeRate.Equal(d("25000")) {
		t.Errorf("Expected default rate 25000, got %s", summary.ExchangeRate.String())
	}
}

func TestNetWorthJob_UsesPersistedRate(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()

	user := seedUser(t, s, "alice@example.com", "0")
	seedBankActivity(t, s, user.Id, "10000000", "0")
	if err := s.SaveExchangeRate(ctx, d("25350")); err != nil {
		t.Fatalf("SaveExchangeRate failed: %v", err)
	}

	summary, err := NewNetWorthJob(s, nil, d("25000"), 2).Run(ctx, date("2026-08-30"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.RateTier != pricing.RateTierPersisted {
		t.Errorf("Expected persisted rate tier, got %s", summary.RateTier)
	}
	if !summary.ExchangeRate.Equal(d("25350")) {
		t.Errorf("Expected persisted rate 25350, got %s", summary.ExchangeRate.String())
	}
}

func TestNetWorthJob_IsolatesUserFailures(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	snapshotDate := date("2026-08-30")

	alice, err := s.CreateUser(ctx, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	bob, err := s.CreateUser(ctx, "Bob", "bob@example.com")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	seedBankActivity(t, s, alice.Id, "10000000", "0")
	seedBankActivity(t, s, bob.Id, "20000000", "0")

	wrapped := &failingNetWorthStore{PortfolioStore: s, failUserId: alice.Id}
	summary, err := NewNetWorthJob(wrapped, nil, d("25000"), 2).Run(ctx, snapshotDate)
	if err != nil {
		t.Fatalf("Run failed, one bad user must not abort the batch: %v", err)
	}

	if summary.Failed != 1 || summary.Succeeded != 1 {
		t.Fatalf("Expected 1 failure and 1 success, got %+v", summary)
	}
	if _, err := s.GetNetWorthSnapshot(ctx, bob.Id, snapshotDate); err != nil {
		t.Errorf("Expected bob's row written, got %v", err)
	}
	if _, err := s.GetNetWorthSnapshot(ctx, alice.Id, snapshotDate); !errors.Is(err, store.ErrNoSnapshot) {
		t.Errorf("Expected no row for alice, got %v", err)
	}
}

func TestNetWorthJob_EmptyDatabase(t *testing.T) {
	s := setupTestDb(t)

	summary, err := NewNetWorthJob(s, nil, decimal.NewFromInt(25000), 2).Run(context.Background(), date("2026-08-30"))
	if err != nil {
		t.Fatalf("Run failed on empty database: %v", err)
	}
	if summary.UsersProcessed != 0 {
		t.Errorf("Expected no users processed, got %+v", summary)
	}
}
