package database

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// testDB creates a temporary in-memory database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	cfg := Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	// Quiet logger for tests
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := Open(cfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	// Run migrations
	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Second run should apply nothing
	applied, err := db.Migrate(ctx)
	if err != nil {
		t.Fatalf("second Migrate() failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("second Migrate() applied %d migrations, want 0", applied)
	}
}

func TestHealth(t *testing.T) {
	db := testDB(t)

	if err := db.Health(context.Background()); err != nil {
		t.Errorf("Health() = %v, want nil", err)
	}
}

func TestGoldPrice_PutAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	price := decimal.RequireFromString("6430.25")
	fetchedAt := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	if err := db.PutGoldPrice(ctx, "2024-06-01", price, fetchedAt); err != nil {
		t.Fatalf("PutGoldPrice() failed: %v", err)
	}

	got, err := db.GetGoldPrice(ctx, "2024-06-01")
	if err != nil {
		t.Fatalf("GetGoldPrice() failed: %v", err)
	}

	if got.Day != "2024-06-01" {
		t.Errorf("Day = %q, want %q", got.Day, "2024-06-01")
	}
	if !got.Price.Equal(price) {
		t.Errorf("Price = %s, want %s", got.Price, price)
	}
	if !got.FetchedAt.Equal(fetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, fetchedAt)
	}
}

func TestGoldPrice_MissingDay(t *testing.T) {
	db := testDB(t)

	_, err := db.GetGoldPrice(context.Background(), "1999-01-01")
	if !IsNotFound(err) {
		t.Errorf("GetGoldPrice() for missing day = %v, want not-found", err)
	}
}

func TestGoldPrice_SameDayOverwrite(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first := decimal.RequireFromString("6400.00")
	second := decimal.RequireFromString("6410.50")

	if err := db.PutGoldPrice(ctx, "2024-06-01", first, time.Now()); err != nil {
		t.Fatalf("first PutGoldPrice() failed: %v", err)
	}
	if err := db.PutGoldPrice(ctx, "2024-06-01", second, time.Now()); err != nil {
		t.Fatalf("second PutGoldPrice() failed: %v", err)
	}

	got, err := db.GetGoldPrice(ctx, "2024-06-01")
	if err != nil {
		t.Fatalf("GetGoldPrice() failed: %v", err)
	}
	if !got.Price.Equal(second) {
		t.Errorf("Price after overwrite = %s, want %s", got.Price, second)
	}
}

func TestSignup_UpsertAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	signup := &ReminderSignup{
		SubscriberHash: "0c83f57c786a0b4a8032a8af0a4d3c21",
		Email:          "someone@example.com",
		AnchorDate:     "2023-01-15",
		FirstDueDate:   "2024-06-28",
	}

	if err := db.UpsertSignup(ctx, signup); err != nil {
		t.Fatalf("UpsertSignup() failed: %v", err)
	}

	got, err := db.GetSignupByHash(ctx, signup.SubscriberHash)
	if err != nil {
		t.Fatalf("GetSignupByHash() failed: %v", err)
	}

	if got.Email != signup.Email {
		t.Errorf("Email = %q, want %q", got.Email, signup.Email)
	}
	if got.AnchorDate != signup.AnchorDate {
		t.Errorf("AnchorDate = %q, want %q", got.AnchorDate, signup.AnchorDate)
	}
	if got.SyncedAt.IsZero() {
		t.Error("SyncedAt is zero, want a timestamp")
	}
}

func TestSignup_RepeatUpsertKeepsOneRow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	signup := &ReminderSignup{
		SubscriberHash: "0c83f57c786a0b4a8032a8af0a4d3c21",
		Email:          "someone@example.com",
		AnchorDate:     "2023-01-15",
		FirstDueDate:   "2024-06-28",
	}

	if err := db.UpsertSignup(ctx, signup); err != nil {
		t.Fatalf("first UpsertSignup() failed: %v", err)
	}

	// Same subscriber, new anchor date
	signup.AnchorDate = "2023-03-01"
	signup.FirstDueDate = "2024-08-12"
	if err := db.UpsertSignup(ctx, signup); err != nil {
		t.Fatalf("second UpsertSignup() failed: %v", err)
	}

	count, err := db.CountSignups(ctx)
	if err != nil {
		t.Fatalf("CountSignups() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CountSignups() = %d, want 1", count)
	}

	got, err := db.GetSignupByHash(ctx, signup.SubscriberHash)
	if err != nil {
		t.Fatalf("GetSignupByHash() failed: %v", err)
	}
	if got.AnchorDate != "2023-03-01" {
		t.Errorf("AnchorDate after re-upsert = %q, want %q", got.AnchorDate, "2023-03-01")
	}
}

func TestSignup_MissingHash(t *testing.T) {
	db := testDB(t)

	_, err := db.GetSignupByHash(context.Background(), "deadbeef")
	if !IsNotFound(err) {
		t.Errorf("GetSignupByHash() for missing hash = %v, want not-found", err)
	}
}
