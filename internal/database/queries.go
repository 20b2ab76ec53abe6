package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Tries multiple formats and returns the zero time if parsing fails.
func parseTimestamp(s string) time.Time {
	// Try RFC3339 format first (with timezone)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}

	// Try SQLite datetime format (no timezone)
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}

	return time.Time{}
}

// =============================================================================
// Gold Price Queries
// =============================================================================

// GetGoldPrice retrieves the cached price for a calendar day (YYYY-MM-DD).
// Returns ErrNotFound if no price has been cached for that day.
func (db *DB) GetGoldPrice(ctx context.Context, day string) (*GoldPrice, error) {
	query := `
		SELECT day, price, fetched_at
		FROM gold_prices
		WHERE day = ?
	`

	var gp GoldPrice
	var priceStr, fetchedAtStr string

	err := db.QueryRowContext(ctx, query, day).Scan(&gp.Day, &priceStr, &fetchedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query gold price: %w", err)
	}

	gp.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("parse cached price %q: %w", priceStr, err)
	}
	gp.FetchedAt = parseTimestamp(fetchedAtStr)

	return &gp, nil
}

// PutGoldPrice stores the price for a calendar day, replacing any existing
// row for that day. Concurrent same-day writes carry the same fetched value,
// so last-write-wins is acceptable here.
func (db *DB) PutGoldPrice(ctx context.Context, day string, price decimal.Decimal, fetchedAt time.Time) error {
	query := `
		INSERT INTO gold_prices (day, price, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (day) DO UPDATE SET
			price = excluded.price,
			fetched_at = excluded.fetched_at
	`

	_, err := db.ExecContext(ctx, query, day, price.String(), fetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put gold price: %w", err)
	}

	return nil
}

// =============================================================================
// Reminder Signup Queries
// =============================================================================

// UpsertSignup records a successful mailing-list sync for a subscriber.
// A repeated signup for the same subscriber hash updates the existing row.
func (db *DB) UpsertSignup(ctx context.Context, s *ReminderSignup) error {
	query := `
		INSERT INTO reminder_signups (subscriber_hash, email, anchor_date, first_due_date, synced_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (subscriber_hash) DO UPDATE SET
			email = excluded.email,
			anchor_date = excluded.anchor_date,
			first_due_date = excluded.first_due_date,
			synced_at = excluded.synced_at,
			updated_at = datetime('now')
	`

	syncedAt := s.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, query,
		s.SubscriberHash, s.Email, s.AnchorDate, s.FirstDueDate,
		syncedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert signup: %w", err)
	}

	return nil
}

// GetSignupByHash retrieves a signup by its subscriber hash.
// Returns ErrNotFound if the subscriber has never synced.
func (db *DB) GetSignupByHash(ctx context.Context, hash string) (*ReminderSignup, error) {
	query := `
		SELECT id, subscriber_hash, email, anchor_date, first_due_date,
		       synced_at, created_at, updated_at
		FROM reminder_signups
		WHERE subscriber_hash = ?
	`

	var s ReminderSignup
	var syncedAtStr, createdAtStr, updatedAtStr string

	err := db.QueryRowContext(ctx, query, hash).Scan(
		&s.ID,
		&s.SubscriberHash,
		&s.Email,
		&s.AnchorDate,
		&s.FirstDueDate,
		&syncedAtStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query signup by hash: %w", err)
	}

	s.SyncedAt = parseTimestamp(syncedAtStr)
	s.CreatedAt = parseTimestamp(createdAtStr)
	s.UpdatedAt = parseTimestamp(updatedAtStr)

	return &s, nil
}

// CountSignups returns the number of distinct subscribers that have synced.
func (db *DB) CountSignups(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reminder_signups").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count signups: %w", err)
	}
	return count, nil
}
