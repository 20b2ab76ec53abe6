package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoldPrice is one day's cached Nisaab price (85 grams of gold, USD).
type GoldPrice struct {
	Day       string          `json:"day"` // ISO 8601 format: YYYY-MM-DD
	Price     decimal.Decimal `json:"price"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// ReminderSignup records a successful mailing-list upsert for a subscriber.
// The provider holds the actual subscription; this row exists for auditing.
type ReminderSignup struct {
	ID             int64     `json:"id"`
	SubscriberHash string    `json:"subscriber_hash"` // md5 of lower-cased email
	Email          string    `json:"email"`
	AnchorDate     string    `json:"anchor_date"`    // ISO 8601
	FirstDueDate   string    `json:"first_due_date"` // ISO 8601
	SyncedAt       time.Time `json:"synced_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
