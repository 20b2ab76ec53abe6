package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
// Each migration should be idempotent (safe to run multiple times).
var migrationsSQL = map[int]string{
	1: migrationV1GoldPrices,
	2: migrationV2ReminderSignups,
}

// migrationV1GoldPrices creates the daily gold price cache.
//
// One row per calendar day, keyed by the ISO date. The previous iteration of
// this service kept a single-record JSON file that was overwritten daily;
// a keyed table gives the same daily-invalidation semantics without relying
// on ambient filesystem state, and keeps history around for debugging.
const migrationV1GoldPrices = `
-- Migration 001: Daily gold price cache

CREATE TABLE IF NOT EXISTS gold_prices (
    -- Calendar day the price is valid for, ISO 8601 (YYYY-MM-DD)
    day TEXT PRIMARY KEY,

    -- Nisaab price (85 grams of gold) in USD, stored as decimal text
    -- to avoid float drift
    price TEXT NOT NULL,

    -- When the price was fetched from the upstream feed
    fetched_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// migrationV2ReminderSignups creates the reminder signup log.
//
// The mailing-list provider is the source of truth for subscriptions; this
// table is a local audit trail so a failing sync or a duplicate signup can be
// diagnosed without querying the provider. One row per subscriber hash,
// updated on every successful upsert.
const migrationV2ReminderSignups = `
-- Migration 002: Reminder signup log

CREATE TABLE IF NOT EXISTS reminder_signups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Provider member ID: md5 of the lower-cased email
    subscriber_hash TEXT NOT NULL,

    email TEXT NOT NULL,

    -- The threshold date the user submitted, ISO 8601
    anchor_date TEXT NOT NULL,

    -- First projected due date at the time of signup, ISO 8601
    first_due_date TEXT NOT NULL,

    -- When the contact was last pushed to the provider
    synced_at TEXT NOT NULL DEFAULT (datetime('now')),

    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE (subscriber_hash)
);

CREATE INDEX IF NOT EXISTS idx_reminder_signups_email
    ON reminder_signups(email);
`
