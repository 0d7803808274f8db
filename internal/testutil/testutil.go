// Package testutil provides an in-memory database with the service schema and
// a small fixed data set for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT,
	category    TEXT NOT NULL DEFAULT '',
	image_url   TEXT,
	price       NUMERIC NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL
);
CREATE TABLE manufacturers (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	license_number TEXT NOT NULL
);
CREATE TABLE retailers (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	location TEXT NOT NULL
);
CREATE TABLE batches (
	id                 TEXT PRIMARY KEY,
	batch_number       TEXT NOT NULL UNIQUE,
	product_id         TEXT NOT NULL REFERENCES products(id),
	manufacturer_id    TEXT NOT NULL REFERENCES manufacturers(id),
	manufacturing_date DATE NOT NULL,
	expiry_date        DATE NOT NULL,
	status             TEXT NOT NULL,
	total_items        INTEGER NOT NULL DEFAULT 0,
	is_recalled        BOOLEAN NOT NULL DEFAULT 0,
	recall_reason      TEXT,
	created_at         TIMESTAMP NOT NULL
);
CREATE TABLE units (
	id                  TEXT PRIMARY KEY,
	serial_code         TEXT NOT NULL UNIQUE,
	batch_id            TEXT NOT NULL REFERENCES batches(id),
	current_status      TEXT NOT NULL,
	current_retailer_id TEXT REFERENCES retailers(id),
	is_flagged          BOOLEAN NOT NULL DEFAULT 0,
	flag_reason         TEXT,
	created_at          TIMESTAMP NOT NULL
);
CREATE TABLE custody_events (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id     TEXT NOT NULL UNIQUE,
	subject_type TEXT NOT NULL,
	subject_id   TEXT NOT NULL,
	action       TEXT NOT NULL,
	actor_name   TEXT NOT NULL,
	location     TEXT,
	created_at   TIMESTAMP NOT NULL
);
CREATE INDEX idx_custody_events_subject ON custody_events(subject_type, subject_id, created_at);
CREATE TABLE users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
CREATE TABLE admins (
	user_id      TEXT PRIMARY KEY REFERENCES users(id),
	access_level TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);
`

// NewDB opens a private in-memory database with the schema applied. The pool
// is pinned to one connection because every sqlite memory connection is its
// own database.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// At returns the given UTC wall-clock time.
func At(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}
