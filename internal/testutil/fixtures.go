package testutil

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

// Codes and ids of the fixed data set loaded by SeedWorld.
const (
	ActiveBatch       = "BATCH-20260112-1234"
	ActiveBatchID     = "batch-active"
	RecalledBatch     = "BATCH-20250101-0001"
	RecalledBatchID   = "batch-recalled"
	EmptyBatch        = "BATCH-20260301-0007"
	EmptyBatchID      = "batch-empty"
	UnknownBatch      = "BATCH-19990101-0000"
	RecallReason      = "Contamination detected in raw material"
	RetailerNorthID   = "retailer-north"
	RetailerSouthID   = "retailer-south"
	ManufacturerID    = "mfr-golden"
	ManufacturerName  = "Golden Farms Co."
	ManufacturerLicNo = "LIC-2024-0042"
	ProductHoneyID    = "prod-honey"
	ProductHoneyName  = "Organic Honey"
	ProductJuiceID    = "prod-juice"
	ProductJuiceName  = "Apple Juice"
	ProductHoneyPrice = "12.50"
	ProductJuicePrice = "3.20"
)

// Serial codes of units under ActiveBatch and RecalledBatch.
const (
	SerialNorth1   = ActiveBatch + "-0001"
	SerialNorth2   = ActiveBatch + "-0002"
	SerialSouth    = ActiveBatch + "-0003"
	SerialSold     = ActiveBatch + "-0004"
	SerialFlagged  = ActiveBatch + "-0009"
	SerialRecalled = RecalledBatch + "-0001"
)

// SeedWorld loads a fixed data set:
//   - ActiveBatch: honey, expires 2027-01-12, five units (three in stock at two
//     retailers, one sold, one flagged counterfeit) and four custody events.
//   - RecalledBatch: juice, expired 2025-06-01, recalled, one unit.
//   - EmptyBatch: honey, no units and no events.
func SeedWorld(t *testing.T, db *sqlx.DB) {
	t.Helper()

	created := At(2026, 1, 12, 7, 0)

	mustExec(t, db, `INSERT INTO products (id, name, description, category, image_url, price, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ProductHoneyID, ProductHoneyName, "Raw wildflower honey", "Food", "https://cdn.example.com/honey.png", ProductHoneyPrice, created)
	mustExec(t, db, `INSERT INTO products (id, name, description, category, image_url, price, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ProductJuiceID, ProductJuiceName, nil, "Beverage", nil, ProductJuicePrice, created)

	mustExec(t, db, `INSERT INTO manufacturers (id, name, license_number) VALUES (?, ?, ?)`,
		ManufacturerID, ManufacturerName, ManufacturerLicNo)

	mustExec(t, db, `INSERT INTO retailers (id, name, location) VALUES (?, ?, ?)`,
		RetailerNorthID, "North Market", "Oslo")
	mustExec(t, db, `INSERT INTO retailers (id, name, location) VALUES (?, ?, ?)`,
		RetailerSouthID, "South Grocers", "Bergen")

	InsertBatch(t, db, ActiveBatchID, ActiveBatch, ProductHoneyID, Date(2026, 1, 12), Date(2027, 1, 12), "In_Inventory", 5, false, nil)
	InsertBatch(t, db, RecalledBatchID, RecalledBatch, ProductJuiceID, Date(2025, 1, 1), Date(2025, 6, 1), "Recalled", 1, true, strPtr(RecallReason))
	InsertBatch(t, db, EmptyBatchID, EmptyBatch, ProductHoneyID, Date(2026, 3, 1), Date(2027, 3, 1), "Manufacturing", 0, false, nil)

	InsertUnit(t, db, "unit-n1", SerialNorth1, ActiveBatchID, "In_Inventory", strPtr(RetailerNorthID), false)
	InsertUnit(t, db, "unit-n2", SerialNorth2, ActiveBatchID, "In_Inventory", strPtr(RetailerNorthID), false)
	InsertUnit(t, db, "unit-s1", SerialSouth, ActiveBatchID, "In_Inventory", strPtr(RetailerSouthID), false)
	InsertUnit(t, db, "unit-sold", SerialSold, ActiveBatchID, "Sold", nil, false)
	InsertUnit(t, db, "unit-flag", SerialFlagged, ActiveBatchID, "In_Inventory", nil, true)
	InsertUnit(t, db, "unit-r1", SerialRecalled, RecalledBatchID, "In_Inventory", strPtr(RetailerNorthID), false)

	// Inserted out of chronological order on purpose; the batch "Received" and
	// the unit "Stocked" share a timestamp.
	InsertEvent(t, db, "ev-2", "batch", ActiveBatchID, "Shipped", "Golden Farms Co.", strPtr("Warehouse 3"), At(2026, 1, 13, 9, 0))
	InsertEvent(t, db, "ev-1", "batch", ActiveBatchID, "Manufactured", "Golden Farms Co.", nil, At(2026, 1, 12, 8, 0))
	InsertEvent(t, db, "ev-3", "batch", ActiveBatchID, "Received", "North Market", strPtr("Oslo"), At(2026, 1, 15, 10, 0))
	InsertEvent(t, db, "ev-4", "unit", "unit-n1", "Stocked", "North Market", strPtr("Oslo"), At(2026, 1, 15, 10, 0))
	InsertEvent(t, db, "ev-5", "batch", RecalledBatchID, "Manufactured", "Golden Farms Co.", nil, At(2025, 1, 1, 8, 0))
}

func InsertBatch(t *testing.T, db *sqlx.DB, id, number, productID string, mfg, exp time.Time, status string, total int, recalled bool, reason *string) {
	t.Helper()
	mustExec(t, db, `INSERT INTO batches (id, batch_number, product_id, manufacturer_id, manufacturing_date, expiry_date,
		status, total_items, is_recalled, recall_reason, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, number, productID, ManufacturerID, mfg, exp, status, total, recalled, reason, mfg)
}

func InsertUnit(t *testing.T, db *sqlx.DB, id, serial, batchID, status string, retailerID *string, flagged bool) {
	t.Helper()
	var reason *string
	if flagged {
		reason = strPtr("Reported counterfeit")
	}
	mustExec(t, db, `INSERT INTO units (id, serial_code, batch_id, current_status, current_retailer_id, is_flagged, flag_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, serial, batchID, status, retailerID, flagged, reason, At(2026, 1, 12, 7, 30))
}

func InsertEvent(t *testing.T, db *sqlx.DB, eventID, subjectType, subjectID, action, actor string, location *string, at time.Time) {
	t.Helper()
	mustExec(t, db, `INSERT INTO custody_events (event_id, subject_type, subject_id, action, actor_name, location, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		eventID, subjectType, subjectID, action, actor, location, at)
}

func mustExec(t *testing.T, db *sqlx.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func strPtr(s string) *string { return &s }
