package model

import "time"

type BatchStatus string

const (
	BatchStatusManufacturing BatchStatus = "Manufacturing"
	BatchStatusInTransit     BatchStatus = "In_Transit"
	BatchStatusInInventory   BatchStatus = "In_Inventory"
	BatchStatusSold          BatchStatus = "Sold"
	BatchStatusRecalled      BatchStatus = "Recalled"
)

func (s BatchStatus) Valid() bool {
	switch s {
	case BatchStatusManufacturing, BatchStatusInTransit, BatchStatusInInventory, BatchStatusSold, BatchStatusRecalled:
		return true
	}
	return false
}

type Batch struct {
	BaseModel
	BatchNumber       string      `db:"batch_number" json:"batch_number"`
	ProductID         string      `db:"product_id" json:"product_id"`
	ManufacturerID    string      `db:"manufacturer_id" json:"manufacturer_id"`
	ManufacturingDate time.Time   `db:"manufacturing_date" json:"manufacturing_date"`
	ExpiryDate        time.Time   `db:"expiry_date" json:"expiry_date"`
	Status            BatchStatus `db:"status" json:"status"`
	TotalItems        int         `db:"total_items" json:"total_items"`
	IsRecalled        bool        `db:"is_recalled" json:"is_recalled"`
	RecallReason      *string     `db:"recall_reason" json:"recall_reason"`
}

// BatchDetail is a batch joined with its product and manufacturer plus the
// aggregates the verification page shows.
type BatchDetail struct {
	Batch
	ProductName        string  `db:"product_name" json:"product_name"`
	ProductDescription *string `db:"product_description" json:"product_description"`
	Category           string  `db:"category" json:"category"`
	ImageURL           *string `db:"image_url" json:"image_url"`
	ManufacturerName   string  `db:"manufacturer_name" json:"manufacturer_name"`
	LicenseNumber      string  `db:"license_number" json:"license_number"`
	InInventoryCount   int     `db:"in_inventory_count" json:"in_inventory_count"`
	SampleSerial       *string `db:"sample_serial" json:"sample_serial"`
}

// BatchSummary is the flat document used by catalog search.
type BatchSummary struct {
	BatchNumber      string      `db:"batch_number" json:"batch_number"`
	ProductName      string      `db:"product_name" json:"product_name"`
	Category         string      `db:"category" json:"category"`
	ManufacturerName string      `db:"manufacturer_name" json:"manufacturer_name"`
	Status           BatchStatus `db:"status" json:"status"`
	IsRecalled       bool        `db:"is_recalled" json:"is_recalled"`
	ExpiryDate       time.Time   `db:"expiry_date" json:"expiry_date"`
}
