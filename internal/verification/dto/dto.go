package dto

// VerificationResult is the public verification document. Field order and
// names are part of the external contract.
type VerificationResult struct {
	Verified              bool              `json:"verified"`
	IsBatch               bool              `json:"is_batch"`
	Message               string            `json:"message,omitempty"`
	Warning               string            `json:"warning,omitempty"`
	Hint                  string            `json:"hint,omitempty"`
	Error                 string            `json:"error,omitempty"`
	Product               *ProductInfo      `json:"product,omitempty"`
	Manufacturer          *ManufacturerInfo `json:"manufacturer,omitempty"`
	CurrentRetailer       *RetailerInfo     `json:"current_retailer,omitempty"`
	Recall                *RecallInfo       `json:"recall,omitempty"`
	BlockchainHistory     []HistoryEntry    `json:"blockchain_history"`
	VerificationTimestamp string            `json:"verification_timestamp"`

	// Outcome is nil for a resolved code, otherwise ErrBatchNotFound or
	// ErrSerialNotFound from the verification package.
	Outcome error `json:"-"`
}

type ProductInfo struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	BatchNumber       string  `json:"batch_number"`
	SerialCode        string  `json:"serial_code,omitempty"`
	ManufacturingDate string  `json:"manufacturing_date"`
	ExpiryDate        string  `json:"expiry_date"`
	IsExpired         bool    `json:"is_expired"`
	Status            string  `json:"status,omitempty"`
	ImageURL          string  `json:"image_url,omitempty"`
	TotalItems        *int    `json:"total_items,omitempty"`
	InInventoryCount  *int    `json:"in_inventory_count,omitempty"`
	BatchStatus       string  `json:"batch_status,omitempty"`
	SampleSerial      *string `json:"sample_serial,omitempty"`
}

type ManufacturerInfo struct {
	Name          string `json:"name"`
	LicenseNumber string `json:"license_number"`
}

type RetailerInfo struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Quantity *int   `json:"quantity,omitempty"`
}

type RecallInfo struct {
	Reason string `json:"reason"`
}

type HistoryEntry struct {
	Action    string `json:"action"`
	ActorName string `json:"actor_name"`
	Location  string `json:"location,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ErrorResponse is returned for malformed codes and store failures.
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}
