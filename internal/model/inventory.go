package model

type Unit struct {
	BaseModel
	SerialCode        string      `db:"serial_code" json:"serial_code"`
	BatchID           string      `db:"batch_id" json:"batch_id"`
	CurrentStatus     BatchStatus `db:"current_status" json:"current_status"`
	CurrentRetailerID *string     `db:"current_retailer_id" json:"current_retailer_id"`
	IsFlagged         bool        `db:"is_flagged" json:"is_flagged"`
	FlagReason        *string     `db:"flag_reason" json:"flag_reason"`
}

type UnitDetail struct {
	Unit
	RetailerName     *string      `db:"retailer_name" json:"retailer_name"`
	RetailerLocation *string      `db:"retailer_location" json:"retailer_location"`
	Batch            *BatchDetail `db:"-" json:"batch"`
}

// RetailerStock is the number of in-inventory units of a batch one retailer holds.
type RetailerStock struct {
	RetailerID string `db:"retailer_id" json:"retailer_id"`
	Name       string `db:"name" json:"name"`
	Location   string `db:"location" json:"location"`
	Quantity   int    `db:"quantity" json:"quantity"`
}
