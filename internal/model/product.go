package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description"`
	Category    string          `db:"category" json:"category"`
	ImageURL    *string         `db:"image_url" json:"image_url"`
	Price       decimal.Decimal `db:"price" json:"price"`
}

type Manufacturer struct {
	ID            string `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	LicenseNumber string `db:"license_number" json:"license_number"`
}

type Retailer struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Location string `db:"location" json:"location"`
}
