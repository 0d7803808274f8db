package dto

import "github.com/fekuna/omnipos-trace-service/internal/model"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type BatchFilters struct {
	Query    string `json:"query"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// Normalize clamps paging to sane values.
func (f *BatchFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

func (f *BatchFilters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type BatchPage struct {
	Items    []model.BatchSummary `json:"items"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Source   string               `json:"source"`
}

type RecallInput struct {
	BatchNumber string
	Reason      string
}
