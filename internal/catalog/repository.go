package catalog

import (
	"context"

	"github.com/fekuna/omnipos-trace-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-trace-service/internal/model"
)

type Repository interface {
	FindAll(ctx context.Context, filters *dto.BatchFilters) ([]model.BatchSummary, int, error)
	FindByNumber(ctx context.Context, batchNumber string) (*model.BatchSummary, error)
	// SetRecall reports false when no batch has this number.
	SetRecall(ctx context.Context, batchNumber, reason string) (bool, error)
}

// ListCache holds serialised search pages.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
	Flush(ctx context.Context) error
}
