package catalog

import (
	"context"

	"github.com/fekuna/omnipos-trace-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/fekuna/omnipos-trace-service/internal/search"
)

type UseCase interface {
	SearchBatches(ctx context.Context, filters *dto.BatchFilters) (*dto.BatchPage, error)
	Reindex(ctx context.Context) (int, error)
	RecallBatch(ctx context.Context, input *dto.RecallInput) (*model.BatchSummary, error)
	RefreshBatch(ctx context.Context, batchNumber string) error
}

// Searcher is the part of the search client the catalog uses.
type Searcher interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
	BulkIndex(ctx context.Context, index string, docs []search.BulkDoc) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
	Delete(ctx context.Context, index, id string) error
}

// CacheInvalidator drops cached verification snapshots of a batch.
type CacheInvalidator interface {
	InvalidateBatch(ctx context.Context, batchCode string) error
}
