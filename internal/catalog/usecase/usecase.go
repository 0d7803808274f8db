package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-trace-service/internal/catalog"
	"github.com/fekuna/omnipos-trace-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/fekuna/omnipos-trace-service/internal/search"
	"go.uber.org/zap"
)

const (
	SourceSearch   = "search"
	SourceDatabase = "database"
)

const batchMapping = `{
	"mappings": {
		"properties": {
			"batch_number":      { "type": "keyword" },
			"product_name":      { "type": "text" },
			"category":          { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"manufacturer_name": { "type": "text" },
			"status":            { "type": "keyword" },
			"is_recalled":       { "type": "boolean" },
			"expiry_date":       { "type": "date" }
		}
	}
}`

type catalogUseCase struct {
	repo        catalog.Repository
	searcher    catalog.Searcher
	index       string
	lists       catalog.ListCache
	invalidator catalog.CacheInvalidator
	logger      logger.ZapLogger
}

// NewCatalogUseCase builds the catalog. searcher, lists and invalidator may
// be nil; without a searcher every query goes to the database.
func NewCatalogUseCase(repo catalog.Repository, searcher catalog.Searcher, index string, lists catalog.ListCache, invalidator catalog.CacheInvalidator, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:        repo,
		searcher:    searcher,
		index:       index,
		lists:       lists,
		invalidator: invalidator,
		logger:      log,
	}
}

func (uc *catalogUseCase) SearchBatches(ctx context.Context, filters *dto.BatchFilters) (*dto.BatchPage, error) {
	f := *filters
	f.Query = strings.TrimSpace(f.Query)
	f.Normalize()

	cacheKey := listCacheKey(&f)
	if uc.lists != nil && cacheKey != "" {
		if data, ok := uc.lists.Get(ctx, cacheKey); ok {
			var page dto.BatchPage
			if err := json.Unmarshal(data, &page); err == nil {
				return &page, nil
			}
		}
	}

	if f.Query != "" && uc.searcher != nil {
		page, err := uc.searchIndex(ctx, &f)
		if err == nil {
			return page, nil
		}
		uc.logger.Error("batch search failed, falling back to database", zap.Error(err))
	}

	items, total, err := uc.repo.FindAll(ctx, &f)
	if err != nil {
		return nil, err
	}
	page := &dto.BatchPage{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize, Source: SourceDatabase}

	if uc.lists != nil && cacheKey != "" {
		if data, err := json.Marshal(page); err == nil {
			uc.lists.Set(ctx, cacheKey, data)
		}
	}
	return page, nil
}

func (uc *catalogUseCase) searchIndex(ctx context.Context, f *dto.BatchFilters) (*dto.BatchPage, error) {
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{"term": map[string]interface{}{"batch_number": map[string]interface{}{"value": f.Query, "boost": 5}}},
					{"multi_match": map[string]interface{}{
						"query":     f.Query,
						"fields":    []string{"product_name^3", "manufacturer_name", "category"},
						"fuzziness": "AUTO",
					}},
				},
				"minimum_should_match": 1,
			},
		},
		"from": f.Offset(),
		"size": f.PageSize,
	}

	res, err := uc.searcher.Search(ctx, uc.index, q)
	if err != nil {
		return nil, err
	}

	items := make([]model.BatchSummary, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var s model.BatchSummary
		if err := json.Unmarshal(hit.Source, &s); err != nil {
			uc.logger.Warn("skipping unreadable search hit", zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		items = append(items, s)
	}
	return &dto.BatchPage{Items: items, Total: res.Hits.Total.Value, Page: f.Page, PageSize: f.PageSize, Source: SourceSearch}, nil
}

// Reindex pushes every batch summary to the search index.
func (uc *catalogUseCase) Reindex(ctx context.Context) (int, error) {
	if uc.searcher == nil {
		return 0, nil
	}
	if err := uc.searcher.CreateIndex(ctx, uc.index, batchMapping); err != nil {
		return 0, fmt.Errorf("create index: %w", err)
	}

	items, _, err := uc.repo.FindAll(ctx, &dto.BatchFilters{})
	if err != nil {
		return 0, err
	}
	docs := make([]search.BulkDoc, 0, len(items))
	for _, s := range items {
		docs = append(docs, search.BulkDoc{ID: s.BatchNumber, Body: s})
	}
	if err := uc.searcher.BulkIndex(ctx, uc.index, docs); err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}

	uc.logger.Info("batch index rebuilt", zap.String("index", uc.index), zap.Int("documents", len(docs)))
	return len(docs), nil
}

// RecallBatch flags the batch, then refreshes every derived copy of it.
// Failures to refresh caches or the index are logged, not returned.
func (uc *catalogUseCase) RecallBatch(ctx context.Context, input *dto.RecallInput) (*model.BatchSummary, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, catalog.ErrReasonRequired
	}

	ok, err := uc.repo.SetRecall(ctx, input.BatchNumber, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrBatchNotFound, input.BatchNumber)
	}

	if uc.invalidator != nil {
		if err := uc.invalidator.InvalidateBatch(ctx, input.BatchNumber); err != nil {
			uc.logger.Warn("failed to invalidate verification cache", zap.String("batch", input.BatchNumber), zap.Error(err))
		}
	}
	summary, err := uc.refresh(ctx, input.BatchNumber)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("batch recalled", zap.String("batch", input.BatchNumber), zap.String("reason", reason))
	return summary, nil
}

// RefreshBatch re-reads a batch after a write elsewhere changed it and
// updates the list cache and the search index. A batch that no longer exists
// is dropped from the index.
func (uc *catalogUseCase) RefreshBatch(ctx context.Context, batchNumber string) error {
	_, err := uc.refresh(ctx, batchNumber)
	if errors.Is(err, catalog.ErrBatchNotFound) {
		if uc.searcher != nil {
			return uc.searcher.Delete(ctx, uc.index, batchNumber)
		}
		return nil
	}
	return err
}

func (uc *catalogUseCase) refresh(ctx context.Context, batchNumber string) (*model.BatchSummary, error) {
	summary, err := uc.repo.FindByNumber(ctx, batchNumber)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, fmt.Errorf("%w: %s", catalog.ErrBatchNotFound, batchNumber)
	}

	if uc.lists != nil {
		if err := uc.lists.Flush(ctx); err != nil {
			uc.logger.Warn("failed to flush batch list cache", zap.Error(err))
		}
	}
	if uc.searcher != nil {
		if err := uc.searcher.Index(ctx, uc.index, summary.BatchNumber, summary); err != nil {
			uc.logger.Error("failed to index batch", zap.String("batch", summary.BatchNumber), zap.Error(err))
		}
	}
	return summary, nil
}

func listCacheKey(f *dto.BatchFilters) string {
	data, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", md5.Sum(data))
}
