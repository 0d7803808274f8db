package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-trace-service/internal/catalog"
	"github.com/fekuna/omnipos-trace-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	catalog.UseCase

	filters   *dto.BatchFilters
	recall    *dto.RecallInput
	recallErr error
}

func (s *stubUseCase) SearchBatches(_ context.Context, f *dto.BatchFilters) (*dto.BatchPage, error) {
	s.filters = f
	return &dto.BatchPage{Items: []model.BatchSummary{}, Page: f.Page, PageSize: f.PageSize}, nil
}

func (s *stubUseCase) RecallBatch(_ context.Context, in *dto.RecallInput) (*model.BatchSummary, error) {
	s.recall = in
	if s.recallErr != nil {
		return nil, s.recallErr
	}
	return &model.BatchSummary{BatchNumber: in.BatchNumber, IsRecalled: true}, nil
}

func newRouter(uc catalog.UseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCatalogHandler(uc, logger.NewNop())
	r.GET("/api/v1/batches", h.SearchBatches)
	r.POST("/api/v1/admin/batches/:batch/recall", h.RecallBatch)
	return r
}

func TestSearchBatches(t *testing.T) {
	uc := &stubUseCase{}
	w := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/batches?q=honey&page=2&page_size=5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, &dto.BatchFilters{Query: "honey", Page: 2, PageSize: 5}, uc.filters)

	var page dto.BatchPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Page)
}

func TestRecallBatch(t *testing.T) {
	tests := []struct {
		name string
		err  error
		body string
		want int
	}{
		{name: "recalled", body: `{"reason":"Seal failure"}`, want: http.StatusOK},
		{name: "missing reason", body: `{}`, want: http.StatusBadRequest},
		{name: "blank reason", body: `{"reason":" "}`, err: catalog.ErrReasonRequired, want: http.StatusBadRequest},
		{name: "unknown batch", body: `{"reason":"x"}`, err: fmt.Errorf("%w: BATCH-19990101-0000", catalog.ErrBatchNotFound), want: http.StatusNotFound},
		{name: "store failure", body: `{"reason":"x"}`, err: fmt.Errorf("connection refused"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUseCase{recallErr: tt.err}
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/batches/BATCH-20260112-1234/recall", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			newRouter(uc).ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want == http.StatusOK {
				assert.Equal(t, "BATCH-20260112-1234", uc.recall.BatchNumber)
			}
		})
	}
}
