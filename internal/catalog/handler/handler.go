package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-trace-service/internal/catalog"
	"github.com/fekuna/omnipos-trace-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{uc: uc, logger: log}
}

// SearchBatches handles GET /api/v1/batches?q=&page=&page_size=.
func (h *CatalogHandler) SearchBatches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(dto.DefaultPageSize)))

	res, err := h.uc.SearchBatches(c.Request.Context(), &dto.BatchFilters{
		Query:    c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.logger.Error("failed to search batches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

type recallRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RecallBatch handles POST /api/v1/admin/batches/:batch/recall.
func (h *CatalogHandler) RecallBatch(c *gin.Context) {
	var req recallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "hint": err.Error()})
		return
	}

	summary, err := h.uc.RecallBatch(c.Request.Context(), &dto.RecallInput{
		BatchNumber: c.Param("batch"),
		Reason:      req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrReasonRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, catalog.ErrBatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.logger.Error("failed to recall batch", zap.String("batch", c.Param("batch")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, summary)
}
