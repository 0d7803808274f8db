package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/auth"
	"github.com/fekuna/omnipos-trace-service/internal/custody"
	"github.com/fekuna/omnipos-trace-service/internal/custody/dto"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustodyHandler struct {
	uc     custody.UseCase
	logger logger.ZapLogger
}

func NewCustodyHandler(uc custody.UseCase, log logger.ZapLogger) *CustodyHandler {
	return &CustodyHandler{uc: uc, logger: log}
}

type recordEventRequest struct {
	EventID    string     `json:"event_id"`
	Code       string     `json:"code" binding:"required"`
	Action     string     `json:"action" binding:"required"`
	Location   string     `json:"location"`
	OccurredAt *time.Time `json:"occurred_at"`
	Status     string     `json:"status"`
	RetailerID string     `json:"retailer_id"`
}

// RecordEvent queues a custody event on the broker, or stores it directly
// when no broker is configured. The actor is always the calling user.
func (h *CustodyHandler) RecordEvent(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req recordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "hint": err.Error()})
		return
	}

	input := &dto.RecordEventInput{
		EventID:    req.EventID,
		Code:       req.Code,
		Action:     req.Action,
		ActorName:  claims.Name,
		Location:   req.Location,
		Status:     req.Status,
		RetailerID: req.RetailerID,
	}
	if req.OccurredAt != nil {
		input.OccurredAt = *req.OccurredAt
	}

	msg, err := h.uc.Submit(c.Request.Context(), input)
	if err == nil {
		c.JSON(http.StatusAccepted, gin.H{"event_id": msg.EventID, "code": msg.Code, "queued": true})
		return
	}
	if !errors.Is(err, custody.ErrNoPublisher) {
		h.fail(c, err)
		return
	}

	res, err := h.uc.RecordEvent(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusCreated
	if !res.Applied {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"event_id": res.Event.EventID,
		"code":     req.Code,
		"applied":  res.Applied,
	})
}

func (h *CustodyHandler) fail(c *gin.Context, err error) {
	var formatErr *tracecode.FormatError
	switch {
	case errors.As(err, &formatErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code format", "hint": formatErr.Hint()})
	case errors.Is(err, custody.ErrInvalidEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, custody.ErrSubjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, custody.ErrOutOfOrder):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, custody.ErrLockTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("failed to record custody event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
