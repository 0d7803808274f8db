package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-trace-service/internal/cache"
	"github.com/fekuna/omnipos-trace-service/internal/cart"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const SessionHeader = "X-Cart-Session"

type CartHandler struct {
	uc     cart.UseCase
	logger logger.ZapLogger
}

func NewCartHandler(uc cart.UseCase, log logger.ZapLogger) *CartHandler {
	return &CartHandler{uc: uc, logger: log}
}

// Session resolves the cart session from the request header, issuing a new id
// when none was sent. The id is echoed on every response.
func (h *CartHandler) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			sessionID = uuid.New().String()
		} else if _, err := uuid.Parse(sessionID); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid cart session"})
			return
		}
		c.Set(SessionHeader, sessionID)
		c.Header(SessionHeader, sessionID)
		c.Next()
	}
}

func (h *CartHandler) Get(c *gin.Context) {
	view, err := h.uc.Get(c.Request.Context(), c.GetString(SessionHeader))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "hint": err.Error()})
		return
	}

	view, err := h.uc.AddItem(c.Request.Context(), c.GetString(SessionHeader), req.ProductID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "hint": err.Error()})
		return
	}

	view, err := h.uc.UpdateQuantity(c.Request.Context(), c.GetString(SessionHeader), c.Param("product_id"), *req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	view, err := h.uc.RemoveItem(c.Request.Context(), c.GetString(SessionHeader), c.Param("product_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.uc.Clear(c.Request.Context(), c.GetString(SessionHeader)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrProductNotFound), errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cache.ErrLockTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("cart operation failed", zap.String("session", c.GetString(SessionHeader)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
