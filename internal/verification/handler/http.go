package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
	"github.com/fekuna/omnipos-trace-service/internal/verification"
	"github.com/fekuna/omnipos-trace-service/internal/verification/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VerificationHandler struct {
	uc     verification.UseCase
	logger logger.ZapLogger
	now    func() time.Time
}

func NewVerificationHandler(uc verification.UseCase, log logger.ZapLogger) *VerificationHandler {
	return &VerificationHandler{
		uc:     uc,
		logger: log,
		now:    time.Now,
	}
}

// Verify handles GET /verify/:code.
func (h *VerificationHandler) Verify(c *gin.Context) {
	res, err := h.uc.Verify(c.Request.Context(), c.Param("code"), h.now())
	if err != nil {
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("verification failed", zap.String("code", c.Param("code")), zap.Error(err))
		}
		c.JSON(status, body)
		return
	}

	if res.Outcome != nil {
		c.JSON(http.StatusNotFound, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	var formatErr *tracecode.FormatError
	switch {
	case errors.As(err, &formatErr):
		return http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid code format", Hint: formatErr.Hint()}
	case errors.Is(err, verification.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, dto.ErrorResponse{
			Error: "Verification is temporarily unavailable",
			Hint:  "Please try again in a moment.",
		}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"}
	}
}
