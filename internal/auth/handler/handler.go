package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-trace-service/internal/auth"
	"github.com/fekuna/omnipos-trace-service/internal/auth/dto"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	uc     auth.UseCase
	logger logger.ZapLogger
}

func NewAuthHandler(uc auth.UseCase, log logger.ZapLogger) *AuthHandler {
	return &AuthHandler{uc: uc, logger: log}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "hint": err.Error()})
		return
	}

	res, err := h.uc.Login(c.Request.Context(), &dto.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, res)
}

// Me echoes the claims of the calling user.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     claims.UserID,
		"name":   claims.Name,
		"email":  claims.Email,
		"role":   claims.Role,
		"portal": claims.Role.Label(),
	})
}
