package server

import (
	"context"
	"net/http"

	authH "github.com/fekuna/omnipos-trace-service/internal/auth/handler"
	cartH "github.com/fekuna/omnipos-trace-service/internal/cart/handler"
	catalogH "github.com/fekuna/omnipos-trace-service/internal/catalog/handler"
	custodyH "github.com/fekuna/omnipos-trace-service/internal/custody/handler"
	verificationH "github.com/fekuna/omnipos-trace-service/internal/verification/handler"

	"github.com/fekuna/omnipos-trace-service/internal/auth"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/middleware"
	"github.com/fekuna/omnipos-trace-service/internal/role"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Verification *verificationH.VerificationHandler
	Custody      *custodyH.CustodyHandler
	Catalog      *catalogH.CatalogHandler
	Auth         *authH.AuthHandler
	Cart         *cartH.CartHandler

	// Ready backs /health/ready. Nil means always ready.
	Ready func(ctx context.Context) error
}

func NewRouter(h *Handlers, tokens *auth.TokenIssuer, log logger.ZapLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(r, h, tokens)
	return r
}

func registerRoutes(r *gin.Engine, h *Handlers, tokens *auth.TokenIssuer) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		if h.Ready != nil {
			if err := h.Ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/verify/:code", h.Verification.Verify)

	requireAuth := middleware.JWTAuth(tokens)
	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", h.Auth.Login)
		api.GET("/auth/me", requireAuth, h.Auth.Me)

		api.GET("/batches", h.Catalog.SearchBatches)

		api.POST("/custody-events", requireAuth,
			middleware.RequireRoles(role.Manufacturer, role.Retailer, role.Admin),
			h.Custody.RecordEvent)

		admin := api.Group("/admin", requireAuth, middleware.RequireRoles(role.Admin))
		{
			admin.POST("/batches/:batch/recall", h.Catalog.RecallBatch)
		}

		cart := api.Group("/cart", h.Cart.Session())
		{
			cart.GET("", h.Cart.Get)
			cart.DELETE("", h.Cart.Clear)
			cart.POST("/items", h.Cart.AddItem)
			cart.PUT("/items/:product_id", h.Cart.UpdateItem)
			cart.DELETE("/items/:product_id", h.Cart.RemoveItem)
		}
	}
}
