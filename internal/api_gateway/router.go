package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/remitchain-core/internal/api_gateway/handler"
	"github.com/remitchain-core/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application.
// Everything under /api/v1 requires a bearer token except the rates endpoint,
// the share-token receipt view, and the cash-out status lookup, which is
// capability-addressed by its unguessable reference.
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	jwtSecret string,
	quoteHandler *handler.QuoteHandler,
	remitHandler *handler.RemitHandler,
	cashoutHandler *handler.CashoutHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	authenticated := middleware.Auth(logger, jwtSecret)

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		v1.GET("/rates", quoteHandler.Rates)
		v1.GET("/receipts/:id", remitHandler.GetSharedReceipt)
		v1.GET("/cashout/:reference/status", cashoutHandler.Status)

		// Remittance lifecycle
		remit := v1.Group("/remit", authenticated)
		{
			remit.POST("/quote", quoteHandler.Create)
			remit.POST("/intent", remitHandler.CreateIntent)
			remit.POST("/confirm", remitHandler.Confirm)
			remit.GET("/:id", remitHandler.GetByID)
		}

		// Local payout leg
		cashouts := v1.Group("/cashout", authenticated)
		{
			cashouts.POST("/initiate", cashoutHandler.Initiate)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
