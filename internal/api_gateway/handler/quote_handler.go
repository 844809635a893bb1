package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/remitchain-core/internal/api_gateway/service"
	"github.com/remitchain-core/internal/quote"
)

// QuoteHandler handles HTTP requests for pricing operations
type QuoteHandler struct {
	quoteService service.QuoteService
	logger       *slog.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(logger *slog.Logger, quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

// Create prices a remittance for the requested corridor and amount
func (h *QuoteHandler) Create(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.quoteService.CreateQuote(c.Request.Context(), req.Corridor, req.Amount, req.UseLiveRate)
	if err != nil {
		h.logger.Error("Failed to create quote", "corridor", req.Corridor, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondOK(c, mapQuoteToResponse(result))
}

// Rates returns the indicative rate for a corridor without locking a quote
func (h *QuoteHandler) Rates(c *gin.Context) {
	corridor := c.Query("corridor")

	rate, err := h.quoteService.CurrentRate(c.Request.Context(), corridor)
	if err != nil {
		h.logger.Error("Failed to fetch rate", "corridor", corridor, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondOK(c, RateResponse{
		Corridor: rate.Corridor,
		FxRate:   rate.FxRate.String(),
		Source:   string(rate.Source),
		QuotedAt: rate.QuotedAt.Format(time.RFC3339),
	})
}

// mapQuoteToResponse maps a priced quote to its response DTO
func mapQuoteToResponse(result *quote.Result) QuoteResponse {
	return QuoteResponse{
		QuoteID:       result.QuoteID.String(),
		Corridor:      result.Corridor,
		Principal:     result.Principal.String(),
		Fee:           result.Fee.String(),
		Total:         result.Total.String(),
		FxRate:        result.FxRate.String(),
		LocalEstimate: result.LocalEstimate.String(),
		RateSource:    string(result.RateSource),
		ExpiresAt:     result.ExpiresAt.Format(time.RFC3339),
	}
}
