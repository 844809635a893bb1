package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/remitchain-core/internal/api_gateway/middleware"
	"github.com/remitchain-core/internal/api_gateway/service"
	"github.com/remitchain-core/internal/domain/cashout"
	"github.com/remitchain-core/internal/domain/shared"
)

// CashoutHandler handles HTTP requests for local payout operations
type CashoutHandler struct {
	cashoutService service.CashoutService
	logger         *slog.Logger
}

// NewCashoutHandler creates a new cash-out handler
func NewCashoutHandler(logger *slog.Logger, cashoutService service.CashoutService) *CashoutHandler {
	return &CashoutHandler{
		cashoutService: cashoutService,
		logger:         logger,
	}
}

// Initiate queues the local payout leg for a confirmed remittance
func (h *CashoutHandler) Initiate(c *gin.Context) {
	var req InitiateCashoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	intentID, err := uuid.Parse(req.IntentID)
	if err != nil {
		RespondBadRequest(c, "Invalid intent ID")
		return
	}

	senderID := middleware.GetSenderID(c)
	co, err := h.cashoutService.Initiate(
		c.Request.Context(),
		senderID,
		intentID,
		shared.CashoutMethod(req.Method),
		req.PayoutTarget,
		middleware.GetCorrelationID(c),
	)
	if err != nil {
		h.logger.Error("Failed to initiate cashout", "intent_id", intentID, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondAccepted(c, mapCashoutToResponse(co))
}

// Status returns the payout trail for a cash-out reference
func (h *CashoutHandler) Status(c *gin.Context) {
	reference := c.Param("reference")

	co, in, err := h.cashoutService.StatusByReference(c.Request.Context(), reference)
	if err != nil {
		h.logger.Error("Failed to get cashout status", "reference", reference, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondOK(c, CashoutStatusResponse{
		Cashout:    mapCashoutToResponse(co),
		Remittance: mapIntentToResponse(in),
	})
}

// mapCashoutToResponse maps a cash-out to its response DTO
func mapCashoutToResponse(co *cashout.Cashout) CashoutResponse {
	events := make([]CashoutEventResponse, len(co.Events))
	for i, e := range co.Events {
		events[i] = CashoutEventResponse{
			Status:    string(e.Status),
			Timestamp: e.Timestamp.Format(time.RFC3339),
			Note:      e.Note,
		}
	}

	return CashoutResponse{
		ID:           co.ID.String(),
		IntentID:     co.IntentID.String(),
		Reference:    co.Reference,
		Method:       string(co.Method),
		PayoutTarget: co.PayoutTarget,
		Status:       string(co.Status),
		Events:       events,
		CreatedAt:    co.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    co.UpdatedAt.Format(time.RFC3339),
	}
}
