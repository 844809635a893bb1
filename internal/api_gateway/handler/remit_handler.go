package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/remitchain-core/internal/api_gateway/middleware"
	"github.com/remitchain-core/internal/api_gateway/service"
	"github.com/remitchain-core/internal/domain/intent"
	"github.com/remitchain-core/internal/domain/receipt"
	"github.com/remitchain-core/internal/domain/shared"
)

// RemitHandler handles HTTP requests for the remittance lifecycle
type RemitHandler struct {
	remitService service.RemitService
	logger       *slog.Logger
}

// NewRemitHandler creates a new remittance handler
func NewRemitHandler(logger *slog.Logger, remitService service.RemitService) *RemitHandler {
	return &RemitHandler{
		remitService: remitService,
		logger:       logger,
	}
}

// CreateIntent locks a quote into a new intent owned by the caller
func (h *RemitHandler) CreateIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	senderID := middleware.GetSenderID(c)
	in, quoted, err := h.remitService.CreateIntent(
		c.Request.Context(),
		senderID,
		shared.ReceiverKind(req.ReceiverKind),
		req.ReceiverIdentifier,
		req.Corridor,
		req.Amount,
	)
	if err != nil {
		h.logger.Error("Failed to create intent", "sender_id", senderID, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondCreated(c, CreateIntentResponse{
		Intent: mapIntentToResponse(in),
		Quote:  mapQuoteToResponse(quoted),
	})
}

// Confirm verifies the settlement reference and finalizes the intent
func (h *RemitHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
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
	rec, flags, err := h.remitService.Confirm(c.Request.Context(), senderID, intentID, req.SettlementReference, req.SenderAddress)
	if err != nil {
		h.logger.Error("Failed to confirm intent", "intent_id", intentID, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondOK(c, ConfirmResponse{
		Receipt: mapReceiptToResponse(rec, true),
		Flags:   mapFlagsToResponse(flags),
	})
}

// GetByID returns the caller's remittance, including the receipt once
// confirmed
func (h *RemitHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid intent ID")
		return
	}

	senderID := middleware.GetSenderID(c)
	in, rec, err := h.remitService.GetRemittance(c.Request.Context(), senderID, id)
	if err != nil {
		h.logger.Error("Failed to get remittance", "intent_id", idParam, "error", err)
		RespondDomainError(c, err)
		return
	}

	response := RemittanceResponse{Intent: mapIntentToResponse(in)}
	if rec != nil {
		mapped := mapReceiptToResponse(rec, true)
		response.Receipt = &mapped
	}
	RespondOK(c, response)
}

// GetSharedReceipt serves a receipt to an unauthenticated caller holding a
// share token. The token never appears in the response.
func (h *RemitHandler) GetSharedReceipt(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid receipt ID")
		return
	}

	token := c.Query("token")
	if token == "" {
		RespondForbidden(c, "Share token is required")
		return
	}

	rec, err := h.remitService.GetSharedReceipt(c.Request.Context(), id, token)
	if err != nil {
		h.logger.Warn("Rejected shared receipt access", "receipt_id", idParam, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondOK(c, mapReceiptToResponse(rec, false))
}

// mapIntentToResponse maps an intent to its response DTO
func mapIntentToResponse(in *intent.Intent) IntentResponse {
	return IntentResponse{
		ID:                  in.ID.String(),
		SenderID:            in.SenderID,
		ReceiverKind:        string(in.Receiver.Kind),
		ReceiverIdentifier:  in.Receiver.Identifier,
		Corridor:            in.Corridor,
		Principal:           in.AmountPrincipal.String(),
		Fee:                 in.AmountFee.String(),
		Status:              string(in.Status),
		SettlementReference: in.SettlementReference,
		ExpiresAt:           in.ExpiresAt.Format(time.RFC3339),
		CreatedAt:           in.CreatedAt.Format(time.RFC3339),
	}
}

// mapReceiptToResponse maps a receipt to its response DTO. includeToken must
// be false on the shared, unauthenticated path.
func mapReceiptToResponse(rec *receipt.Receipt, includeToken bool) ReceiptResponse {
	response := ReceiptResponse{
		ID:                  rec.ID.String(),
		IntentID:            rec.IntentID.String(),
		SenderID:            rec.SenderID,
		ReceiverAddress:     rec.ReceiverAddress,
		TokenIdentifier:     rec.TokenIdentifier,
		Principal:           rec.AmountPrincipal.String(),
		Fee:                 rec.AmountFee.String(),
		Corridor:            rec.Corridor,
		SettlementTimestamp: rec.SettlementTimestamp.Format(time.RFC3339),
		FxRateAtSettlement:  rec.FxRateAtSettlement.String(),
		LocalAmountEstimate: rec.LocalAmountEstimate.String(),
		CreatedAt:           rec.CreatedAt.Format(time.RFC3339),
	}
	if includeToken {
		response.ShareToken = rec.ShareToken
		response.ShareTokenExpiresAt = rec.ShareTokenExpiresAt.Format(time.RFC3339)
	}
	return response
}

func mapFlagsToResponse(flags []receipt.FraudFlag) []FraudFlagResponse {
	if len(flags) == 0 {
		return nil
	}
	mapped := make([]FraudFlagResponse, len(flags))
	for i, f := range flags {
		mapped[i] = FraudFlagResponse{
			RuleName: f.RuleName,
			Severity: string(f.Severity),
			Score:    f.Score,
			Note:     f.Note,
		}
	}
	return mapped
}
