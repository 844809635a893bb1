package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/remitchain-core/internal/domain/cashout"
	"github.com/remitchain-core/internal/domain/intent"
	"github.com/remitchain-core/internal/domain/receipt"
	"github.com/remitchain-core/internal/domain/shared"
	"github.com/remitchain-core/internal/quote"
)

// RateInfo is the indicative rate for a corridor, without a locked quote
type RateInfo struct {
	Corridor string
	FxRate   decimal.Decimal
	Source   shared.RateSource
	QuotedAt time.Time
}

// QuoteService defines the interface for pricing operations
type QuoteService interface {
	// CreateQuote prices a remittance for the corridor and amount string.
	// useLiveRate requests the live provider chain for this quote on top of
	// the configured default. Returns a validation error for malformed
	// amounts or corridors, and a rate-unavailable error when the live path
	// exhausts providers and cache.
	CreateQuote(ctx context.Context, corridor, amount string, useLiveRate bool) (*quote.Result, error)

	// CurrentRate returns the configured exchange rate for a corridor
	CurrentRate(ctx context.Context, corridor string) (*RateInfo, error)
}

// RemitService defines the interface for the remittance lifecycle
type RemitService interface {
	// CreateIntent locks a fresh quote into a CREATED intent owned by the
	// sender. The intent expires after the rate-lock window.
	CreateIntent(ctx context.Context, senderID string, receiverKind shared.ReceiverKind, receiverIdentifier, corridor, amount string) (*intent.Intent, *quote.Result, error)

	// Confirm verifies the settlement reference and moves the intent to
	// ONCHAIN_CONFIRMED, producing its receipt and any advisory fraud flags.
	// declaredSenderAddress is the wallet the caller claims sent the
	// transfer; it feeds the sandbox verifier's synthesized event and falls
	// back to the sender id when empty. Idempotent: confirming an
	// already-confirmed intent returns the existing receipt.
	Confirm(ctx context.Context, senderID string, intentID uuid.UUID, settlementReference, declaredSenderAddress string) (*receipt.Receipt, []receipt.FraudFlag, error)

	// GetRemittance returns the sender's intent and, when confirmed, its
	// receipt. Returns a forbidden error when the caller is not the owner.
	GetRemittance(ctx context.Context, senderID string, intentID uuid.UUID) (*intent.Intent, *receipt.Receipt, error)

	// GetSharedReceipt returns a receipt to an unauthenticated caller
	// presenting a valid, unexpired share token
	GetSharedReceipt(ctx context.Context, receiptID uuid.UUID, shareToken string) (*receipt.Receipt, error)
}

// CashoutService defines the interface for local payout operations
type CashoutService interface {
	// Initiate queues the cash-out leg for a confirmed remittance and hands
	// it to the payout worker. Idempotent per intent: repeated calls return
	// the existing cash-out.
	Initiate(ctx context.Context, senderID string, intentID uuid.UUID, method shared.CashoutMethod, payoutTarget, correlationID string) (*cashout.Cashout, error)

	// StatusByReference returns the cash-out trail plus the remittance it
	// belongs to
	StatusByReference(ctx context.Context, reference string) (*cashout.Cashout, *intent.Intent, error)
}
