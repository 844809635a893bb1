package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/remitchain-core/internal/domain/audit"
	"github.com/remitchain-core/internal/domain/intent"
	"github.com/remitchain-core/internal/domain/receipt"
	"github.com/remitchain-core/internal/domain/shared"
	"github.com/remitchain-core/internal/fraud"
	"github.com/remitchain-core/internal/quote"
	"github.com/remitchain-core/internal/verifier"
)

// fraudHistoryDepth bounds how much sender history the fraud engine sees
const fraudHistoryDepth = 50

// RemitServiceImpl implements the RemitService interface
type RemitServiceImpl struct {
	intents  intent.Repository
	receipts receipt.Repository
	quotes   *quote.Engine
	verifier verifier.Verifier
	fraud    *fraud.Engine
	recorder *audit.Recorder
	logger   *slog.Logger

	// confirmLocks serializes concurrent confirmations of the same intent
	// in-process; the database status CAS is the cross-process guard.
	confirmLocks keyedMutex
}

// NewRemitService creates a new remittance lifecycle service
func NewRemitService(
	logger *slog.Logger,
	intents intent.Repository,
	receipts receipt.Repository,
	quotes *quote.Engine,
	settlementVerifier verifier.Verifier,
	fraudEngine *fraud.Engine,
	recorder *audit.Recorder,
) RemitService {
	return &RemitServiceImpl{
		intents:  intents,
		receipts: receipts,
		quotes:   quotes,
		verifier: settlementVerifier,
		fraud:    fraudEngine,
		recorder: recorder,
		logger:   logger,
	}
}

// CreateIntent prices the remittance and locks the quoted numbers into a new
// CREATED intent
func (s *RemitServiceImpl) CreateIntent(ctx context.Context, senderID string, receiverKind shared.ReceiverKind, receiverIdentifier, corridor, amount string) (*intent.Intent, *quote.Result, error) {
	receiver, err := intent.NewReceiver(receiverKind, receiverIdentifier)
	if err != nil {
		return nil, nil, shared.NewValidationError(err.Error())
	}

	principal, err := quote.ParseAmount(amount)
	if err != nil {
		return nil, nil, err
	}

	// Intent pricing never takes the live path: creation must not fail on a
	// provider outage, and the fee depends only on basis points.
	quoted, err := s.quotes.QuoteAtConfigRate(corridor, principal, time.Now())
	if err != nil {
		return nil, nil, err
	}

	in, err := intent.NewIntent(senderID, receiver, quoted.Corridor, principal, quoted.Fee)
	if err != nil {
		return nil, nil, shared.NewValidationError(err.Error())
	}

	if err := s.intents.Create(ctx, in); err != nil {
		s.logger.Error("Failed to create intent", "sender_id", senderID, "error", err)
		return nil, nil, fmt.Errorf("failed to create intent: %w", err)
	}

	s.recorder.Record(ctx, senderID, audit.ActionIntentCreated, map[string]any{
		"intent_id":  in.ID.String(),
		"corridor":   in.Corridor,
		"principal":  in.AmountPrincipal.String(),
		"fee":        in.AmountFee.String(),
		"expires_at": in.ExpiresAt,
	})

	s.logger.Info("Intent created",
		"intent_id", in.ID,
		"sender_id", senderID,
		"corridor", in.Corridor,
	)
	return in, quoted, nil
}

// Confirm verifies the settlement reference and finalizes the intent. The
// status transition is a compare-and-swap, so exactly one caller creates the
// receipt; everyone else observes it.
func (s *RemitServiceImpl) Confirm(ctx context.Context, senderID string, intentID uuid.UUID, settlementReference, declaredSenderAddress string) (*receipt.Receipt, []receipt.FraudFlag, error) {
	unlock := s.confirmLocks.lock(intentID)
	defer unlock()

	in, err := s.getOwnedIntent(ctx, senderID, intentID)
	if err != nil {
		return nil, nil, err
	}

	switch in.Status {
	case shared.IntentStatusConfirmed:
		return s.existingReceipt(ctx, intentID)
	case shared.IntentStatusFailed:
		return nil, nil, shared.NewConflictError("intent already failed; create a new intent")
	}

	if !verifier.ValidReference(settlementReference) {
		return nil, nil, shared.NewValidationError("settlement reference is not a well-formed transaction hash")
	}

	now := time.Now()
	if in.IsExpired(now) {
		s.failIntent(ctx, in, "rate lock expired before confirmation")
		return nil, nil, shared.NewExpiredError("rate lock expired; create a new intent")
	}

	declaredSender := declaredSenderAddress
	if declaredSender == "" {
		declaredSender = senderID
	}

	event, err := s.verifier.Verify(ctx, settlementReference, declaredSender)
	if err != nil {
		var ve *verifier.VerificationError
		if errors.As(err, &ve) && !ve.Retryable() {
			s.failIntent(ctx, in, string(ve.Kind))
			return nil, nil, shared.NewVerificationError("settlement could not be verified", false, err)
		}
		s.logger.Warn("Settlement layer unreachable, confirmation can be retried",
			"intent_id", intentID,
			"error", err,
		)
		return nil, nil, shared.NewVerificationError("settlement layer unreachable, retry confirmation", true, err)
	}

	// History is captured before the transition so the intent being
	// confirmed still reads as non-confirmed: the frequency rule counts it,
	// the confirmed-history rules do not.
	history, histErr := s.intents.HistoryForSender(ctx, senderID, fraudHistoryDepth)
	if histErr != nil {
		s.logger.Error("Failed to load sender history for fraud scoring",
			"sender_id", senderID,
			"error", histErr,
		)
		history = nil
	}

	applied, err := s.intents.TransitionStatus(ctx, intentID, shared.IntentStatusCreated, shared.IntentStatusConfirmed, settlementReference)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to confirm intent: %w", err)
	}
	if !applied {
		// A concurrent confirmation won the CAS; surface its receipt.
		return s.existingReceipt(ctx, intentID)
	}

	rec, err := s.buildReceipt(ctx, in, event, now)
	if err != nil {
		return nil, nil, err
	}

	flags := s.scoreAndFlag(ctx, in, rec, history, now)

	s.recorder.Record(ctx, senderID, audit.ActionRemitConfirmed, map[string]any{
		"intent_id":            intentID.String(),
		"receipt_id":           rec.ID.String(),
		"settlement_reference": settlementReference,
		"flag_count":           len(flags),
	})

	s.logger.Info("Remittance confirmed",
		"intent_id", intentID,
		"receipt_id", rec.ID,
		"flag_count", len(flags),
	)
	return rec, flags, nil
}

// GetRemittance returns the intent and its receipt when confirmed
func (s *RemitServiceImpl) GetRemittance(ctx context.Context, senderID string, intentID uuid.UUID) (*intent.Intent, *receipt.Receipt, error) {
	in, err := s.getOwnedIntent(ctx, senderID, intentID)
	if err != nil {
		return nil, nil, err
	}

	if in.Status != shared.IntentStatusConfirmed {
		return in, nil, nil
	}

	rec, err := s.receipts.GetByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, receipt.ErrReceiptNotFound{}) {
			return in, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to load receipt: %w", err)
	}
	return in, rec, nil
}

// GetSharedReceipt grants read access on a valid, unexpired share token
func (s *RemitServiceImpl) GetSharedReceipt(ctx context.Context, receiptID uuid.UUID, shareToken string) (*receipt.Receipt, error) {
	rec, err := s.receipts.GetByID(ctx, receiptID)
	if err != nil {
		if errors.Is(err, receipt.ErrReceiptNotFound{}) {
			return nil, shared.NewNotFoundError("receipt not found")
		}
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}

	if !rec.ShareTokenValid(shareToken, time.Now()) {
		return nil, shared.NewForbiddenError("share token invalid or expired")
	}
	return rec, nil
}

func (s *RemitServiceImpl) getOwnedIntent(ctx context.Context, senderID string, intentID uuid.UUID) (*intent.Intent, error) {
	in, err := s.intents.GetByID(ctx, intentID)
	if err != nil {
		if errors.Is(err, intent.ErrIntentNotFound{}) {
			return nil, shared.NewNotFoundError("intent not found")
		}
		return nil, fmt.Errorf("failed to load intent: %w", err)
	}
	if in.SenderID != senderID {
		return nil, shared.NewForbiddenError("intent belongs to another sender")
	}
	return in, nil
}

// existingReceipt resolves an idempotent re-confirmation to the already
// stored receipt and its flags
func (s *RemitServiceImpl) existingReceipt(ctx context.Context, intentID uuid.UUID) (*receipt.Receipt, []receipt.FraudFlag, error) {
	rec, err := s.receipts.GetByIntentID(ctx, intentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load existing receipt: %w", err)
	}
	flags, err := s.receipts.GetFlags(ctx, rec.ID)
	if err != nil {
		s.logger.Error("Failed to load fraud flags", "receipt_id", rec.ID, "error", err)
		flags = nil
	}
	return rec, flags, nil
}

// failIntent moves a CREATED intent to FAILED, tolerating a lost race
func (s *RemitServiceImpl) failIntent(ctx context.Context, in *intent.Intent, reason string) {
	applied, err := s.intents.TransitionStatus(ctx, in.ID, shared.IntentStatusCreated, shared.IntentStatusFailed, "")
	if err != nil {
		s.logger.Error("Failed to fail intent", "intent_id", in.ID, "error", err)
		return
	}
	if applied {
		s.recorder.Record(ctx, in.SenderID, audit.ActionRemitFailed, map[string]any{
			"intent_id": in.ID.String(),
			"reason":    reason,
		})
	}
}

// buildReceipt freezes the settlement evidence and current pricing into the
// immutable receipt. Settlement always prices at the configured base+spread
// in effect right now, not the quoted rate and not a live fetch.
func (s *RemitServiceImpl) buildReceipt(ctx context.Context, in *intent.Intent, event *verifier.SettlementEvent, now time.Time) (*receipt.Receipt, error) {
	quoted, err := s.quotes.QuoteAtConfigRate(in.Corridor, in.AmountPrincipal, now)
	if err != nil {
		return nil, fmt.Errorf("failed to price receipt: %w", err)
	}

	token, err := receipt.NewShareToken()
	if err != nil {
		return nil, err
	}

	receiverAddress := in.Receiver.Identifier
	if event.Receiver != "" {
		receiverAddress = event.Receiver
	}

	settledAt := event.ConfirmedAt
	if settledAt.IsZero() {
		settledAt = now
	}

	rec := &receipt.Receipt{
		ID:                  uuid.New(),
		IntentID:            in.ID,
		SenderID:            in.SenderID,
		ReceiverAddress:     receiverAddress,
		TokenIdentifier:     event.TokenAddress,
		AmountPrincipal:     in.AmountPrincipal,
		AmountFee:           in.AmountFee,
		Corridor:            in.Corridor,
		SettlementTimestamp: settledAt,
		FxRateAtSettlement:  quoted.FxRate,
		LocalAmountEstimate: quoted.LocalEstimate,
		ShareToken:          token,
		ShareTokenExpiresAt: now.Add(shared.ShareTokenTTL),
		RawSettlementEvent:  event.Raw,
		CreatedAt:           now,
	}

	if err := s.receipts.Create(ctx, rec); err != nil {
		s.logger.Error("Failed to store receipt", "intent_id", in.ID, "error", err)
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}
	return rec, nil
}

// scoreAndFlag runs the fraud rules over the pre-transition history snapshot.
// Scoring is advisory; any failure here degrades to zero flags.
func (s *RemitServiceImpl) scoreAndFlag(ctx context.Context, in *intent.Intent, rec *receipt.Receipt, history []intent.HistoryEntry, now time.Time) []receipt.FraudFlag {
	flags := s.fraud.Score(in.SenderID, in.Receiver.Identifier, in.AmountPrincipal, in.Corridor, history, now)
	if len(flags) == 0 {
		return nil
	}

	for i := range flags {
		flags[i].ReceiptID = rec.ID
		flags[i].CreatedAt = now
	}
	if err := s.receipts.CreateFlags(ctx, flags); err != nil {
		s.logger.Error("Failed to store fraud flags", "receipt_id", rec.ID, "error", err)
	}
	return flags
}

// keyedMutex is a refcounted per-key mutex; entries are dropped once the last
// holder releases them
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(id uuid.UUID) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[uuid.UUID]*keyedLock)
	}
	entry, ok := k.locks[id]
	if !ok {
		entry = &keyedLock{}
		k.locks[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
