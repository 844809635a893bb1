package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/remitchain-core/internal/domain/receipt"
	"github.com/remitchain-core/internal/platform/persistence"
)

// ReceiptRepository implements the receipt.Repository interface for PostgreSQL
type ReceiptRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewReceiptRepository creates a new PostgreSQL receipt repository
func NewReceiptRepository(logger *slog.Logger, db *persistence.PostgresDB) receipt.Repository {
	return &ReceiptRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction. Receipt and fraud flag
// writes share the intent confirmation transaction so a confirmed intent
// always has its receipt.
func (r *ReceiptRepository) WithTx(tx pgx.Tx) receipt.Repository {
	return &ReceiptRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new receipt. The unique index on intent_id enforces the
// one-receipt-per-intent invariant at the storage layer.
func (r *ReceiptRepository) Create(ctx context.Context, rec *receipt.Receipt) error {
	query := `
		INSERT INTO remit_receipts (id, intent_id, sender_id, receiver_address, token_identifier,
			amount_principal, amount_fee, corridor, settlement_timestamp, fx_rate_at_settlement,
			local_amount_estimate, share_token, share_token_expires_at, raw_settlement_event, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.IntentID,
		rec.SenderID,
		rec.ReceiverAddress,
		rec.TokenIdentifier,
		rec.AmountPrincipal,
		rec.AmountFee,
		rec.Corridor,
		rec.SettlementTimestamp,
		rec.FxRateAtSettlement,
		rec.LocalAmountEstimate,
		rec.ShareToken,
		rec.ShareTokenExpiresAt,
		rec.RawSettlementEvent,
		rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create receipt", "intent_id", rec.IntentID.String(), "error", err)
		return fmt.Errorf("failed to create receipt: %w", err)
	}

	return nil
}

// GetByID retrieves a receipt by its ID
func (r *ReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*receipt.Receipt, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByIntentID retrieves the receipt of a confirmed intent
func (r *ReceiptRepository) GetByIntentID(ctx context.Context, intentID uuid.UUID) (*receipt.Receipt, error) {
	return r.getOne(ctx, "intent_id = $1", intentID)
}

func (r *ReceiptRepository) getOne(ctx context.Context, predicate string, arg any) (*receipt.Receipt, error) {
	query := fmt.Sprintf(`
		SELECT id, intent_id, sender_id, receiver_address, token_identifier,
			amount_principal, amount_fee, corridor, settlement_timestamp, fx_rate_at_settlement,
			local_amount_estimate, share_token, share_token_expires_at, raw_settlement_event, created_at
		FROM remit_receipts
		WHERE %s
	`, predicate)

	var rec receipt.Receipt
	err := r.querier.QueryRow(ctx, query, arg).Scan(
		&rec.ID,
		&rec.IntentID,
		&rec.SenderID,
		&rec.ReceiverAddress,
		&rec.TokenIdentifier,
		&rec.AmountPrincipal,
		&rec.AmountFee,
		&rec.Corridor,
		&rec.SettlementTimestamp,
		&rec.FxRateAtSettlement,
		&rec.LocalAmountEstimate,
		&rec.ShareToken,
		&rec.ShareTokenExpiresAt,
		&rec.RawSettlementEvent,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, receipt.ErrReceiptNotFound{}
		}
		r.logger.Error("Failed to get receipt", "error", err)
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	return &rec, nil
}

// CreateFlags stores the fraud flags raised against a receipt
func (r *ReceiptRepository) CreateFlags(ctx context.Context, flags []receipt.FraudFlag) error {
	query := `
		INSERT INTO fraud_flags (receipt_id, rule_name, severity, score, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, flag := range flags {
		_, err := r.querier.Exec(ctx, query,
			flag.ReceiptID,
			flag.RuleName,
			flag.Severity,
			flag.Score,
			flag.Note,
			flag.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create fraud flag",
				"receipt_id", flag.ReceiptID.String(),
				"rule", flag.RuleName,
				"error", err,
			)
			return fmt.Errorf("failed to create fraud flag: %w", err)
		}
	}

	return nil
}

// GetFlags retrieves the fraud flags attached to a receipt
func (r *ReceiptRepository) GetFlags(ctx context.Context, receiptID uuid.UUID) ([]receipt.FraudFlag, error) {
	query := `
		SELECT id, receipt_id, rule_name, severity, score, note, created_at
		FROM fraud_flags
		WHERE receipt_id = $1
		ORDER BY id ASC
	`

	rows, err := r.querier.Query(ctx, query, receiptID)
	if err != nil {
		r.logger.Error("Failed to get fraud flags", "receipt_id", receiptID.String(), "error", err)
		return nil, fmt.Errorf("failed to get fraud flags: %w", err)
	}
	defer rows.Close()

	var flags []receipt.FraudFlag
	for rows.Next() {
		var flag receipt.FraudFlag
		err := rows.Scan(
			&flag.ID,
			&flag.ReceiptID,
			&flag.RuleName,
			&flag.Severity,
			&flag.Score,
			&flag.Note,
			&flag.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan fraud flag", "error", err)
			return nil, fmt.Errorf("failed to scan fraud flag: %w", err)
		}
		flags = append(flags, flag)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over fraud flags", "error", err)
		return nil, fmt.Errorf("error iterating over fraud flags: %w", err)
	}

	return flags, nil
}
