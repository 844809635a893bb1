// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the remittance lifecycle core.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/remitchain-core/internal/domain/intent"
	"github.com/remitchain-core/internal/domain/shared"
	"github.com/remitchain-core/internal/platform/persistence"
)

// IntentRepository implements the intent.Repository interface for PostgreSQL
type IntentRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewIntentRepository creates a new PostgreSQL intent repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewIntentRepository(logger *slog.Logger, db *persistence.PostgresDB) intent.Repository {
	return &IntentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls
func (r *IntentRepository) WithTx(tx pgx.Tx) intent.Repository {
	return &IntentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new intent in the database
func (r *IntentRepository) Create(ctx context.Context, in *intent.Intent) error {
	query := `
		INSERT INTO remit_intents (id, sender_id, receiver_kind, receiver_identifier, corridor,
			amount_principal, amount_fee, status, settlement_reference, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.querier.Exec(ctx, query,
		in.ID,
		in.SenderID,
		in.Receiver.Kind,
		in.Receiver.Identifier,
		in.Corridor,
		in.AmountPrincipal,
		in.AmountFee,
		in.Status,
		in.SettlementReference,
		in.ExpiresAt,
		in.CreatedAt,
		in.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create intent", "error", err)
		return fmt.Errorf("failed to create intent: %w", err)
	}

	return nil
}

// GetByID retrieves an intent by its ID
func (r *IntentRepository) GetByID(ctx context.Context, id uuid.UUID) (*intent.Intent, error) {
	query := `
		SELECT id, sender_id, receiver_kind, receiver_identifier, corridor,
			amount_principal, amount_fee, status, settlement_reference, expires_at, created_at, updated_at
		FROM remit_intents
		WHERE id = $1
	`

	var in intent.Intent
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&in.ID,
		&in.SenderID,
		&in.Receiver.Kind,
		&in.Receiver.Identifier,
		&in.Corridor,
		&in.AmountPrincipal,
		&in.AmountFee,
		&in.Status,
		&in.SettlementReference,
		&in.ExpiresAt,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, intent.ErrIntentNotFound{IntentID: id}
		}
		r.logger.Error("Failed to get intent", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get intent: %w", err)
	}

	return &in, nil
}

// TransitionStatus atomically moves the intent between statuses. The status
// predicate makes the update a compare-and-swap: when two confirmations race,
// exactly one sees RowsAffected() == 1.
func (r *IntentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to shared.IntentStatus, settlementReference string) (bool, error) {
	query := `
		UPDATE remit_intents
		SET status = $1,
			settlement_reference = CASE WHEN $2 <> '' THEN $2 ELSE settlement_reference END,
			updated_at = NOW()
		WHERE id = $3 AND status = $4
	`

	result, err := r.querier.Exec(ctx, query, to, settlementReference, id, from)
	if err != nil {
		r.logger.Error("Failed to transition intent status",
			"id", id.String(),
			"from", string(from),
			"to", string(to),
			"error", err,
		)
		return false, fmt.Errorf("failed to transition intent status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ExpireStale fails every CREATED intent whose expiry deadline has passed.
// The deadline is exclusive, matching intent.IsExpired.
func (r *IntentRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE remit_intents
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at <= $3
	`

	result, err := r.querier.Exec(ctx, query, shared.IntentStatusFailed, shared.IntentStatusCreated, now)
	if err != nil {
		r.logger.Error("Failed to expire stale intents", "error", err)
		return 0, fmt.Errorf("failed to expire stale intents: %w", err)
	}

	return result.RowsAffected(), nil
}

// HistoryForSender retrieves the sender's most recent intents of any status,
// newest first. The fraud engine filters by status itself.
func (r *IntentRepository) HistoryForSender(ctx context.Context, senderID string, limit int) ([]intent.HistoryEntry, error) {
	query := `
		SELECT receiver_identifier, amount_principal, corridor, status, created_at
		FROM remit_intents
		WHERE sender_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, senderID, limit)
	if err != nil {
		r.logger.Error("Failed to get sender history", "sender_id", senderID, "error", err)
		return nil, fmt.Errorf("failed to get sender history: %w", err)
	}
	defer rows.Close()

	var entries []intent.HistoryEntry
	for rows.Next() {
		var entry intent.HistoryEntry
		err := rows.Scan(
			&entry.Receiver,
			&entry.Amount,
			&entry.Corridor,
			&entry.Status,
			&entry.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan history entry", "error", err)
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over sender history", "error", err)
		return nil, fmt.Errorf("error iterating over sender history: %w", err)
	}

	return entries, nil
}
