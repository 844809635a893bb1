package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/remitchain-core/internal/domain/cashout"
	"github.com/remitchain-core/internal/domain/shared"
	"github.com/remitchain-core/internal/platform/persistence"
)

// CashoutRepository implements the cashout.Repository interface for PostgreSQL
type CashoutRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCashoutRepository creates a new PostgreSQL cashout repository
func NewCashoutRepository(logger *slog.Logger, db *persistence.PostgresDB) cashout.Repository {
	return &CashoutRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *CashoutRepository) WithTx(tx pgx.Tx) cashout.Repository {
	return &CashoutRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new cash-out. The unique index on intent_id makes initiate
// idempotent: a duplicate insert fails and the caller re-reads the existing
// row.
func (r *CashoutRepository) Create(ctx context.Context, c *cashout.Cashout) error {
	events, err := json.Marshal(c.Events)
	if err != nil {
		return fmt.Errorf("failed to marshal cashout events: %w", err)
	}

	query := `
		INSERT INTO cashouts (id, intent_id, reference, method, payout_target, status,
			events, next_action_due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.querier.Exec(ctx, query,
		c.ID,
		c.IntentID,
		c.Reference,
		c.Method,
		c.PayoutTarget,
		c.Status,
		events,
		c.NextActionDueAt,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create cashout", "intent_id", c.IntentID.String(), "error", err)
		return fmt.Errorf("failed to create cashout: %w", err)
	}

	return nil
}

// GetByID retrieves a cash-out by its ID
func (r *CashoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*cashout.Cashout, error) {
	return r.getOne(ctx, "id = $1", id, "")
}

// GetByReference retrieves a cash-out by its human-readable reference
func (r *CashoutRepository) GetByReference(ctx context.Context, reference string) (*cashout.Cashout, error) {
	return r.getOne(ctx, "reference = $1", reference, reference)
}

// GetByIntentID retrieves the cash-out attached to an intent
func (r *CashoutRepository) GetByIntentID(ctx context.Context, intentID uuid.UUID) (*cashout.Cashout, error) {
	return r.getOne(ctx, "intent_id = $1", intentID, "")
}

func (r *CashoutRepository) getOne(ctx context.Context, predicate string, arg any, notFoundRef string) (*cashout.Cashout, error) {
	query := fmt.Sprintf(`
		SELECT id, intent_id, reference, method, payout_target, status,
			events, next_action_due_at, created_at, updated_at
		FROM cashouts
		WHERE %s
	`, predicate)

	c, err := scanCashout(r.querier.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cashout.ErrCashoutNotFound{Reference: notFoundRef}
		}
		r.logger.Error("Failed to get cashout", "error", err)
		return nil, fmt.Errorf("failed to get cashout: %w", err)
	}

	return c, nil
}

// Advance moves the cash-out one step down the progression chain. The status
// predicate plus the jsonb append happen in a single statement, so a racing
// worker and sweeper can never double-apply a step or duplicate an event.
func (r *CashoutRepository) Advance(ctx context.Context, id uuid.UUID, from, to shared.CashoutStatus, event cashout.Event, nextDueAt *time.Time) (bool, error) {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return false, fmt.Errorf("failed to marshal cashout event: %w", err)
	}

	query := `
		UPDATE cashouts
		SET status = $1,
			events = events || $2::jsonb,
			next_action_due_at = $3,
			updated_at = NOW()
		WHERE id = $4 AND status = $5
	`

	result, err := r.querier.Exec(ctx, query, to, eventJSON, nextDueAt, id, from)
	if err != nil {
		r.logger.Error("Failed to advance cashout",
			"id", id.String(),
			"from", string(from),
			"to", string(to),
			"error", err,
		)
		return false, fmt.Errorf("failed to advance cashout: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GetDue retrieves non-terminal cash-outs whose next step was due at or before
// now, oldest first. The recovery sweeper uses this to re-drive payouts that
// lost their worker.
func (r *CashoutRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]*cashout.Cashout, error) {
	query := `
		SELECT id, intent_id, reference, method, payout_target, status,
			events, next_action_due_at, created_at, updated_at
		FROM cashouts
		WHERE status IN ($1, $2)
			AND next_action_due_at IS NOT NULL
			AND next_action_due_at <= $3
		ORDER BY next_action_due_at ASC
		LIMIT $4
	`

	rows, err := r.querier.Query(ctx, query, shared.CashoutStatusQueued, shared.CashoutStatusProcessing, now, limit)
	if err != nil {
		r.logger.Error("Failed to get due cashouts", "error", err)
		return nil, fmt.Errorf("failed to get due cashouts: %w", err)
	}
	defer rows.Close()

	var cashouts []*cashout.Cashout
	for rows.Next() {
		c, err := scanCashout(rows)
		if err != nil {
			r.logger.Error("Failed to scan cashout", "error", err)
			return nil, fmt.Errorf("failed to scan cashout: %w", err)
		}
		cashouts = append(cashouts, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over due cashouts", "error", err)
		return nil, fmt.Errorf("error iterating over due cashouts: %w", err)
	}

	return cashouts, nil
}

func scanCashout(row pgx.Row) (*cashout.Cashout, error) {
	var c cashout.Cashout
	var events []byte
	err := row.Scan(
		&c.ID,
		&c.IntentID,
		&c.Reference,
		&c.Method,
		&c.PayoutTarget,
		&c.Status,
		&events,
		&c.NextActionDueAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(events, &c.Events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cashout events: %w", err)
	}
	return &c, nil
}
