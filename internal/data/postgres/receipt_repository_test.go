package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remitchain-core/internal/domain/receipt"
	"github.com/remitchain-core/internal/domain/shared"
)

func testReceipt(t *testing.T) *receipt.Receipt {
	t.Helper()
	token, err := receipt.NewShareToken()
	require.NoError(t, err)

	now := time.Now()
	raw, _ := json.Marshal(map[string]string{"mode": "sandbox"})
	return &receipt.Receipt{
		ID:                  uuid.New(),
		IntentID:            uuid.New(),
		SenderID:            "sender-1",
		ReceiverAddress:     "+919876543210",
		TokenIdentifier:     "USDC",
		AmountPrincipal:     decimal.NewFromInt(100),
		AmountFee:           decimal.RequireFromString("0.25"),
		Corridor:            "USDC-INR",
		SettlementTimestamp: now,
		FxRateAtSettlement:  decimal.RequireFromString("83.20"),
		LocalAmountEstimate: decimal.RequireFromString("8320.00"),
		ShareToken:          token,
		ShareTokenExpiresAt: now.Add(shared.ShareTokenTTL),
		RawSettlementEvent:  raw,
		CreatedAt:           now,
	}
}

func TestReceiptRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ReceiptRepository{querier: mock, logger: newTestLogger()}
	rec := testReceipt(t)

	query := `INSERT INTO remit_receipts`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(rec.ID, rec.IntentID, rec.SenderID, rec.ReceiverAddress, rec.TokenIdentifier,
				rec.AmountPrincipal, rec.AmountFee, rec.Corridor, rec.SettlementTimestamp,
				rec.FxRateAtSettlement, rec.LocalAmountEstimate, rec.ShareToken,
				rec.ShareTokenExpiresAt, rec.RawSettlementEvent, rec.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, rec)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(rec.ID, rec.IntentID, rec.SenderID, rec.ReceiverAddress, rec.TokenIdentifier,
				rec.AmountPrincipal, rec.AmountFee, rec.Corridor, rec.SettlementTimestamp,
				rec.FxRateAtSettlement, rec.LocalAmountEstimate, rec.ShareToken,
				rec.ShareTokenExpiresAt, rec.RawSettlementEvent, rec.CreatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, rec)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create receipt")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func receiptRows(rec *receipt.Receipt) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "intent_id", "sender_id", "receiver_address",
		"token_identifier", "amount_principal", "amount_fee", "corridor", "settlement_timestamp",
		"fx_rate_at_settlement", "local_amount_estimate", "share_token", "share_token_expires_at",
		"raw_settlement_event", "created_at"}).
		AddRow(rec.ID, rec.IntentID, rec.SenderID, rec.ReceiverAddress, rec.TokenIdentifier,
			rec.AmountPrincipal, rec.AmountFee, rec.Corridor, rec.SettlementTimestamp,
			rec.FxRateAtSettlement, rec.LocalAmountEstimate, rec.ShareToken,
			rec.ShareTokenExpiresAt, rec.RawSettlementEvent, rec.CreatedAt)
}

func TestReceiptRepository_GetByIntentID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ReceiptRepository{querier: mock, logger: newTestLogger()}
	rec := testReceipt(t)

	query := `SELECT id, intent_id, sender_id, receiver_address, token_identifier,`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(rec.IntentID).WillReturnRows(receiptRows(rec))

		got, err := repo.GetByIntentID(ctx, rec.IntentID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.ShareToken, got.ShareToken)
		assert.True(t, got.FxRateAtSettlement.Equal(rec.FxRateAtSettlement))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		missing := uuid.New()
		mock.ExpectQuery(query).WithArgs(missing).WillReturnError(errNoRows())

		_, err := repo.GetByIntentID(ctx, missing)
		assert.ErrorIs(t, err, receipt.ErrReceiptNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReceiptRepository_Flags(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ReceiptRepository{querier: mock, logger: newTestLogger()}
	receiptID := uuid.New()
	now := time.Now()

	flags := []receipt.FraudFlag{
		{ReceiptID: receiptID, RuleName: "NEW_SENDER", Severity: shared.FlagSeverityMedium, Score: 50, Note: "First transaction from this sender", CreatedAt: now},
		{ReceiptID: receiptID, RuleName: "HIGH_FREQUENCY", Severity: shared.FlagSeverityHigh, Score: 90, Note: "3 transactions in last minute", CreatedAt: now},
	}

	t.Run("create", func(t *testing.T) {
		for _, flag := range flags {
			mock.ExpectExec(`INSERT INTO fraud_flags`).
				WithArgs(flag.ReceiptID, flag.RuleName, flag.Severity, flag.Score, flag.Note, flag.CreatedAt).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}

		err := repo.CreateFlags(ctx, flags)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create with no flags is a no-op", func(t *testing.T) {
		err := repo.CreateFlags(ctx, nil)
		assert.NoError(t, err)
	})

	t.Run("get", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "receipt_id", "rule_name", "severity", "score", "note", "created_at"}).
			AddRow(int64(1), receiptID, "NEW_SENDER", shared.FlagSeverityMedium, 50, "First transaction from this sender", now).
			AddRow(int64(2), receiptID, "HIGH_FREQUENCY", shared.FlagSeverityHigh, 90, "3 transactions in last minute", now)

		mock.ExpectQuery(`SELECT id, receipt_id, rule_name, severity, score, note, created_at`).
			WithArgs(receiptID).
			WillReturnRows(rows)

		got, err := repo.GetFlags(ctx, receiptID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "NEW_SENDER", got[0].RuleName)
		assert.Equal(t, 90, got[1].Score)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
