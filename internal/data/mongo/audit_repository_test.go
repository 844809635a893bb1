package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/remitchain-core/internal/domain/audit"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*audit.Entry, error) {
	args := m.Called(ctx, actorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

func (m *MockAuditRepository) ListByTimeRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*audit.Entry, error) {
	args := m.Called(ctx, start, end, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

func TestNewAuditRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewAuditRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &AuditRepository{}, repo)
}

func TestMockAuditRepository(t *testing.T) {
	mockRepo := &MockAuditRepository{}
	ctx := context.Background()

	entry := audit.NewEntry("sender-1", audit.ActionIntentCreated, map[string]any{
		"intent_id": "abc",
		"corridor":  "USDC-INR",
	})

	mockRepo.On("Append", mock.Anything, entry).Return(nil)
	mockRepo.On("ListByActor", mock.Anything, "sender-1", 10, 0).Return([]*audit.Entry{entry}, nil)

	err := mockRepo.Append(ctx, entry)
	assert.NoError(t, err)

	entries, err := mockRepo.ListByActor(ctx, "sender-1", 10, 0)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, audit.ActionIntentCreated, entries[0].Action)

	mockRepo.AssertExpectations(t)
}

func TestRecorder_SwallowsStorageErrors(t *testing.T) {
	mockRepo := &MockAuditRepository{}
	mockRepo.On("Append", mock.Anything, mock.Anything).Return(errors.New("mongo down"))

	recorder := audit.NewRecorder(slog.Default(), mockRepo)

	// Must not panic or propagate the error
	recorder.Record(context.Background(), "sender-1", audit.ActionRemitConfirmed, map[string]any{"intent_id": "abc"})

	mockRepo.AssertExpectations(t)
}
