package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remitchain-core/internal/domain/shared"
)

// stubProcessingService counts calls and returns a fixed error
type stubProcessingService struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubProcessingService) ProcessPayout(ctx context.Context, request *shared.PayoutRequest) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.err
}

func (s *stubProcessingService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestWorkerPoolProcessingService_ProcessPayout(t *testing.T) {
	t.Run("DelegatesToBaseService", func(t *testing.T) {
		base := &stubProcessingService{}
		pool, err := NewWorkerPoolProcessingService(base, WorkerPoolConfig{Size: 2}, newTestLogger())
		require.NoError(t, err)
		defer pool.Shutdown()

		request := &shared.PayoutRequest{CashoutID: uuid.New(), Reference: "RMT0123456789AB"}
		err = pool.ProcessPayout(context.Background(), request)
		require.NoError(t, err)
		assert.Equal(t, 1, base.callCount())
	})

	t.Run("PropagatesBaseError", func(t *testing.T) {
		baseErr := errors.New("advance failed")
		base := &stubProcessingService{err: baseErr}
		pool, err := NewWorkerPoolProcessingService(base, WorkerPoolConfig{Size: 2}, newTestLogger())
		require.NoError(t, err)
		defer pool.Shutdown()

		err = pool.ProcessPayout(context.Background(), &shared.PayoutRequest{CashoutID: uuid.New()})
		assert.ErrorIs(t, err, baseErr)
	})

	t.Run("ConcurrentSubmissions", func(t *testing.T) {
		base := &stubProcessingService{}
		pool, err := NewWorkerPoolProcessingService(base, WorkerPoolConfig{Size: 4}, newTestLogger())
		require.NoError(t, err)
		defer pool.Shutdown()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = pool.ProcessPayout(context.Background(), &shared.PayoutRequest{CashoutID: uuid.New()})
			}()
		}
		wg.Wait()

		assert.Equal(t, 10, base.callCount())
	})

	t.Run("ReportsCapacity", func(t *testing.T) {
		pool, err := NewWorkerPoolProcessingService(&stubProcessingService{}, WorkerPoolConfig{Size: 3}, newTestLogger())
		require.NoError(t, err)
		defer pool.Shutdown()

		assert.Equal(t, 3, pool.Capacity())
		assert.Equal(t, 0, pool.Running())
	})
}
