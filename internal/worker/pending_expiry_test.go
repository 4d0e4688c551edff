package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockExpirer struct {
	mock.Mock
	calls atomic.Int32
}

func (m *mockExpirer) Execute(ctx context.Context) (int, error) {
	m.calls.Add(1)
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestPendingExpiry_TicksUntilCancelled(t *testing.T) {
	expirer := &mockExpirer{}
	expirer.On("Execute", mock.Anything).Return(2, nil)

	core, logs := observer.New(zap.InfoLevel)
	w := NewPendingExpiry(expirer, 5*time.Millisecond, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return expirer.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, logs.FilterMessage("expired pending bookings").Len(), 2)
	assert.Equal(t, 1, logs.FilterMessage("pending expiry worker stopped").Len())
}

func TestPendingExpiry_LogsFailures(t *testing.T) {
	expirer := &mockExpirer{}
	expirer.On("Execute", mock.Anything).Return(0, errors.New("db down"))

	core, logs := observer.New(zap.InfoLevel)
	w := NewPendingExpiry(expirer, time.Minute, zap.New(core))

	w.tick(context.Background())

	assert.Equal(t, 1, logs.FilterMessage("expire pending bookings").Len())
	expirer.AssertExpectations(t)
}
