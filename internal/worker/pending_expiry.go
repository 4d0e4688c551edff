package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Expirer is the use case the worker drives.
type Expirer interface {
	Execute(ctx context.Context) (int, error)
}

// PendingExpiry periodically cancels PENDING bookings whose start time has
// passed.
type PendingExpiry struct {
	expirer  Expirer
	interval time.Duration
	log      *zap.Logger
}

func NewPendingExpiry(expirer Expirer, interval time.Duration, log *zap.Logger) *PendingExpiry {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PendingExpiry{expirer: expirer, interval: interval, log: log}
}

func (w *PendingExpiry) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("pending expiry worker started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("pending expiry worker stopped")
			return nil
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *PendingExpiry) tick(ctx context.Context) {
	n, err := w.expirer.Execute(ctx)
	if err != nil {
		w.log.Error("expire pending bookings", zap.Int("cancelled", n), zap.Error(err))
		return
	}
	if n > 0 {
		w.log.Info("expired pending bookings", zap.Int("cancelled", n))
	}
}
