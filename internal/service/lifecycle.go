package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// SessionSweeper runs Sweep on a fixed interval until its context is done.
type SessionSweeper struct {
	sweeper  Sweeper
	interval time.Duration
}

func NewSessionSweeper(sweeper Sweeper, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}

	return &SessionSweeper{
		sweeper:  sweeper,
		interval: interval,
	}
}

func (w *SessionSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			zap.L().Info("session sweeper stopped")
			return nil
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SessionSweeper) tick(ctx context.Context) {
	moved, err := w.sweeper.Sweep(ctx)
	if err != nil {
		zap.L().Error("session sweep failed", zap.Error(err))
		return
	}
	if moved > 0 {
		zap.L().Info("session sweep", zap.Int("moved", moved))
	}
}
