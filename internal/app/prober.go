package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/spotter/internal/remote"
	"github.com/five82/spotter/internal/state"
)

const (
	defaultProbeInterval = 5 * time.Second
	probeTimeout         = 3 * time.Second
	maxBackoff           = 30 * time.Second
)

// StartProber launches a background goroutine that checks the workout
// service at a fixed cadence, backing off while it is down. Every
// online/offline flip is sent on online. It returns immediately.
func StartProber(ctx context.Context, store *state.Store, pinger remote.Pinger, interval time.Duration, online chan<- bool, logger *zap.Logger) {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			probe(ctx, store, pinger, online, logger)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

func probe(ctx context.Context, store *state.Store, pinger remote.Pinger, online chan<- bool, logger *zap.Logger) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := pinger.Ping(pctx)
	cancel()
	if ctx.Err() != nil {
		return
	}

	if !store.Update(err) {
		if err != nil {
			logger.Debug("health probe failed", zap.Error(err))
		}
		return
	}

	up := !store.Snapshot().IsOffline()
	if up {
		logger.Info("workout service reachable again")
	} else {
		logger.Warn("workout service unreachable", zap.Error(err))
	}
	select {
	case online <- up:
	case <-ctx.Done():
	}
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
