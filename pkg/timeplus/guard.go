package timeplus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/config"
	"github.com/streamsynth-io/streamsynth-engine/pkg/retry"
)

// probeQuery is the liveness probe issued on every guard attempt. The engine
// must answer with exactly 1 before the service admits traffic.
const probeQuery = "SELECT to_uint64(1)"

// ConnectivityError reports that the startup connectivity guard exhausted
// its attempts. The process must not serve traffic when it occurs.
type ConnectivityError struct {
	Addr     string
	Attempts int
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("engine at %s unreachable after %d attempts: %v", e.Addr, e.Attempts, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// AwaitReady blocks until the engine endpoint accepts a connection and
// answers the liveness probe, retrying with a fixed delay. This is a
// startup gate, not a per-request retry: after MaxAttempts failures it
// returns a *ConnectivityError carrying the last underlying error.
func AwaitReady(ctx context.Context, cfg *config.TimeplusConfig, logger *zap.Logger) (*Client, error) {
	log := logger.Named("timeplus")
	log.Info("waiting for streaming engine",
		zap.String("addr", cfg.Addr()),
		zap.String("user", cfg.User),
		zap.Int("max_attempts", cfg.MaxAttempts),
		zap.Duration("retry_delay", cfg.RetryDelay()))

	attempt := 0
	client, err := retry.DoWithResult(ctx, retry.Fixed(cfg.MaxAttempts-1, cfg.RetryDelay()), func() (*Client, error) {
		attempt++
		log.Info("connection attempt", zap.Int("attempt", attempt), zap.Int("max_attempts", cfg.MaxAttempts))

		c, err := Connect(cfg, logger)
		if err != nil {
			log.Warn("connection attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			return nil, err
		}

		v, err := c.QueryUInt64(ctx, probeQuery)
		if err != nil {
			_ = c.Close()
			log.Warn("liveness probe failed", zap.Int("attempt", attempt), zap.Error(err))
			return nil, err
		}
		if v != 1 {
			_ = c.Close()
			err := fmt.Errorf("unexpected probe response: %d", v)
			log.Warn("liveness probe mismatch", zap.Int("attempt", attempt), zap.Error(err))
			return nil, err
		}

		return c, nil
	})
	if err != nil {
		return nil, &ConnectivityError{Addr: cfg.Addr(), Attempts: attempt, Err: err}
	}

	log.Info("streaming engine is ready", zap.String("addr", cfg.Addr()))
	return client, nil
}
