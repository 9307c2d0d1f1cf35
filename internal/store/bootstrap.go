package store

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Schemer is the part of Store needed to bootstrap tables.
type Schemer interface {
	EnsureSchema(ctx context.Context) error
}

// WaitForSchema calls EnsureSchema every interval, each attempt bounded by
// interval, until it succeeds or ctx is done. The service keeps serving
// fallback reads meanwhile.
func WaitForSchema(ctx context.Context, st Schemer, interval time.Duration, logger log.FieldLogger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		attemptCtx, cancel := context.WithTimeout(ctx, interval)
		err := st.EnsureSchema(attemptCtx)
		cancel()
		if err != nil {
			logger.WithError(err).WithField("attempt", attempt).Warn("schema still unavailable")
			continue
		}
		logger.WithField("attempt", attempt).Info("schema ensured")
		return nil
	}
}
