package mockapi

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartChallengeCleaner purges expired challenges every interval until
// ctx is done.
func StartChallengeCleaner(ctx context.Context, store *Store, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := store.PurgeExpired(); n > 0 {
					log.Info("purged expired challenges", zap.Int("removed", n))
				}
			}
		}
	}()
}
