// Package executors runs background jobs next to the HTTP server.
package executors

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/service"
)

type balanceSyncer interface {
	SyncAllBalances(ctx context.Context) (service.SyncSummary, error)
}

// StartLoop reconciles every account balance each period until ctx is done.
// Trade writes already sync their own account; the loop catches rows edited
// outside the API.
func StartLoop(ctx context.Context, journal balanceSyncer, period time.Duration) error {
	if period <= 0 {
		return errors.New("balance sync period must be positive")
	}

	ticker := time.NewTicker(period) // Set up a ticker that fires periodically
	defer ticker.Stop()

	log := logger.WithFields(map[string]interface{}{
		"loop":   "balance_sync",
		"period": period.String(),
	})
	log.Info("balance sync loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info("loop stopped")
			return nil

		case <-ticker.C:
			log.Debug("loop tick")

			summary, err := journal.SyncAllBalances(ctx)
			if err != nil {
				if ctx.Err() != nil {
					log.Info("loop stopped")
					return nil
				}
				// keep ticking, the next run retries every account
				log.WithError(err).Error("balance sync run failed")
				continue
			}

			if summary.Written > 0 || summary.Failed > 0 {
				log.WithFields(map[string]interface{}{
					"written": summary.Written,
					"failed":  summary.Failed,
				}).Info("balance sync run finished")
			}
		}
	}
}
