package syncbalances

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/service"
)

type balanceSyncer interface {
	SyncAllBalances(ctx context.Context) (service.SyncSummary, error)
}

// SyncBalances recomputes current_balance for every account in one pass.
type SyncBalances struct {
	Log     *logger.Entry
	Journal balanceSyncer
	Config  *Config
}

func (s *SyncBalances) Start(ctx context.Context) error {
	if s.Config == nil {
		s.Config = GetConfig()
	}

	ctx, cancel := context.WithTimeout(ctx, s.Config.Timeout)
	defer cancel()

	summary, err := s.Journal.SyncAllBalances(ctx)
	if err != nil {
		return fmt.Errorf("sync balances: %w", err)
	}

	s.Log.WithFields(map[string]interface{}{
		"written": summary.Written,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info("Balances synced")

	if s.Config.FailOnError && summary.Failed > 0 {
		return fmt.Errorf("%d account balance(s) failed to sync", summary.Failed)
	}
	return nil
}
