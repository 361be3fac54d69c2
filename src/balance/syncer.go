// Package balance keeps accounts.current_balance in line with the trade log.
// The stored value is only a cache of starting_balance plus the summed P&L;
// it is never read back into any calculation.
package balance

import (
	"context"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/journal"
	"tradejournal/src/metrics"
	"tradejournal/src/model"
)

type Outcome string

const (
	OutcomeWritten Outcome = "written"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

type AccountUpdater interface {
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error
}

type Syncer struct {
	store     AccountUpdater
	threshold decimal.Decimal
}

func NewSyncer(store AccountUpdater, threshold float64) *Syncer {
	if threshold <= 0 {
		threshold = 0.01
	}
	return &Syncer{
		store:     store,
		threshold: decimal.NewFromFloat(threshold),
	}
}

// Balance is starting_balance plus every trade's P&L, rounded to cents.
func Balance(account model.Account, trades []model.Trade) decimal.Decimal {
	total := decimal.NewFromFloat(account.StartingBalance)
	for _, t := range trades {
		total = total.Add(decimal.NewFromFloat(journal.TradePnL(t, account)))
	}
	return total.Round(2)
}

// Sync writes the recomputed balance when it drifted by at least the
// threshold. On a write the in-memory account is updated too.
func (s *Syncer) Sync(ctx context.Context, account *model.Account, trades []model.Trade) (Outcome, error) {
	if account == nil {
		return OutcomeSkipped, nil
	}

	next := Balance(*account, trades)
	cached := decimal.NewFromFloat(account.CurrentBalance)

	log := logger.WithFields(map[string]interface{}{
		"component":  "BalanceSyncer",
		"account_id": account.ID,
		"cached":     cached.StringFixed(2),
		"computed":   next.StringFixed(2),
	})

	if next.Sub(cached).Abs().LessThan(s.threshold) {
		metrics.BalanceSyncs.WithLabelValues(string(OutcomeSkipped)).Inc()
		log.Debug("Balance within threshold, skipping write")
		return OutcomeSkipped, nil
	}

	value, _ := next.Float64()
	if err := s.store.UpdateFields(ctx, account.ID, map[string]interface{}{"current_balance": value}); err != nil {
		metrics.BalanceSyncs.WithLabelValues(string(OutcomeFailed)).Inc()
		log.WithError(err).Error("Failed to write account balance")
		return OutcomeFailed, err
	}

	account.CurrentBalance = value
	metrics.BalanceSyncs.WithLabelValues(string(OutcomeWritten)).Inc()
	log.Info("Account balance updated")
	return OutcomeWritten, nil
}
