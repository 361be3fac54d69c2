package service

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/balance"
	"tradejournal/src/cache"
	"tradejournal/src/controller"
	"tradejournal/src/journal"
	"tradejournal/src/metrics"
	"tradejournal/src/model"
	"tradejournal/src/utils"
)

const serviceName = "tradejournal"

const (
	kindStats    = "stats"
	kindEquity   = "equity"
	kindCalendar = "calendar"
	kindSessions = "sessions"

	noCacheVersion int64 = -1
)

// JournalService answers every read for the authenticated user's active
// account and reacts to trade-set changes.
type JournalService struct {
	trades     TradeLister
	accounts   AccountStore
	writer     TradeWriter
	activator  AccountActivator
	cache      StatsCache
	syncer     *balance.Syncer
	exceptions controller.ExceptionRecorder

	loc *time.Location
	now func() time.Time
}

func NewJournalService(trades TradeLister, accounts AccountStore, syncer *balance.Syncer) *JournalService {
	return &JournalService{
		trades:   trades,
		accounts: accounts,
		syncer:   syncer,
		cache:    cache.NopCache{},
		loc:      time.UTC,
		now:      time.Now,
	}
}

func (s *JournalService) WithWriter(writer TradeWriter, activator AccountActivator) *JournalService {
	s.writer = writer
	s.activator = activator
	return s
}

func (s *JournalService) WithCache(c StatsCache) *JournalService {
	if c != nil {
		s.cache = c
	}
	return s
}

func (s *JournalService) WithExceptions(recorder controller.ExceptionRecorder) *JournalService {
	s.exceptions = recorder
	return s
}

func (s *JournalService) WithLocation(loc *time.Location) *JournalService {
	if loc != nil {
		s.loc = loc
	}
	return s
}

func (s *JournalService) WithClock(now func() time.Time) *JournalService {
	s.now = now
	return s
}

// Location is the timezone used for calendar days and ranges.
func (s *JournalService) Location() *time.Location {
	return s.loc
}

func (s *JournalService) Now() time.Time {
	return s.now().In(s.loc)
}

// ActiveAccount returns the user's active account or ErrNoActiveAccount.
func (s *JournalService) ActiveAccount(ctx context.Context, userID uint) (*model.Account, error) {
	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].IsActive {
			return &accounts[i], nil
		}
	}
	return nil, ErrNoActiveAccount
}

func (s *JournalService) findAccount(ctx context.Context, userID, accountID uint) (*model.Account, error) {
	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].ID == accountID {
			return &accounts[i], nil
		}
	}
	return nil, ErrAccountNotFound
}

// accountTrades loads the account's trades newest first, in the service timezone.
func (s *JournalService) accountTrades(ctx context.Context, account *model.Account) ([]model.Trade, error) {
	trades, err := s.trades.ListByAccount(ctx, account.UserID, account.ID)
	if err != nil {
		return nil, err
	}
	metrics.TradesScanned.Add(float64(len(trades)))
	return journal.SortByDateDesc(journal.InLocation(trades, s.loc)), nil
}

// syncTrades is accountTrades for balance sync: it reads the primary store
// when the lister can, so a write that just landed is included.
func (s *JournalService) syncTrades(ctx context.Context, account *model.Account) ([]model.Trade, error) {
	primary, ok := s.trades.(PrimaryTradeLister)
	if !ok {
		return s.accountTrades(ctx, account)
	}

	trades, err := primary.ListByAccountPrimary(ctx, account.UserID, account.ID)
	if err != nil {
		return nil, err
	}
	metrics.TradesScanned.Add(float64(len(trades)))
	return journal.SortByDateDesc(journal.InLocation(trades, s.loc)), nil
}

// rangeKey identifies a cached ranged view. Calendar-aligned windows are
// stable for a day; the rolling 3-months window is not cached.
func rangeKey(r journal.TimeRange, now time.Time) (string, bool) {
	switch r {
	case journal.RangeAll:
		return string(r), true
	case journal.Range3Months:
		return "", false
	default:
		return string(r) + ":" + utils.DayKey(now, nil), true
	}
}

// loadCached returns the cache version seen by the lookup, or noCacheVersion
// when the cache could not be read and nothing should be written back.
func (s *JournalService) loadCached(ctx context.Context, accountID uint, kind, disc string, dest interface{}) (int64, bool) {
	version, ok, err := s.cache.Load(ctx, accountID, kind, disc, dest)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"service":    "JournalService",
			"kind":       kind,
			"account_id": accountID,
		}).WithError(err).Warn("Stats cache read failed, recomputing")
		return noCacheVersion, false
	}
	return version, ok
}

func (s *JournalService) saveCached(ctx context.Context, accountID uint, version int64, kind, disc string, value interface{}) {
	if version == noCacheVersion {
		return
	}
	if err := s.cache.Save(ctx, accountID, version, kind, disc, value); err != nil {
		logger.WithFields(map[string]interface{}{
			"service":    "JournalService",
			"kind":       kind,
			"account_id": accountID,
		}).WithError(err).Warn("Stats cache write failed")
	}
}

// Stats reduces the active account's trades inside the range. Without an
// active account the zero value is returned.
func (s *JournalService) Stats(ctx context.Context, userID uint, r journal.TimeRange) (journal.TradeStats, error) {
	account, err := s.ActiveAccount(ctx, userID)
	if errors.Is(err, ErrNoActiveAccount) {
		return journal.ComputeStats(nil, nil), nil
	}
	if err != nil {
		return journal.TradeStats{}, err
	}

	now := s.Now()
	disc, cacheable := rangeKey(r, now)

	var stats journal.TradeStats
	version := noCacheVersion
	if cacheable {
		var hit bool
		if version, hit = s.loadCached(ctx, account.ID, kindStats, disc, &stats); hit {
			return stats, nil
		}
	}

	trades, err := s.accountTrades(ctx, account)
	if err != nil {
		return journal.TradeStats{}, err
	}

	metrics.ObserveCompute(kindStats, func() {
		stats = journal.ComputeStats(journal.FilterByRange(trades, r, now), account)
	})

	s.saveCached(ctx, account.ID, version, kindStats, disc, stats)
	return stats, nil
}

// Equity builds the curve over the full trade set, oldest first.
func (s *JournalService) Equity(ctx context.Context, userID uint) ([]journal.EquityPoint, *model.Account, error) {
	now := s.Now()

	account, err := s.ActiveAccount(ctx, userID)
	if errors.Is(err, ErrNoActiveAccount) {
		return journal.BuildEquityCurve(nil, model.Account{}, now), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var points []journal.EquityPoint
	version, hit := s.loadCached(ctx, account.ID, kindEquity, string(journal.RangeAll), &points)
	if hit {
		return points, account, nil
	}

	trades, err := s.accountTrades(ctx, account)
	if err != nil {
		return nil, nil, err
	}

	metrics.ObserveCompute(kindEquity, func() {
		points = journal.BuildEquityCurve(journal.SortByDateAsc(trades), *account, now)
	})

	s.saveCached(ctx, account.ID, version, kindEquity, string(journal.RangeAll), points)
	return points, account, nil
}

// Calendar returns every day of month with its P&L and trade count.
func (s *JournalService) Calendar(ctx context.Context, userID uint, month time.Time) ([]journal.DayPnL, error) {
	month = utils.StartOfMonth(month.In(s.loc))
	disc := month.Format("2006-01")

	account, err := s.ActiveAccount(ctx, userID)
	if errors.Is(err, ErrNoActiveAccount) {
		return journal.MonthCalendar(nil, model.Account{}, month), nil
	}
	if err != nil {
		return nil, err
	}

	var days []journal.DayPnL
	version, hit := s.loadCached(ctx, account.ID, kindCalendar, disc, &days)
	if hit {
		return days, nil
	}

	trades, err := s.accountTrades(ctx, account)
	if err != nil {
		return nil, err
	}

	metrics.ObserveCompute(kindCalendar, func() {
		days = journal.MonthCalendar(trades, *account, month)
	})

	s.saveCached(ctx, account.ID, version, kindCalendar, disc, days)
	return days, nil
}

func (s *JournalService) Sessions(ctx context.Context, userID uint, r journal.TimeRange) ([]journal.SessionStats, error) {
	account, err := s.ActiveAccount(ctx, userID)
	if errors.Is(err, ErrNoActiveAccount) {
		return []journal.SessionStats{}, nil
	}
	if err != nil {
		return nil, err
	}

	now := s.Now()
	disc, cacheable := rangeKey(r, now)

	var breakdown []journal.SessionStats
	version := noCacheVersion
	if cacheable {
		var hit bool
		if version, hit = s.loadCached(ctx, account.ID, kindSessions, disc, &breakdown); hit {
			return breakdown, nil
		}
	}

	trades, err := s.accountTrades(ctx, account)
	if err != nil {
		return nil, err
	}

	metrics.ObserveCompute(kindSessions, func() {
		breakdown = journal.BreakdownBySession(journal.FilterByRange(trades, r, now), *account)
	})

	s.saveCached(ctx, account.ID, version, kindSessions, disc, breakdown)
	return breakdown, nil
}

// Trades lists the active account's trades in range, newest first, with their derived P&L.
func (s *JournalService) Trades(ctx context.Context, userID uint, r journal.TimeRange) ([]journal.AnnotatedTrade, *model.Account, error) {
	account, err := s.ActiveAccount(ctx, userID)
	if errors.Is(err, ErrNoActiveAccount) {
		return []journal.AnnotatedTrade{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	trades, err := s.accountTrades(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	return journal.Annotate(journal.FilterByRange(trades, r, s.Now()), *account), account, nil
}

// TradesChanged drops the account's cached views and re-syncs its balance.
// Failures are captured, never returned: the trade write already succeeded.
func (s *JournalService) TradesChanged(ctx context.Context, userID, accountID uint) {
	log := logger.WithFields(map[string]interface{}{
		"service":    "JournalService",
		"op":         "TradesChanged",
		"user_id":    userID,
		"account_id": accountID,
	})

	if err := s.cache.Invalidate(ctx, accountID); err != nil {
		log.WithError(err).Warn("Failed to invalidate stats cache")
	}

	if s.syncer == nil {
		return
	}

	account, err := s.findAccount(ctx, userID, accountID)
	if err != nil {
		s.capture(ctx, "TradesChanged", err, map[string]interface{}{"user_id": userID, "account_id": accountID})
		return
	}

	trades, err := s.syncTrades(ctx, account)
	if err != nil {
		s.capture(ctx, "TradesChanged", err, map[string]interface{}{"user_id": userID, "account_id": accountID})
		return
	}

	if _, err := s.syncer.Sync(ctx, account, trades); err != nil {
		s.capture(ctx, "SyncBalance", err, map[string]interface{}{"user_id": userID, "account_id": accountID})
	}
}

// SyncSummary counts balance sync outcomes for a batch run.
type SyncSummary struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func (s *SyncSummary) add(outcome balance.Outcome) {
	switch outcome {
	case balance.OutcomeWritten:
		s.Written++
	case balance.OutcomeSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// SyncAllBalances recomputes every account's cached balance.
func (s *JournalService) SyncAllBalances(ctx context.Context) (SyncSummary, error) {
	var summary SyncSummary
	if s.syncer == nil {
		return summary, nil
	}

	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return summary, err
	}

	for i := range accounts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome, err := s.syncAccount(ctx, &accounts[i])
		summary.add(outcome)
		if err != nil {
			s.capture(ctx, "SyncAllBalances", err, map[string]interface{}{"account_id": accounts[i].ID})
		}
	}

	logger.WithFields(map[string]interface{}{
		"service": "JournalService",
		"op":      "SyncAllBalances",
		"written": summary.Written,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info("Balance sync finished")

	return summary, nil
}

// SyncActiveBalance re-syncs the user's active account on demand.
func (s *JournalService) SyncActiveBalance(ctx context.Context, userID uint) (*model.Account, balance.Outcome, error) {
	account, err := s.ActiveAccount(ctx, userID)
	if err != nil {
		return nil, balance.OutcomeFailed, err
	}
	if s.syncer == nil {
		return account, balance.OutcomeSkipped, nil
	}

	outcome, err := s.syncAccount(ctx, account)
	if err != nil {
		return account, outcome, err
	}
	return account, outcome, nil
}

func (s *JournalService) syncAccount(ctx context.Context, account *model.Account) (balance.Outcome, error) {
	trades, err := s.syncTrades(ctx, account)
	if err != nil {
		return balance.OutcomeFailed, err
	}
	return s.syncer.Sync(ctx, account, trades)
}

func (s *JournalService) capture(ctx context.Context, method string, err error, data map[string]interface{}) {
	controller.Capture(ctx, s.exceptions, serviceName, "JournalService", method, "error", err, data)
}
