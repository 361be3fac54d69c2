package service

import (
	"context"
	"errors"

	"tradejournal/src/model"
)

var (
	ErrNoActiveAccount = errors.New("no active account")
	ErrTradeNotFound   = errors.New("trade not found")
	ErrAccountNotFound = errors.New("account not found")
	// ErrReadOnlyStore is returned by mutations when the configured backend
	// only serves reads (STORE_BACKEND=supabase).
	ErrReadOnlyStore = errors.New("trade store is read-only")
)

// TradeLister returns an account's trades ordered by date DESC.
type TradeLister interface {
	ListByAccount(ctx context.Context, userID, accountID uint) ([]model.Trade, error)
}

// PrimaryTradeLister is implemented by listers backed by a lagging replica.
// Balance sync uses it so it never recomputes from a pre-write trade set.
type PrimaryTradeLister interface {
	ListByAccountPrimary(ctx context.Context, userID, accountID uint) ([]model.Trade, error)
}

type AccountStore interface {
	ListByUser(ctx context.Context, userID uint) ([]model.Account, error)
	ListAll(ctx context.Context) ([]model.Account, error)
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error
}

// TradeWriter covers trade mutations and sharing. FindByID and FindByShareID
// return (nil, nil) when nothing matches.
type TradeWriter interface {
	FindByID(ctx context.Context, userID, id uint) (*model.Trade, error)
	FindByShareID(ctx context.Context, shareID string) (*model.Trade, error)
	Create(ctx context.Context, trade *model.Trade) error
	Update(ctx context.Context, trade *model.Trade) error
	Delete(ctx context.Context, userID, id uint) error
	SetShareID(ctx context.Context, userID, id uint, shareID string) error
}

type AccountActivator interface {
	SetActive(ctx context.Context, userID, accountID uint) error
}

// StatsCache memoizes derived views per account. cache.StatsCache and
// cache.NopCache implement it.
type StatsCache interface {
	Load(ctx context.Context, accountID uint, kind, disc string, dest interface{}) (int64, bool, error)
	Save(ctx context.Context, accountID uint, version int64, kind, disc string, value interface{}) error
	Invalidate(ctx context.Context, accountID uint) error
}
