package server

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/balance"
	"tradejournal/src/cache"
	"tradejournal/src/connectors"
	"tradejournal/src/database"
	"tradejournal/src/journal"
	"tradejournal/src/model"
	"tradejournal/src/repository"
	"tradejournal/src/service"
)

type userLookup interface {
	GetUserByUserName(ctx context.Context, userName string) (*model.User, error)
}

// App holds the wired journal components shared by the HTTP server and the CLI.
type App struct {
	Journal *service.JournalService
	Users   userLookup
	closers []func() error
}

// Close releases the cache connection.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.WithError(err).Warn("Failed to close resource")
		}
	}
}

// NewApp connects the configured store backend, the stats cache and the
// balance syncer.
func NewApp(ctx context.Context, backend string) (*App, error) {
	loc, err := journal.GetConfig().Location()
	if err != nil {
		return nil, err
	}

	app := &App{}

	cacheCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	statsCache, closeCache, err := cache.NewFromConfig(cacheCtx, cache.GetConfig())
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeCache)

	threshold := balance.GetConfig().Threshold

	switch backend {
	case BackendGorm, "":
		if err := database.InitMainDB(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.InitReadOnlyDB(); err != nil {
			return nil, fmt.Errorf("failed to connect to read-only database: %w", err)
		}

		trades := repository.NewTradeRepository()
		accounts := repository.NewAccountRepository()

		app.Users = repository.NewUserRepository()
		app.Journal = service.NewJournalService(trades, accounts, balance.NewSyncer(accounts, threshold)).
			WithWriter(trades, accounts).
			WithExceptions(repository.NewExceptionRepository())

	case BackendSupabase:
		client := connectors.NewSupabaseClientFromConfig(connectors.GetConfig())

		app.Users = client
		app.Journal = service.NewJournalService(client, client, balance.NewSyncer(client, threshold))

	default:
		app.Close()
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", backend)
	}

	app.Journal.WithCache(statsCache).WithLocation(loc)

	logger.WithFields(map[string]interface{}{
		"backend":  backend,
		"timezone": loc.String(),
	}).Info("Journal service ready")

	return app, nil
}
