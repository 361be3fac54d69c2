package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/handler"
	"tradejournal/src/metrics"
)

// NewRouter mounts every journal route on a chi router.
func NewRouter(app *App, userHeader string) http.Handler {
	r := chi.NewRouter()

	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/public/trades/{shareID}", handler.PublicTradeHandler(app.Journal))

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(app.Users, userHeader))

		r.Get("/stats", handler.StatsHandler(app.Journal))
		r.Get("/equity", handler.EquityHandler(app.Journal))
		r.Get("/calendar", handler.CalendarHandler(app.Journal))
		r.Get("/sessions", handler.SessionsHandler(app.Journal))

		r.Route("/trades", func(r chi.Router) {
			r.Get("/", handler.TradesHandler(app.Journal))
			r.Post("/", handler.CreateTradeHandler(app.Journal))
			r.Put("/{tradeID}", handler.UpdateTradeHandler(app.Journal))
			r.Delete("/{tradeID}", handler.DeleteTradeHandler(app.Journal))
			r.Post("/{tradeID}/share", handler.ShareTradeHandler(app.Journal))
		})

		r.Post("/accounts/{accountID}/activate", handler.ActivateAccountHandler(app.Journal))
		r.Post("/accounts/sync-balance", handler.SyncBalanceHandler(app.Journal))

		r.Get("/export/trades.csv", handler.ExportTradesCSVHandler(app.Journal))
		r.Get("/export/equity.csv", handler.ExportEquityCSVHandler(app.Journal))
	})

	return r
}

// StartServer serves h until SIGINT or SIGTERM, then shuts down gracefully.
func StartServer(port string, h http.Handler, shutdownTimeout time.Duration) {
	// Server setup
	addr := ":" + port
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
