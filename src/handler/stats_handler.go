package handler

import (
	"context"
	"net/http"
	"time"

	"tradejournal/src/journal"
	"tradejournal/src/model"
)

type statsReader interface {
	Stats(ctx context.Context, userID uint, r journal.TimeRange) (journal.TradeStats, error)
}

type equityReader interface {
	Equity(ctx context.Context, userID uint) ([]journal.EquityPoint, *model.Account, error)
}

type calendarReader interface {
	Calendar(ctx context.Context, userID uint, month time.Time) ([]journal.DayPnL, error)
	Location() *time.Location
	Now() time.Time
}

type sessionsReader interface {
	Sessions(ctx context.Context, userID uint, r journal.TimeRange) ([]journal.SessionStats, error)
}

type tradesReader interface {
	Trades(ctx context.Context, userID uint, r journal.TimeRange) ([]journal.AnnotatedTrade, *model.Account, error)
}

// StatsHandler returns aggregate stats for the active account.
// Query: range (today, yesterday, this-week, ..., all). Empty means all.
func StatsHandler(svc statsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		rng, ok := parseRange(w, r)
		if !ok {
			return
		}

		stats, err := svc.Stats(r.Context(), user.ID, rng)
		if err != nil {
			writeServiceError(w, err, "failed to compute stats")
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}

type equityResponse struct {
	StartingBalance float64               `json:"starting_balance"`
	Points          []journal.EquityPoint `json:"points"`
}

// EquityHandler returns the cumulative P&L curve over every trade of the
// active account. It ignores any range parameter.
func EquityHandler(svc equityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		points, account, err := svc.Equity(r.Context(), user.ID)
		if err != nil {
			writeServiceError(w, err, "failed to build equity curve")
			return
		}

		resp := equityResponse{Points: points}
		if account != nil {
			resp.StartingBalance = account.StartingBalance
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type calendarResponse struct {
	Month string           `json:"month"`
	Days  []journal.DayPnL `json:"days"`
	PnL   float64          `json:"pnl"`
}

// CalendarHandler returns the month heatmap. Query: month=YYYY-MM, default current month.
func CalendarHandler(svc calendarReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		month := svc.Now()
		if monthParam := r.URL.Query().Get("month"); monthParam != "" {
			parsed, err := time.ParseInLocation("2006-01", monthParam, svc.Location())
			if err != nil {
				http.Error(w, "invalid month", http.StatusBadRequest)
				return
			}
			month = parsed
		}

		days, err := svc.Calendar(r.Context(), user.ID, month)
		if err != nil {
			writeServiceError(w, err, "failed to build calendar")
			return
		}

		resp := calendarResponse{Month: month.Format("2006-01"), Days: days}
		for _, d := range days {
			resp.PnL += d.PnL
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func SessionsHandler(svc sessionsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		rng, ok := parseRange(w, r)
		if !ok {
			return
		}

		breakdown, err := svc.Sessions(r.Context(), user.ID, rng)
		if err != nil {
			writeServiceError(w, err, "failed to compute session breakdown")
			return
		}

		writeJSON(w, http.StatusOK, breakdown)
	}
}

// TradesHandler lists trades in range, newest first, with derived P&L and R.
func TradesHandler(svc tradesReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		rng, ok := parseRange(w, r)
		if !ok {
			return
		}

		trades, _, err := svc.Trades(r.Context(), user.ID, rng)
		if err != nil {
			writeServiceError(w, err, "failed to list trades")
			return
		}

		writeJSON(w, http.StatusOK, trades)
	}
}
