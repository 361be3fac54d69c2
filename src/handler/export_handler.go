package handler

import (
	"net/http"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/export"
	"tradejournal/src/model"
)

func setCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

// ExportTradesCSVHandler streams the ranged trade list as CSV.
func ExportTradesCSVHandler(svc tradesReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		rng, ok := parseRange(w, r)
		if !ok {
			return
		}

		annotated, account, err := svc.Trades(r.Context(), user.ID, rng)
		if err != nil {
			writeServiceError(w, err, "failed to list trades for export")
			return
		}

		trades := make([]model.Trade, len(annotated))
		for i, t := range annotated {
			trades[i] = t.Trade
		}
		var acc model.Account
		if account != nil {
			acc = *account
		}

		setCSVHeaders(w, "trades.csv")
		if err := export.WriteTrades(w, trades, acc); err != nil {
			logger.WithError(err).Error("failed to write trades csv")
		}
	}
}

func ExportEquityCSVHandler(svc equityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		points, account, err := svc.Equity(r.Context(), user.ID)
		if err != nil {
			writeServiceError(w, err, "failed to build equity curve for export")
			return
		}

		var startingBalance float64
		if account != nil {
			startingBalance = account.StartingBalance
		}

		setCSVHeaders(w, "equity.csv")
		if err := export.WriteEquity(w, points, startingBalance); err != nil {
			logger.WithError(err).Error("failed to write equity csv")
		}
	}
}
