// Package export writes journal data as CSV for spreadsheets.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"tradejournal/src/journal"
	"tradejournal/src/model"
)

var (
	tradeHeader  = []string{"id", "date", "session", "symbol", "side", "result", "rr", "risk_percentage", "pnl_dollar", "pnl"}
	equityHeader = []string{"date", "value", "balance"}
)

// WriteTrades writes one row per trade with its derived P&L. Optional numeric
// fields are left empty when unset.
func WriteTrades(w io.Writer, trades []model.Trade, account model.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return err
	}

	for _, t := range trades {
		err := cw.Write([]string{
			strconv.FormatUint(uint64(t.ID), 10),
			t.Date.Format(time.RFC3339),
			t.Session,
			t.Symbol,
			t.Side,
			t.Result,
			optional(t.RR),
			optional(t.RiskPercentage),
			optional(t.PnLDollar),
			f(journal.TradePnL(t, account)),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteEquity writes the curve with both the relative value and the absolute balance.
func WriteEquity(w io.Writer, points []journal.EquityPoint, startingBalance float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(equityHeader); err != nil {
		return err
	}

	for _, p := range points {
		err := cw.Write([]string{
			p.Date.Format(time.RFC3339),
			f(p.Value),
			f(startingBalance + p.Value),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
