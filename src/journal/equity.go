package journal

import (
	"time"

	"tradejournal/src/model"
)

// EquityPoint is the cumulative P&L after a trade, relative to the starting balance.
type EquityPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// BuildEquityCurve scans trades left to right and returns the running P&L.
// Trades must already be sorted by date ascending (SortByDateAsc); the curve
// is meant for the full trade set, not a time-filtered one.
//
// The first point is a zero anchor at the first trade's date, so a curve has
// len(trades)+1 points. Without trades it is a single zero point at now.
func BuildEquityCurve(trades []model.Trade, account model.Account, now time.Time) []EquityPoint {
	if len(trades) == 0 {
		return []EquityPoint{{Date: now, Value: 0}}
	}

	points := make([]EquityPoint, 0, len(trades)+1)
	points = append(points, EquityPoint{Date: trades[0].Date, Value: 0})

	var running float64
	for _, t := range trades {
		running += TradePnL(t, account)
		points = append(points, EquityPoint{Date: t.Date, Value: running})
	}

	return points
}

// WithStartingBalance shifts a relative curve into absolute account equity.
func WithStartingBalance(points []EquityPoint, startingBalance float64) []EquityPoint {
	out := make([]EquityPoint, len(points))
	for i, p := range points {
		out[i] = EquityPoint{Date: p.Date, Value: p.Value + startingBalance}
	}
	return out
}
