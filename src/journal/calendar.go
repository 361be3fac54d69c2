package journal

import (
	"sort"
	"time"

	"tradejournal/src/model"
	"tradejournal/src/utils"
)

// DayPnL is one cell of the calendar heatmap.
type DayPnL struct {
	Day    string  `json:"day"` // 2006-01-02
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
}

// DailyPnL groups trades by the calendar day of Date and returns the days that
// have trades, oldest first.
func DailyPnL(trades []model.Trade, account model.Account) []DayPnL {
	byDay := groupByDay(trades, account)

	out := make([]DayPnL, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// MonthCalendar returns one entry for every day of month's calendar month,
// zero-filled where nothing was traded. Trades outside the month are ignored.
func MonthCalendar(trades []model.Trade, account model.Account, month time.Time) []DayPnL {
	byDay := groupByDay(trades, account)

	first := utils.StartOfMonth(month)
	next := first.AddDate(0, 1, 0)

	var out []DayPnL
	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		key := utils.DayKey(day, nil)
		if d, ok := byDay[key]; ok {
			out = append(out, *d)
			continue
		}
		out = append(out, DayPnL{Day: key})
	}
	return out
}

func groupByDay(trades []model.Trade, account model.Account) map[string]*DayPnL {
	byDay := make(map[string]*DayPnL)
	for _, t := range trades {
		key := utils.DayKey(t.Date, nil)
		d, ok := byDay[key]
		if !ok {
			d = &DayPnL{Day: key}
			byDay[key] = d
		}
		d.PnL += TradePnL(t, account)
		d.Trades++
		switch t.Outcome() {
		case model.TradeResultWin:
			d.Wins++
		case model.TradeResultLoss:
			d.Losses++
		}
	}
	return byDay
}
