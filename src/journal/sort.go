package journal

import (
	"sort"
	"time"

	"tradejournal/src/model"
)

// SortByDateAsc returns a copy of trades ordered oldest first, ties by ID.
func SortByDateAsc(trades []model.Trade) []model.Trade {
	out := append([]model.Trade(nil), trades...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// SortByDateDesc returns a copy of trades ordered newest first, ties by ID descending.
func SortByDateDesc(trades []model.Trade) []model.Trade {
	out := append([]model.Trade(nil), trades...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// InLocation returns a copy of trades with Date expressed in loc, so that
// calendar-day grouping happens in the user's timezone.
func InLocation(trades []model.Trade, loc *time.Location) []model.Trade {
	out := make([]model.Trade, len(trades))
	for i, t := range trades {
		t.Date = t.Date.In(loc)
		out[i] = t
	}
	return out
}

// AnnotatedTrade is a trade with its derived figures, for table views.
type AnnotatedTrade struct {
	model.Trade
	PnL       float64 `json:"pnl"`
	RMultiple float64 `json:"r_multiple"`
}

func Annotate(trades []model.Trade, account model.Account) []AnnotatedTrade {
	out := make([]AnnotatedTrade, len(trades))
	for i, t := range trades {
		out[i] = AnnotatedTrade{
			Trade:     t,
			PnL:       TradePnL(t, account),
			RMultiple: RMultiple(t, account),
		}
	}
	return out
}
