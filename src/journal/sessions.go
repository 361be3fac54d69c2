package journal

import (
	"sort"
	"strings"

	"tradejournal/src/model"
)

const UnassignedSession = "Unassigned"

// SessionStats summarizes the trades logged under one session label.
type SessionStats struct {
	Session    string  `json:"session"`
	Trades     int     `json:"trades"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Breakevens int     `json:"breakevens"`
	WinRate    float64 `json:"win_rate"`
	PnL        float64 `json:"pnl"`
}

var sessionOrder = map[string]int{
	model.SessionAsia:    0,
	model.SessionLondon:  1,
	model.SessionNYOpen:  2,
	model.SessionNYClose: 3,
}

// BreakdownBySession groups trades by their session label. Known sessions come
// first in trading-day order, then any other label alphabetically.
func BreakdownBySession(trades []model.Trade, account model.Account) []SessionStats {
	bySession := make(map[string]*SessionStats)

	for _, t := range trades {
		label := strings.TrimSpace(t.Session)
		if label == "" {
			label = UnassignedSession
		}

		s, ok := bySession[label]
		if !ok {
			s = &SessionStats{Session: label}
			bySession[label] = s
		}

		s.Trades++
		s.PnL += TradePnL(t, account)
		switch t.Outcome() {
		case model.TradeResultWin:
			s.Wins++
		case model.TradeResultLoss:
			s.Losses++
		case model.TradeResultBreakeven:
			s.Breakevens++
		}
	}

	out := make([]SessionStats, 0, len(bySession))
	for _, s := range bySession {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		oi, iKnown := sessionOrder[out[i].Session]
		oj, jKnown := sessionOrder[out[j].Session]
		switch {
		case iKnown && jKnown:
			return oi < oj
		case iKnown != jKnown:
			return iKnown
		default:
			return out[i].Session < out[j].Session
		}
	})

	return out
}
