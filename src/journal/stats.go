package journal

import (
	"encoding/json"
	"math"
	"strconv"

	"tradejournal/src/model"
	"tradejournal/src/utils"
)

// Ratio is a float that may legitimately be +Inf (profit factor without losses).
// It encodes +Inf as the JSON string "Infinity".
type Ratio float64

const infinityLiteral = `"Infinity"`

func (r Ratio) IsInf() bool {
	return math.IsInf(float64(r), 1)
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.IsInf() {
		return []byte(infinityLiteral), nil
	}
	return []byte(strconv.FormatFloat(finiteOrZero(float64(r)), 'f', -1, 64)), nil
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == infinityLiteral {
		*r = Ratio(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

// TradeStats is the aggregate view over a set of trades of one account.
type TradeStats struct {
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Breakevens  int     `json:"breakevens"`
	WinRate     float64 `json:"win_rate"`

	// R averages skip trades carrying a pnl_dollar override,
	// while TotalPnL and ProfitFactor include them.
	AvgWinRR  float64 `json:"avg_win_rr"`
	AvgLossRR float64 `json:"avg_loss_rr"`
	TopWinRR  float64 `json:"top_win_rr"`
	TopLossRR float64 `json:"top_loss_rr"`

	ProfitFactor Ratio   `json:"profit_factor"`
	TotalPnL     float64 `json:"total_pnl"`

	CurrentWinStreak  int `json:"current_win_streak"`
	CurrentLossStreak int `json:"current_loss_streak"`

	BestDayProfit float64 `json:"best_day_profit"`
}

// ComputeStats reduces trades into TradeStats.
//
// Streaks are the run at the start of the slice: consecutive trades sharing
// the first trade's result, stopped by the first opposite or breakeven
// result. Pass trades newest-first to get the current streak. A leading
// breakeven or unknown result yields no streak.
//
// Days for BestDayProfit are the calendar days of Trade.Date in its own
// location; see InLocation.
//
// A nil account yields zero stats.
func ComputeStats(trades []model.Trade, account *model.Account) TradeStats {
	var stats TradeStats
	if account == nil {
		return stats
	}

	stats.TotalTrades = len(trades)
	stats.TopLossRR = 1

	var (
		winRRSum, winPnL, lossPnL float64
		winRRCount, lossRRCount   int
		dayTotals                 = make(map[string]float64)
	)

	for _, t := range trades {
		pnl := TradePnL(t, *account)
		stats.TotalPnL += pnl
		dayTotals[utils.DayKey(t.Date, nil)] += pnl

		switch t.Outcome() {
		case model.TradeResultWin:
			stats.Wins++
			winPnL += pnl

			if !t.HasPnLOverride() && t.RR != nil && isFinite(*t.RR) {
				winRRSum += *t.RR
				winRRCount++
				if *t.RR > stats.TopWinRR {
					stats.TopWinRR = *t.RR
				}
			}
		case model.TradeResultLoss:
			stats.Losses++
			lossPnL += pnl

			if !t.HasPnLOverride() {
				lossRRCount++
			}
		default:
			if t.Outcome() == model.TradeResultBreakeven {
				stats.Breakevens++
			}
		}
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.TotalTrades) * 100
	}
	if winRRCount > 0 {
		stats.AvgWinRR = winRRSum / float64(winRRCount)
	}
	if lossRRCount > 0 {
		// every loss is exactly 1R
		stats.AvgLossRR = 1
	}

	stats.CurrentWinStreak, stats.CurrentLossStreak = headStreak(trades)
	stats.ProfitFactor = profitFactor(winPnL, math.Abs(lossPnL))
	stats.BestDayProfit = bestDay(dayTotals)

	return stats
}

func headStreak(trades []model.Trade) (wins, losses int) {
	if len(trades) == 0 {
		return 0, 0
	}
	head := trades[0].Outcome()
	if head != model.TradeResultWin && head != model.TradeResultLoss {
		return 0, 0
	}

	run := 0
	for _, t := range trades {
		if t.Outcome() != head {
			break
		}
		run++
	}

	if head == model.TradeResultWin {
		return run, 0
	}
	return 0, run
}

func profitFactor(grossProfit, grossLoss float64) Ratio {
	switch {
	case grossLoss > 0:
		return Ratio(grossProfit / grossLoss)
	case grossProfit > 0:
		return Ratio(math.Inf(1))
	default:
		return 0
	}
}

func bestDay(dayTotals map[string]float64) float64 {
	if len(dayTotals) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, total := range dayTotals {
		if total > best {
			best = total
		}
	}
	return best
}
