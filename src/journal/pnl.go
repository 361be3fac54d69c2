// Package journal derives trading statistics from a flat list of journal
// trades. Everything here is a pure function of its inputs: callers fetch
// trades and accounts, the package never touches storage.
package journal

import (
	"math"

	"tradejournal/src/model"
)

// DefaultRiskPercent applies when neither the trade nor the account carries one.
const DefaultRiskPercent = 1.0

// RiskPercent resolves the percent of starting balance risked on a trade:
// the trade's own risk_percentage, then the account's risk_per_trade, then 1%.
func RiskPercent(trade model.Trade, account model.Account) float64 {
	if trade.RiskPercentage != nil && isFinite(*trade.RiskPercentage) {
		return *trade.RiskPercentage
	}
	if account.RiskPerTrade != nil && isFinite(*account.RiskPerTrade) && *account.RiskPerTrade > 0 {
		return *account.RiskPerTrade
	}
	return DefaultRiskPercent
}

// RiskAmount is the dollar amount at risk, always sized from StartingBalance.
func RiskAmount(trade model.Trade, account model.Account) float64 {
	return account.StartingBalance * RiskPercent(trade, account) / 100
}

// TradePnL returns the signed dollar result of a trade.
// A recorded pnl_dollar always wins. Otherwise a win pays riskAmount*rr
// (rr defaults to 1), a loss costs exactly riskAmount whatever its rr says,
// and anything else is flat.
func TradePnL(trade model.Trade, account model.Account) float64 {
	if trade.PnLDollar != nil {
		return finiteOrZero(*trade.PnLDollar)
	}

	riskAmount := RiskAmount(trade, account)

	switch trade.Outcome() {
	case model.TradeResultWin:
		return riskAmount * rewardMultiple(trade)
	case model.TradeResultLoss:
		return -riskAmount
	default:
		return 0
	}
}

// RMultiple expresses the trade result in units of risk.
func RMultiple(trade model.Trade, account model.Account) float64 {
	if trade.PnLDollar != nil {
		riskAmount := RiskAmount(trade, account)
		if riskAmount <= 0 {
			return 0
		}
		return finiteOrZero(*trade.PnLDollar) / riskAmount
	}

	switch trade.Outcome() {
	case model.TradeResultWin:
		return rewardMultiple(trade)
	case model.TradeResultLoss:
		return -1
	default:
		return 0
	}
}

func rewardMultiple(trade model.Trade) float64 {
	if trade.RR != nil && isFinite(*trade.RR) {
		return *trade.RR
	}
	return 1
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrZero(v float64) float64 {
	if isFinite(v) {
		return v
	}
	return 0
}
