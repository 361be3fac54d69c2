package model

import (
	"strings"
	"time"
)

type TradeResult string

const (
	TradeResultWin       TradeResult = "Win"
	TradeResultLoss      TradeResult = "Loss"
	TradeResultBreakeven TradeResult = "Breakeven"
)

const (
	TradeSideLong  = "LONG"
	TradeSideShort = "SHORT"
)

const (
	SessionAsia    = "Asia"
	SessionLondon  = "London"
	SessionNYOpen  = "NY Open"
	SessionNYClose = "NY Close"
)

// Trade is a single journal entry logged by the user.
// Date is when the trade happened; CreatedAt is when the row was written.
type Trade struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	AccountID uint      `gorm:"index" json:"account_id"`
	Date      time.Time `gorm:"index;not null" json:"date"`
	Session   string    `gorm:"size:20" json:"session"`
	Symbol    string    `gorm:"size:30" json:"symbol,omitempty"`
	Side      string    `gorm:"size:10" json:"side,omitempty"`
	Result    string    `gorm:"size:20;not null" json:"result"`

	RR             *float64 `gorm:"column:rr" json:"rr,omitempty"`
	RiskPercentage *float64 `gorm:"column:risk_percentage" json:"risk_percentage,omitempty"`
	PnLDollar      *float64 `gorm:"column:pnl_dollar" json:"pnl_dollar,omitempty"`

	Notes    string  `gorm:"type:text" json:"notes,omitempty"`
	ShareID  *string `gorm:"size:36;uniqueIndex" json:"share_id,omitempty"`
	IsPublic bool    `gorm:"not null;default:false" json:"is_public"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Trade) TableName() string {
	return "trades"
}

// ParseTradeResult maps a stored result onto its canonical value.
// The second return value is false for anything that is not win, loss or breakeven.
func ParseTradeResult(s string) (TradeResult, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "win":
		return TradeResultWin, true
	case "loss":
		return TradeResultLoss, true
	case "breakeven":
		return TradeResultBreakeven, true
	default:
		return "", false
	}
}

// Outcome returns the canonical result, empty when unrecognized.
func (t Trade) Outcome() TradeResult {
	r, _ := ParseTradeResult(t.Result)
	return r
}

// HasPnLOverride reports whether the user recorded an exact dollar result.
func (t Trade) HasPnLOverride() bool {
	return t.PnLDollar != nil
}
