package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TradePayload is the body of POST /trades and PUT /trades/{tradeID}.
// AccountID zero means the active account.
type TradePayload struct {
	AccountID      uint      `json:"account_id"`
	Date           time.Time `json:"date" validate:"required"`
	Session        string    `json:"session" validate:"max=20"`
	Symbol         string    `json:"symbol" validate:"max=30"`
	Side           string    `json:"side" validate:"omitempty,oneof=LONG SHORT BUY SELL L S"`
	Result         string    `json:"result" validate:"required,oneof=Win Loss Breakeven"`
	RR             *float64  `json:"rr" validate:"omitempty,gte=0,lte=1000"`
	RiskPercentage *float64  `json:"risk_percentage" validate:"omitempty,gt=0,lte=100"`
	PnLDollar      *float64  `json:"pnl_dollar"`
	Notes          string    `json:"notes" validate:"max=10000"`
}

// Validate canonicalizes case-insensitive fields and checks the payload.
func (p *TradePayload) Validate() error {
	p.Side = strings.ToUpper(strings.TrimSpace(p.Side))
	if result, ok := ParseTradeResult(p.Result); ok {
		p.Result = string(result)
	}

	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid trade payload: %w", err)
	}
	return nil
}

func (p TradePayload) ToTrade() Trade {
	return Trade{
		AccountID:      p.AccountID,
		Date:           p.Date,
		Session:        p.Session,
		Symbol:         p.Symbol,
		Side:           p.Side,
		Result:         p.Result,
		RR:             p.RR,
		RiskPercentage: p.RiskPercentage,
		PnLDollar:      p.PnLDollar,
		Notes:          strings.TrimSpace(p.Notes),
	}
}
