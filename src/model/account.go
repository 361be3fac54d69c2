package model

import "time"

// Account is a trading account the user logs trades against.
// Exactly one account per user is active at a time.
type Account struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Name   string `gorm:"size:100" json:"name"`

	// StartingBalance is the base of every risk amount, never CurrentBalance.
	StartingBalance float64 `gorm:"not null;default:0" json:"starting_balance"`
	// CurrentBalance is a derived cache, only written by the balance syncer.
	CurrentBalance float64  `gorm:"not null;default:0" json:"current_balance"`
	RiskPerTrade   *float64 `gorm:"column:risk_per_trade" json:"risk_per_trade,omitempty"`

	IsActive  bool      `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
