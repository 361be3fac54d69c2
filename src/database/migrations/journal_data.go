package migrations

import (
	"fmt"
	"strings"

	"tradejournal/src/model"

	"gorm.io/gorm"
)

// normalizeTradeResults rewrites results such as "win" or " LOSS" to their
// canonical casing so that SQL-side filters agree with the in-memory engine.
func normalizeTradeResults(db *gorm.DB) error {
	canonical := []model.TradeResult{
		model.TradeResultWin,
		model.TradeResultLoss,
		model.TradeResultBreakeven,
	}

	for _, r := range canonical {
		res := db.Model(&model.Trade{}).
			Where("LOWER(TRIM(result)) = ? AND result <> ?", strings.ToLower(string(r)), string(r)).
			Update("result", string(r))
		if res.Error != nil {
			return fmt.Errorf("normalize %s results: %w", r, res.Error)
		}
	}

	return nil
}

// keepSingleActiveAccount resolves users that ended up with several active
// accounts: the most recently updated one stays active.
func keepSingleActiveAccount(db *gorm.DB) error {
	var userIDs []uint
	if err := db.Model(&model.Account{}).
		Where("is_active = ?", true).
		Group("user_id").
		Having("COUNT(*) > 1").
		Pluck("user_id", &userIDs).Error; err != nil {
		return fmt.Errorf("find users with several active accounts: %w", err)
	}

	for _, userID := range userIDs {
		var keep model.Account
		if err := db.
			Where("user_id = ? AND is_active = ?", userID, true).
			Order("updated_at DESC, id DESC").
			First(&keep).Error; err != nil {
			return fmt.Errorf("pick active account for user %d: %w", userID, err)
		}

		if err := db.Model(&model.Account{}).
			Where("user_id = ? AND id <> ?", userID, keep.ID).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("deactivate accounts for user %d: %w", userID, err)
		}
	}

	return nil
}
