package service

import (
	"context"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/controller"
	"tradejournal/src/journal"
	"tradejournal/src/model"
	"tradejournal/src/session"
)

// normalizeTrade canonicalizes user-entered fields before a write.
func normalizeTrade(trade *model.Trade) {
	trade.Symbol = controller.NormalizeSymbol(trade.Symbol)
	trade.Side = controller.NormalizeSide(trade.Side)
	trade.Session = session.Resolve(trade.Session, trade.Date)
	if result, ok := model.ParseTradeResult(trade.Result); ok {
		trade.Result = string(result)
	}
}

// resolveAccount returns the target account for a write: the given one when
// it belongs to the user, the active one when accountID is zero.
func (s *JournalService) resolveAccount(ctx context.Context, userID, accountID uint) (*model.Account, error) {
	if accountID == 0 {
		return s.ActiveAccount(ctx, userID)
	}
	return s.findAccount(ctx, userID, accountID)
}

func (s *JournalService) CreateTrade(ctx context.Context, userID uint, trade *model.Trade) error {
	if s.writer == nil {
		return ErrReadOnlyStore
	}

	account, err := s.resolveAccount(ctx, userID, trade.AccountID)
	if err != nil {
		return err
	}

	trade.ID = 0
	trade.UserID = userID
	trade.AccountID = account.ID
	trade.ShareID = nil
	trade.IsPublic = false
	normalizeTrade(trade)

	if err := s.writer.Create(ctx, trade); err != nil {
		return err
	}

	s.TradesChanged(ctx, userID, account.ID)
	return nil
}

// UpdateTrade replaces the editable fields of an existing trade. Ownership,
// sharing state and creation time are kept from the stored row.
func (s *JournalService) UpdateTrade(ctx context.Context, userID, tradeID uint, changes model.Trade) (*model.Trade, error) {
	if s.writer == nil {
		return nil, ErrReadOnlyStore
	}

	existing, err := s.writer.FindByID(ctx, userID, tradeID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrTradeNotFound
	}

	previousAccount := existing.AccountID
	targetAccount := previousAccount
	if changes.AccountID != 0 && changes.AccountID != previousAccount {
		account, err := s.findAccount(ctx, userID, changes.AccountID)
		if err != nil {
			return nil, err
		}
		targetAccount = account.ID
	}

	updated := *existing
	updated.AccountID = targetAccount
	updated.Date = changes.Date
	updated.Session = changes.Session
	updated.Symbol = changes.Symbol
	updated.Side = changes.Side
	updated.Result = changes.Result
	updated.RR = changes.RR
	updated.RiskPercentage = changes.RiskPercentage
	updated.PnLDollar = changes.PnLDollar
	updated.Notes = changes.Notes
	normalizeTrade(&updated)

	if err := s.writer.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.TradesChanged(ctx, userID, targetAccount)
	if previousAccount != targetAccount {
		s.TradesChanged(ctx, userID, previousAccount)
	}
	return &updated, nil
}

func (s *JournalService) DeleteTrade(ctx context.Context, userID, tradeID uint) error {
	if s.writer == nil {
		return ErrReadOnlyStore
	}

	existing, err := s.writer.FindByID(ctx, userID, tradeID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrTradeNotFound
	}

	if err := s.writer.Delete(ctx, userID, tradeID); err != nil {
		return err
	}

	s.TradesChanged(ctx, userID, existing.AccountID)
	return nil
}

// ShareTrade publishes a trade and returns its share id. Sharing an already
// public trade returns the existing id.
func (s *JournalService) ShareTrade(ctx context.Context, userID, tradeID uint) (string, error) {
	if s.writer == nil {
		return "", ErrReadOnlyStore
	}

	trade, err := s.writer.FindByID(ctx, userID, tradeID)
	if err != nil {
		return "", err
	}
	if trade == nil {
		return "", ErrTradeNotFound
	}
	if trade.IsPublic && trade.ShareID != nil && *trade.ShareID != "" {
		return *trade.ShareID, nil
	}

	shareID := uuid.NewString()
	if err := s.writer.SetShareID(ctx, userID, tradeID, shareID); err != nil {
		return "", err
	}

	logger.WithFields(map[string]interface{}{
		"service":  "JournalService",
		"op":       "ShareTrade",
		"trade_id": tradeID,
		"share_id": shareID,
	}).Info("Trade shared")

	return shareID, nil
}

// SharedTrade returns the public view of a shared trade with its P&L and R.
func (s *JournalService) SharedTrade(ctx context.Context, shareID string) (*journal.AnnotatedTrade, error) {
	if s.writer == nil {
		return nil, ErrReadOnlyStore
	}
	if _, err := uuid.Parse(shareID); err != nil {
		return nil, ErrTradeNotFound
	}

	trade, err := s.writer.FindByShareID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if trade == nil || !trade.IsPublic {
		return nil, ErrTradeNotFound
	}

	account, err := s.findAccount(ctx, trade.UserID, trade.AccountID)
	if err != nil {
		return nil, err
	}

	annotated := journal.Annotate([]model.Trade{*trade}, *account)[0]
	annotated.UserID = 0
	return &annotated, nil
}

// ActivateAccount switches the user's active account and re-syncs it.
func (s *JournalService) ActivateAccount(ctx context.Context, userID, accountID uint) (*model.Account, error) {
	if s.activator == nil {
		return nil, ErrReadOnlyStore
	}

	account, err := s.findAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if err := s.activator.SetActive(ctx, userID, accountID); err != nil {
		return nil, err
	}
	account.IsActive = true

	s.TradesChanged(ctx, userID, accountID)
	return account, nil
}
