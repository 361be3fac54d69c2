package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

// TradeSearchOptions narrows a trade listing. Nil filters are ignored.
type TradeSearchOptions struct {
	UserID    uint
	AccountID *uint
	Symbol    *string
	Session   *string
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

// TradeRepository handles read/write operations for journal trades.
type TradeRepository struct {
	db     *gorm.DB
	readDB *gorm.DB
}

// NewTradeRepository writes to MainDB and reads from the replica when configured.
func NewTradeRepository() *TradeRepository {
	logger.WithField("component", "TradeRepository").
		Info("Creating new TradeRepository with MainDB")

	return &TradeRepository{
		db:     database.MainDB,
		readDB: database.ReadDB(),
	}
}

// WithDB returns a repository bound to db for both reads and writes.
func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db, readDB: db}
}

// WithReplica returns a repository writing to main and reading from replica.
func (r *TradeRepository) WithReplica(main, replica *gorm.DB) *TradeRepository {
	return &TradeRepository{db: main, readDB: replica}
}

// Search returns trades for the user ordered newest first. It reads from the
// replica when one is configured.
func (r *TradeRepository) Search(ctx context.Context, options TradeSearchOptions) ([]model.Trade, error) {
	return r.search(ctx, r.readDB, options)
}

func (r *TradeRepository) search(ctx context.Context, db *gorm.DB, options TradeSearchOptions) ([]model.Trade, error) {
	query := db.WithContext(ctx).
		Model(&model.Trade{}).
		Where("user_id = ?", options.UserID)

	if options.AccountID != nil {
		query = query.Where("account_id = ?", *options.AccountID)
	}
	if options.Symbol != nil {
		query = query.Where("symbol = ?", *options.Symbol)
	}
	if options.Session != nil {
		query = query.Where("session = ?", *options.Session)
	}
	if options.DateFrom != nil {
		query = query.Where("date >= ?", *options.DateFrom)
	}
	if options.DateTo != nil {
		query = query.Where("date < ?", *options.DateTo)
	}

	query = query.Order("date DESC, id DESC")

	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}
	if options.Offset > 0 {
		query = query.Offset(options.Offset)
	}

	var trades []model.Trade
	if err := query.Find(&trades).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "TradeRepository",
			"op":      "Search",
			"user_id": options.UserID,
		}).WithError(err).Error("Failed to search trades")
		return nil, err
	}

	return trades, nil
}

// ListByAccount returns every trade of one account, newest first.
func (r *TradeRepository) ListByAccount(ctx context.Context, userID, accountID uint) ([]model.Trade, error) {
	return r.Search(ctx, TradeSearchOptions{UserID: userID, AccountID: &accountID})
}

// ListByAccountPrimary is ListByAccount against MainDB. Balance sync runs it
// right after a write, when the replica may not have caught up.
func (r *TradeRepository) ListByAccountPrimary(ctx context.Context, userID, accountID uint) ([]model.Trade, error) {
	return r.search(ctx, r.db, TradeSearchOptions{UserID: userID, AccountID: &accountID})
}

// FindByID returns (nil, nil) when the trade does not exist or belongs to someone else.
func (r *TradeRepository) FindByID(ctx context.Context, userID, id uint) (*model.Trade, error) {
	var trade model.Trade
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&trade).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &trade, nil
}

// FindByShareID returns a publicly shared trade, or (nil, nil).
func (r *TradeRepository) FindByShareID(ctx context.Context, shareID string) (*model.Trade, error) {
	var trade model.Trade
	err := r.readDB.WithContext(ctx).
		Where("share_id = ? AND is_public = ?", shareID, true).
		First(&trade).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &trade, nil
}

// Create inserts a trade; ID and timestamps are filled in.
func (r *TradeRepository) Create(ctx context.Context, trade *model.Trade) error {
	logger.WithFields(map[string]interface{}{
		"repo":       "TradeRepository",
		"op":         "Create",
		"account_id": trade.AccountID,
		"symbol":     trade.Symbol,
		"result":     trade.Result,
	}).Debug("Creating trade")

	if err := r.db.WithContext(ctx).Create(trade).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create trade")
		return err
	}

	return nil
}

// Update saves every field of an existing trade.
func (r *TradeRepository) Update(ctx context.Context, trade *model.Trade) error {
	return r.db.WithContext(ctx).Save(trade).Error
}

// Delete removes a trade owned by userID. Missing rows yield gorm.ErrRecordNotFound.
func (r *TradeRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Trade{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetShareID publishes a trade under shareID.
func (r *TradeRepository) SetShareID(ctx context.Context, userID, id uint, shareID string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Trade{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"share_id":  shareID,
			"is_public": true,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
