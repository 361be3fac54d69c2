package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository() *AccountRepository {
	logger.WithField("component", "AccountRepository").
		Info("Creating new AccountRepository with MainDB")

	return &AccountRepository{
		db: database.MainDB,
	}
}

func (r *AccountRepository) WithDB(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// ListByUser returns the user's accounts, active account first.
func (r *AccountRepository) ListByUser(ctx context.Context, userID uint) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_active DESC, id ASC").
		Find(&accounts).Error

	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListAll returns every account; used by the batch balance sync.
func (r *AccountRepository) ListAll(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindByID returns (nil, nil) when the account is missing or not owned by userID.
func (r *AccountRepository) FindByID(ctx context.Context, userID, id uint) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// UpdateFields applies a partial update, e.g. {"current_balance": 10250.5}.
func (r *AccountRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Updates(updates)

	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "AccountRepository",
			"op":         "UpdateFields",
			"account_id": id,
		}).WithError(res.Error).Error("Failed to update account")
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetActive makes accountID the only active account of userID.
func (r *AccountRepository) SetActive(ctx context.Context, userID, accountID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Account{}).
			Where("id = ? AND user_id = ?", accountID, userID).
			Update("is_active", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&model.Account{}).
			Where("user_id = ? AND id <> ?", userID, accountID).
			Update("is_active", false).Error
	})
}
