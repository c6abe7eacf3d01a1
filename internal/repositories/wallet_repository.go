package repositories

import (
	"fmt"

	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository backs the currency and point-balance payment backends.
// Every balance change locks the wallet row, checks sufficiency and writes
// an audit transaction in one database transaction.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetOrCreate returns the player's wallet, creating an empty one on first
// use.
func (r *WalletRepository) GetOrCreate(playerID string) (*models.PlayerWallet, error) {
	var wallet models.PlayerWallet
	err := r.db.Where("player_id = ?", playerID).First(&wallet).Error
	if err == gorm.ErrRecordNotFound {
		wallet = models.PlayerWallet{PlayerID: playerID}
		if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&wallet).Error; err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to create wallet")
		}
		if err := r.db.Where("player_id = ?", playerID).First(&wallet).Error; err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to reload wallet")
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get wallet")
	}
	return &wallet, nil
}

func (r *WalletRepository) Balance(playerID, balance string) (int64, error) {
	wallet, err := r.GetOrCreate(playerID)
	if err != nil {
		return 0, err
	}
	switch balance {
	case models.BalanceCoins:
		return wallet.Coins, nil
	case models.BalancePoints:
		return wallet.Points, nil
	default:
		return 0, errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("unknown balance kind %q", balance))
	}
}

// Deduct removes amount from the named balance with transaction logging.
func (r *WalletRepository) Deduct(playerID, balance string, amount int64, txType, description string) error {
	column, err := balanceColumn(balance)
	if err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var wallet models.PlayerWallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("player_id = ?", playerID).First(&wallet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.ErrCodeInsufficientFunds, "wallet not found")
			}
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to lock wallet")
		}

		current := wallet.Coins
		if balance == models.BalancePoints {
			current = wallet.Points
		}
		if current < amount {
			return errors.New(errors.ErrCodeInsufficientFunds,
				fmt.Sprintf("insufficient %s: have %d, need %d", balance, current, amount))
		}

		if err := tx.Model(&wallet).Update(column, current-amount).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update balance")
		}

		record := &models.WalletTransaction{
			PlayerID:        playerID,
			Balance:         balance,
			Amount:          -amount,
			TransactionType: txType,
			Description:     description,
		}
		if err := tx.Create(record).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create transaction")
		}

		return nil
	})
}

// Credit adds amount to the named balance with transaction logging.
func (r *WalletRepository) Credit(playerID, balance string, amount int64, txType, description string) error {
	column, err := balanceColumn(balance)
	if err != nil {
		return err
	}
	if _, err := r.GetOrCreate(playerID); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PlayerWallet{}).
			Where("player_id = ?", playerID).
			Update(column, gorm.Expr(column+" + ?", amount)).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update balance")
		}

		record := &models.WalletTransaction{
			PlayerID:        playerID,
			Balance:         balance,
			Amount:          amount,
			TransactionType: txType,
			Description:     description,
		}
		if err := tx.Create(record).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create transaction")
		}

		return nil
	})
}

func (r *WalletRepository) History(playerID string, limit int) ([]models.WalletTransaction, error) {
	var transactions []models.WalletTransaction
	if err := r.db.Where("player_id = ?", playerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get transaction history")
	}
	return transactions, nil
}

func balanceColumn(balance string) (string, error) {
	switch balance {
	case models.BalanceCoins:
		return "coins", nil
	case models.BalancePoints:
		return "points", nil
	default:
		return "", errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("unknown balance kind %q", balance))
	}
}
