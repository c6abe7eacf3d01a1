package economy

import (
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/internal/repositories"
)

// WalletCurrencyBackend implements CurrencyBackend on top of the player
// wallet table.
type WalletCurrencyBackend struct {
	wallets *repositories.WalletRepository
}

func NewWalletCurrencyBackend(wallets *repositories.WalletRepository) *WalletCurrencyBackend {
	return &WalletCurrencyBackend{wallets: wallets}
}

func (b *WalletCurrencyBackend) HasBalance(playerID string, amount int64) (bool, error) {
	balance, err := b.wallets.Balance(playerID, models.BalanceCoins)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

func (b *WalletCurrencyBackend) Withdraw(playerID string, amount int64, reason string) error {
	return b.wallets.Deduct(playerID, models.BalanceCoins, amount, reason, "")
}

func (b *WalletCurrencyBackend) Deposit(playerID string, amount int64, reason string) error {
	return b.wallets.Credit(playerID, models.BalanceCoins, amount, reason, "")
}

// WalletPointsBackend implements PointsBackend on the same wallet table.
type WalletPointsBackend struct {
	wallets *repositories.WalletRepository
}

func NewWalletPointsBackend(wallets *repositories.WalletRepository) *WalletPointsBackend {
	return &WalletPointsBackend{wallets: wallets}
}

func (b *WalletPointsBackend) HasPoints(playerID string, amount int64) (bool, error) {
	balance, err := b.wallets.Balance(playerID, models.BalancePoints)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

func (b *WalletPointsBackend) TakePoints(playerID string, amount int64, reason string) error {
	return b.wallets.Deduct(playerID, models.BalancePoints, amount, reason, "")
}

func (b *WalletPointsBackend) GivePoints(playerID string, amount int64, reason string) error {
	return b.wallets.Credit(playerID, models.BalancePoints, amount, reason, "")
}
