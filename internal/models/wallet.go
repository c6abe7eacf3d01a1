package models

import (
	"time"
)

// PlayerWallet holds a player's currency and point balances. Rows are
// created lazily on first use.
type PlayerWallet struct {
	ID        uint      `gorm:"primaryKey"`
	PlayerID  string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Coins     int64     `gorm:"default:0;not null"`
	Points    int64     `gorm:"default:0;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// WalletTransaction is the audit row written alongside every balance change.
type WalletTransaction struct {
	ID              uint      `gorm:"primaryKey"`
	PlayerID        string    `gorm:"type:varchar(64);not null;index"`
	Balance         string    `gorm:"type:varchar(16);not null"` // coins, points
	Amount          int64     `gorm:"not null"`
	TransactionType string    `gorm:"type:varchar(50);not null;index"`
	Description     string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index"`
}

// Balance kinds
const (
	BalanceCoins  = "coins"
	BalancePoints = "points"
)

// Transaction type constants
const (
	TxTypeRecruit        = "recruit"
	TxTypeVillageUpgrade = "village_upgrade"
	TxTypeSkillUpgrade   = "skill_upgrade"
	TxTypeVisitorDeal    = "visitor_deal"
	TxTypeAdminAdjust    = "admin_adjustment"
	TxTypeGrant          = "grant"
)

func (PlayerWallet) TableName() string {
	return "player_wallets"
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
