package models

import (
	"time"
)

// WarehouseItem is one (village, item type) quantity row. Amount never goes
// negative; a zero amount is a valid resting state.
type WarehouseItem struct {
	ID        uint      `gorm:"primaryKey"`
	VillageID uint      `gorm:"not null;uniqueIndex:idx_warehouse_key"`
	ItemType  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_warehouse_key"`
	Amount    int64     `gorm:"default:0;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// ChainActivity is an append-only audit row written for each half of a
// production-chain transformation.
type ChainActivity struct {
	ID         uint      `gorm:"primaryKey"`
	VillageID  uint      `gorm:"not null;index"`
	ChainName  string    `gorm:"type:varchar(64);not null"`
	StepType   string    `gorm:"type:varchar(16);not null"` // consume, produce
	Profession string    `gorm:"type:varchar(64)"`
	ItemType   string    `gorm:"type:varchar(64);not null"`
	Amount     int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

const (
	ChainStepConsume = "consume"
	ChainStepProduce = "produce"
)

func (WarehouseItem) TableName() string {
	return "warehouse"
}

func (ChainActivity) TableName() string {
	return "chain_activities"
}
