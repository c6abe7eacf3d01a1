package models

import (
	"time"
)

// Village is the top-level per-owner aggregate. Level is derived from
// Experience: it only moves up when experience crosses the configured
// per-level threshold, and the excess rolls over.
type Village struct {
	ID         uint      `gorm:"primaryKey"`
	OwnerID    string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Level      int       `gorm:"default:1;not null"`
	Experience int64     `gorm:"default:0;not null"`
	Prosperity int64     `gorm:"default:0;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// VillageUpgrade is one (village, upgrade) row; Level counts how many times
// the upgrade has been applied.
type VillageUpgrade struct {
	ID        uint      `gorm:"primaryKey"`
	VillageID uint      `gorm:"not null;uniqueIndex:idx_village_upgrade"`
	UpgradeID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_village_upgrade"`
	Level     int       `gorm:"default:1;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Village) TableName() string {
	return "villages"
}

func (VillageUpgrade) TableName() string {
	return "village_upgrades"
}
