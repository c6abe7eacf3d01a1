package models

import (
	"time"
)

// Villager is a recruited worker bound to exactly one village for its
// lifetime. EntityID is the handle of the backing game entity; it is kept
// separate from the record identity so a despawn/respawn does not break
// continuity.
type Villager struct {
	ID         uint      `gorm:"primaryKey"`
	VillageID  uint      `gorm:"not null;index"`
	Village    Village   `gorm:"foreignKey:VillageID"`
	EntityID   string    `gorm:"type:varchar(64);index"`
	Name       string    `gorm:"type:varchar(255)"`
	Profession string    `gorm:"type:varchar(64);not null;index"`
	Level      int       `gorm:"default:1;not null"`
	Experience int64     `gorm:"default:0;not null"`
	FollowMode string    `gorm:"type:varchar(16);default:'FREE';not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// VillagerSkill is one (villager, skill) row holding the skill level.
type VillagerSkill struct {
	ID         uint      `gorm:"primaryKey"`
	VillagerID uint      `gorm:"not null;uniqueIndex:idx_villager_skill"`
	SkillID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_villager_skill"`
	Level      int       `gorm:"default:1;not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

const (
	FollowModeFree   = "FREE"
	FollowModeFollow = "FOLLOW"
	FollowModeStay   = "STAY"
)

// NextFollowMode cycles FREE -> FOLLOW -> STAY -> FREE.
func NextFollowMode(mode string) string {
	switch mode {
	case FollowModeFree:
		return FollowModeFollow
	case FollowModeFollow:
		return FollowModeStay
	default:
		return FollowModeFree
	}
}

func (Villager) TableName() string {
	return "villagers"
}

func (VillagerSkill) TableName() string {
	return "villager_skills"
}
