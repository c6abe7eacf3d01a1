package models

import (
	"time"
)

// Visitor is a transient NPC attached to a village. A village has at most
// one active visitor at a time; expired visitors are cleaned up by the
// visitor scheduler.
type Visitor struct {
	ID         uint      `gorm:"primaryKey"`
	VillageID  uint      `gorm:"not null;index"`
	Type       string    `gorm:"type:varchar(32);not null"` // merchant, traveler, festival
	Name       string    `gorm:"type:varchar(255)"`
	EntityID   string    `gorm:"type:varchar(64)"`
	World      string    `gorm:"type:varchar(64)"`
	X          float64   `gorm:"not null"`
	Y          float64   `gorm:"not null"`
	Z          float64   `gorm:"not null"`
	Active     bool      `gorm:"default:true;not null;index"`
	CustomData string    `gorm:"type:text"`
	SpawnedAt  time.Time `gorm:"autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

// VisitorDeal is one offer carried by a visitor: a priced requirement that,
// when accepted, delivers reward items into the village warehouse.
type VisitorDeal struct {
	ID           uint      `gorm:"primaryKey"`
	VisitorID    uint      `gorm:"not null;index"`
	VillageID    uint      `gorm:"not null;index"`
	CostKind     string    `gorm:"type:varchar(16);not null"`
	CostAmount   int64     `gorm:"not null"`
	CostItem     string    `gorm:"type:varchar(64)"`
	RewardItem   string    `gorm:"type:varchar(64);not null"`
	RewardAmount int64     `gorm:"not null"`
	Accepted     bool      `gorm:"default:false;not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

const (
	VisitorTypeMerchant = "merchant"
	VisitorTypeTraveler = "traveler"
	VisitorTypeFestival = "festival"
)

func (Visitor) TableName() string {
	return "visitors"
}

func (VisitorDeal) TableName() string {
	return "visitor_deals"
}
