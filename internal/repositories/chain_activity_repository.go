package repositories

import (
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/pkg/errors"
	"gorm.io/gorm"
)

// ChainActivityRepository is the append-only audit log for production-chain
// transformations.
type ChainActivityRepository struct {
	db *gorm.DB
}

func NewChainActivityRepository(db *gorm.DB) *ChainActivityRepository {
	return &ChainActivityRepository{db: db}
}

func (r *ChainActivityRepository) Record(activity *models.ChainActivity) error {
	if err := r.db.Create(activity).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to record chain activity")
	}
	return nil
}

func (r *ChainActivityRepository) RecentByVillage(villageID uint, limit int) ([]models.ChainActivity, error) {
	var activities []models.ChainActivity
	if err := r.db.Where("village_id = ?", villageID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list chain activities")
	}
	return activities, nil
}
