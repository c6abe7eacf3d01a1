package repositories

import (
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/pkg/errors"
	"gorm.io/gorm"
)

type VillageRepository struct {
	db *gorm.DB
}

func NewVillageRepository(db *gorm.DB) *VillageRepository {
	return &VillageRepository{db: db}
}

func (r *VillageRepository) Create(village *models.Village) error {
	if err := r.db.Create(village).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create village")
	}
	return nil
}

func (r *VillageRepository) GetByID(id uint) (*models.Village, error) {
	var village models.Village
	if err := r.db.First(&village, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.ErrCodeNotFound, "village not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get village")
	}
	return &village, nil
}

// GetByOwner returns the owner's village, or nil if they have none.
func (r *VillageRepository) GetByOwner(ownerID string) (*models.Village, error) {
	var village models.Village
	if err := r.db.Where("owner_id = ?", ownerID).First(&village).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get village by owner")
	}
	return &village, nil
}

func (r *VillageRepository) GetAll() ([]models.Village, error) {
	var villages []models.Village
	if err := r.db.Find(&villages).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list villages")
	}
	return villages, nil
}

func (r *VillageRepository) Update(village *models.Village) error {
	if err := r.db.Model(&models.Village{}).Where("id = ?", village.ID).Updates(map[string]interface{}{
		"name":       village.Name,
		"level":      village.Level,
		"experience": village.Experience,
		"prosperity": village.Prosperity,
	}).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update village")
	}
	return nil
}

// AddExperience atomically increments stored experience without reading
// first, so concurrent grants never lose updates.
func (r *VillageRepository) AddExperience(villageID uint, exp int64) error {
	if err := r.db.Model(&models.Village{}).Where("id = ?", villageID).
		Update("experience", gorm.Expr("experience + ?", exp)).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to add village experience")
	}
	return nil
}

func (r *VillageRepository) AddProsperity(villageID uint, amount int64) error {
	if err := r.db.Model(&models.Village{}).Where("id = ?", villageID).
		Update("prosperity", gorm.Expr("prosperity + ?", amount)).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to add village prosperity")
	}
	return nil
}

// SpendProsperity decrements prosperity only when enough is available.
func (r *VillageRepository) SpendProsperity(villageID uint, amount int64) error {
	res := r.db.Model(&models.Village{}).
		Where("id = ? AND prosperity >= ?", villageID, amount).
		Update("prosperity", gorm.Expr("prosperity - ?", amount))
	if res.Error != nil {
		return errors.Wrap(res.Error, errors.ErrCodeInternalError, "failed to spend prosperity")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.ErrCodeInsufficientFunds, "not enough prosperity")
	}
	return nil
}

func (r *VillageRepository) UpdateLevelAndExperience(villageID uint, level int, exp int64) error {
	if err := r.db.Model(&models.Village{}).Where("id = ?", villageID).Updates(map[string]interface{}{
		"level":      level,
		"experience": exp,
	}).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update village level")
	}
	return nil
}
