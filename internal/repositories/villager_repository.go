package repositories

import (
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/pkg/errors"
	"gorm.io/gorm"
)

type VillagerRepository struct {
	db *gorm.DB
}

func NewVillagerRepository(db *gorm.DB) *VillagerRepository {
	return &VillagerRepository{db: db}
}

func (r *VillagerRepository) Create(villager *models.Villager) error {
	if err := r.db.Create(villager).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create villager")
	}
	return nil
}

func (r *VillagerRepository) GetByID(id uint) (*models.Villager, error) {
	var villager models.Villager
	if err := r.db.First(&villager, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.ErrCodeNotFound, "villager not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get villager")
	}
	return &villager, nil
}

// GetByEntity resolves a villager record from its backing entity handle, or
// nil when the entity is not a recruited worker.
func (r *VillagerRepository) GetByEntity(entityID string) (*models.Villager, error) {
	var villager models.Villager
	if err := r.db.Where("entity_id = ?", entityID).First(&villager).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get villager by entity")
	}
	return &villager, nil
}

func (r *VillagerRepository) GetByVillage(villageID uint) ([]models.Villager, error) {
	var villagers []models.Villager
	if err := r.db.Where("village_id = ?", villageID).Order("id").Find(&villagers).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list villagers")
	}
	return villagers, nil
}

// AllIDs lists every worker ID across all villages.
func (r *VillagerRepository) AllIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Villager{}).Pluck("id", &ids).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list villager ids")
	}
	return ids, nil
}

func (r *VillagerRepository) CountByVillage(villageID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Villager{}).Where("village_id = ?", villageID).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to count villagers")
	}
	return count, nil
}

// CountByProfession reports how many workers of a profession a village has;
// the chain engine uses it to decide whether a consumer half is present.
func (r *VillagerRepository) CountByProfession(villageID uint, profession string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Villager{}).
		Where("village_id = ? AND profession = ?", villageID, profession).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to count villagers by profession")
	}
	return count, nil
}

func (r *VillagerRepository) Update(villager *models.Villager) error {
	if err := r.db.Model(&models.Villager{}).Where("id = ?", villager.ID).Updates(map[string]interface{}{
		"entity_id":   villager.EntityID,
		"name":        villager.Name,
		"profession":  villager.Profession,
		"level":       villager.Level,
		"experience":  villager.Experience,
		"follow_mode": villager.FollowMode,
	}).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update villager")
	}
	return nil
}

func (r *VillagerRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("villager_id = ?", id).Delete(&models.VillagerSkill{}).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to delete villager skills")
		}
		if err := tx.Delete(&models.Villager{}, id).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to delete villager")
		}
		return nil
	})
}
