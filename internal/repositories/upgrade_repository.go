package repositories

import (
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpgradeRepository owns both village upgrade rows and per-villager skill
// rows. Callers query current state through it instead of caching maps on
// the entity objects.
type UpgradeRepository struct {
	db *gorm.DB
}

func NewUpgradeRepository(db *gorm.DB) *UpgradeRepository {
	return &UpgradeRepository{db: db}
}

func (r *UpgradeRepository) VillageUpgrades(villageID uint) (map[string]int, error) {
	var rows []models.VillageUpgrade
	if err := r.db.Where("village_id = ?", villageID).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to load village upgrades")
	}
	upgrades := make(map[string]int, len(rows))
	for _, row := range rows {
		upgrades[row.UpgradeID] = row.Level
	}
	return upgrades, nil
}

func (r *UpgradeRepository) VillageUpgradeLevel(villageID uint, upgradeID string) (int, error) {
	var row models.VillageUpgrade
	if err := r.db.Where("village_id = ? AND upgrade_id = ?", villageID, upgradeID).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get village upgrade level")
	}
	return row.Level, nil
}

// ApplyVillageUpgrade bumps the upgrade level by one, creating the row on
// first application.
func (r *UpgradeRepository) ApplyVillageUpgrade(villageID uint, upgradeID string) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "village_id"}, {Name: "upgrade_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"level": gorm.Expr("village_upgrades.level + 1"),
		}),
	}).Create(&models.VillageUpgrade{
		VillageID: villageID,
		UpgradeID: upgradeID,
		Level:     1,
	}).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to apply village upgrade")
	}
	return nil
}

func (r *UpgradeRepository) VillagerSkills(villagerID uint) (map[string]int, error) {
	var rows []models.VillagerSkill
	if err := r.db.Where("villager_id = ?", villagerID).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to load villager skills")
	}
	skills := make(map[string]int, len(rows))
	for _, row := range rows {
		skills[row.SkillID] = row.Level
	}
	return skills, nil
}

func (r *UpgradeRepository) VillagerSkillLevel(villagerID uint, skillID string) (int, error) {
	var row models.VillagerSkill
	if err := r.db.Where("villager_id = ? AND skill_id = ?", villagerID, skillID).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get villager skill level")
	}
	return row.Level, nil
}

func (r *UpgradeRepository) ApplyVillagerSkill(villagerID uint, skillID string) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "villager_id"}, {Name: "skill_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"level": gorm.Expr("villager_skills.level + 1"),
		}),
	}).Create(&models.VillagerSkill{
		VillagerID: villagerID,
		SkillID:    skillID,
		Level:      1,
	}).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to apply villager skill")
	}
	return nil
}

// SetVillagerSkill writes an absolute skill level; used by the legacy
// transformation when seeding a replacement worker.
func (r *UpgradeRepository) SetVillagerSkill(villagerID uint, skillID string, level int) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "villager_id"}, {Name: "skill_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"level": level,
		}),
	}).Create(&models.VillagerSkill{
		VillagerID: villagerID,
		SkillID:    skillID,
		Level:      level,
	}).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to set villager skill")
	}
	return nil
}
