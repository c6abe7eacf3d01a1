package services

import (
	"fmt"

	"github.com/villageworks/villagecraft/internal/config"
	"github.com/villageworks/villagecraft/internal/economy"
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/internal/repositories"
	"github.com/villageworks/villagecraft/internal/security"
	"github.com/villageworks/villagecraft/internal/world"
	"github.com/villageworks/villagecraft/pkg/errors"
	"github.com/villageworks/villagecraft/pkg/logger"
)

type VillagerService struct {
	villagers *repositories.VillagerRepository
	villages  *VillageService
	upgrades  *repositories.UpgradeRepository
	gateway   *economy.Gateway
	presenter world.Presenter
	cfg       *config.GameConfig
}

func NewVillagerService(
	villagers *repositories.VillagerRepository,
	villages *VillageService,
	upgrades *repositories.UpgradeRepository,
	gateway *economy.Gateway,
	presenter world.Presenter,
	cfg *config.GameConfig,
) *VillagerService {
	return &VillagerService{
		villagers: villagers,
		villages:  villages,
		upgrades:  upgrades,
		gateway:   gateway,
		presenter: presenter,
		cfg:       cfg,
	}
}

// Recruit hires a new worker into the player's village. The capacity gate
// runs before payment so a full village never charges the player; payment
// runs before the record is created so a failed payment leaves no worker.
func (s *VillagerService) Recruit(playerID, entityID, profession, name string) (*models.Villager, error) {
	village, err := s.villages.GetByOwner(playerID)
	if err != nil {
		return nil, err
	}
	if village == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "you don't have a village yet")
	}

	profCfg, ok := s.cfg.Profession(profession)
	if !ok {
		return nil, errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("unknown profession %q", profession))
	}

	limit, err := s.villages.VillagerLimit(village)
	if err != nil {
		return nil, err
	}
	count, err := s.villagers.CountByVillage(village.ID)
	if err != nil {
		return nil, err
	}
	if count >= int64(limit) {
		return nil, errors.New(errors.ErrCodeCapacityReached, "village is at its worker limit")
	}

	if err := s.gateway.Deduct(playerID, profCfg.RecruitCosts, models.TxTypeRecruit); err != nil {
		return nil, err
	}

	villager := &models.Villager{
		VillageID:  village.ID,
		EntityID:   entityID,
		Name:       security.SanitizeDisplayName(name),
		Profession: profession,
		Level:      1,
		FollowMode: models.FollowModeFree,
	}
	if err := s.villagers.Create(villager); err != nil {
		return nil, err
	}

	if err := s.presenter.SpawnWorker(entityID, villager.Name, profession); err != nil {
		logger.Warn("failed to present recruited worker", "villager", villager.ID, "error", err)
	}
	return villager, nil
}

func (s *VillagerService) Get(villagerID uint) (*models.Villager, error) {
	return s.villagers.GetByID(villagerID)
}

func (s *VillagerService) GetByEntity(entityID string) (*models.Villager, error) {
	return s.villagers.GetByEntity(entityID)
}

func (s *VillagerService) ByVillage(villageID uint) ([]models.Villager, error) {
	return s.villagers.GetByVillage(villageID)
}

// AllIDs lists every worker ID across all villages.
func (s *VillagerService) AllIDs() ([]uint, error) {
	return s.villagers.AllIDs()
}

// Remove deletes the worker record and its skills, then clears the
// presentation entity best-effort.
func (s *VillagerService) Remove(villagerID uint) error {
	villager, err := s.villagers.GetByID(villagerID)
	if err != nil {
		return err
	}
	if err := s.villagers.Delete(villagerID); err != nil {
		return err
	}
	if err := s.presenter.RemoveEntity(villager.EntityID); err != nil {
		logger.Warn("failed to remove worker entity", "villager", villagerID, "error", err)
	}
	return nil
}

// CycleFollowMode advances FREE -> FOLLOW -> STAY -> FREE and returns the
// new mode.
func (s *VillagerService) CycleFollowMode(villagerID uint) (string, error) {
	villager, err := s.villagers.GetByID(villagerID)
	if err != nil {
		return "", err
	}
	villager.FollowMode = models.NextFollowMode(villager.FollowMode)
	if err := s.villagers.Update(villager); err != nil {
		return "", err
	}
	return villager.FollowMode, nil
}

// GrantExperience adds experience and applies worker level-ups; each
// level-up consumes the threshold and the excess rolls over.
func (s *VillagerService) GrantExperience(villager *models.Villager, exp int64) error {
	if exp <= 0 {
		return nil
	}
	before := villager.Level
	villager.Experience += exp
	for {
		threshold := s.cfg.VillagerLevelThreshold(villager.Level)
		if villager.Experience < threshold {
			break
		}
		villager.Experience -= threshold
		villager.Level++
	}
	if err := s.villagers.Update(villager); err != nil {
		return err
	}
	if villager.Level != before {
		label := fmt.Sprintf("%s [Lv.%d]", villager.Name, villager.Level)
		if err := s.presenter.UpdateLabel(villager.EntityID, label); err != nil {
			logger.Warn("failed to update worker label", "villager", villager.ID, "error", err)
		}
	}
	return nil
}

func (s *VillagerService) Skills(villagerID uint) (map[string]int, error) {
	return s.upgrades.VillagerSkills(villagerID)
}

// ApplySkill charges the skill's costs and raises its level by one.
func (s *VillagerService) ApplySkill(playerID string, villagerID uint, skillID string) error {
	villager, err := s.villagers.GetByID(villagerID)
	if err != nil {
		return err
	}

	profCfg, ok := s.cfg.Profession(villager.Profession)
	if !ok {
		return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("unknown profession %q", villager.Profession))
	}
	skill, ok := profCfg.Skills[skillID]
	if !ok {
		return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("unknown skill %q for %s", skillID, villager.Profession))
	}

	current, err := s.upgrades.VillagerSkillLevel(villagerID, skillID)
	if err != nil {
		return err
	}
	if current >= skill.MaxLevel {
		return errors.New(errors.ErrCodeCapacityReached, "skill already at max level")
	}

	if err := s.gateway.Deduct(playerID, skill.Costs, models.TxTypeSkillUpgrade); err != nil {
		return err
	}
	return s.upgrades.ApplyVillagerSkill(villagerID, skillID)
}

// Retire performs the legacy transformation: an elder worker is consumed and
// replaced by a fresh level-1 worker of the same profession that inherits a
// share of the elder's lifetime experience and one legacy skill point.
func (s *VillagerService) Retire(playerID string, villagerID uint, newEntityID string) (*models.Villager, error) {
	if !s.cfg.Legacy.Enabled {
		return nil, errors.New(errors.ErrCodeForbidden, "legacy transformation is disabled")
	}

	elder, err := s.villagers.GetByID(villagerID)
	if err != nil {
		return nil, err
	}
	village, err := s.villages.GetByOwner(playerID)
	if err != nil {
		return nil, err
	}
	if village == nil || village.ID != elder.VillageID {
		return nil, errors.New(errors.ErrCodeForbidden, "that worker is not yours")
	}
	if elder.Level < s.cfg.Legacy.MinLevel {
		return nil, errors.New(errors.ErrCodeValidationFailed,
			fmt.Sprintf("worker must be at least level %d", s.cfg.Legacy.MinLevel))
	}

	legacyLevel, err := s.upgrades.VillagerSkillLevel(villagerID, "legacy")
	if err != nil {
		return nil, err
	}
	inherited := elder.Experience * int64(s.cfg.Legacy.InheritPercent) / 100

	if err := s.villagers.Delete(villagerID); err != nil {
		return nil, err
	}
	if err := s.presenter.RemoveEntity(elder.EntityID); err != nil {
		logger.Warn("failed to remove retiring worker entity", "villager", villagerID, "error", err)
	}

	successor := &models.Villager{
		VillageID:  elder.VillageID,
		EntityID:   newEntityID,
		Name:       elder.Name,
		Profession: elder.Profession,
		Level:      1,
		Experience: inherited,
		FollowMode: models.FollowModeFree,
	}
	if err := s.villagers.Create(successor); err != nil {
		return nil, err
	}
	if err := s.upgrades.SetVillagerSkill(successor.ID, "legacy", legacyLevel+1); err != nil {
		logger.Warn("failed to seed legacy skill", "villager", successor.ID, "error", err)
	}
	if err := s.presenter.SpawnWorker(newEntityID, successor.Name, successor.Profession); err != nil {
		logger.Warn("failed to present successor worker", "villager", successor.ID, "error", err)
	}
	return successor, nil
}
