package services

import (
	"fmt"

	"github.com/villageworks/villagecraft/internal/config"
	"github.com/villageworks/villagecraft/internal/economy"
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/internal/repositories"
	"github.com/villageworks/villagecraft/internal/security"
	"github.com/villageworks/villagecraft/pkg/errors"
)

type VillageService struct {
	villages  *repositories.VillageRepository
	villagers *repositories.VillagerRepository
	upgrades  *repositories.UpgradeRepository
	gateway   *economy.Gateway
	cfg       *config.GameConfig
}

func NewVillageService(
	villages *repositories.VillageRepository,
	villagers *repositories.VillagerRepository,
	upgrades *repositories.UpgradeRepository,
	gateway *economy.Gateway,
	cfg *config.GameConfig,
) *VillageService {
	return &VillageService{
		villages:  villages,
		villagers: villagers,
		upgrades:  upgrades,
		gateway:   gateway,
		cfg:       cfg,
	}
}

// Create founds the owner's village. Each owner gets at most one.
func (s *VillageService) Create(ownerID, name string) (*models.Village, error) {
	existing, err := s.villages.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New(errors.ErrCodeAlreadyExists, "you already have a village")
	}

	name = security.SanitizeDisplayName(name)
	if !security.ValidateDisplayName(name) {
		return nil, errors.New(errors.ErrCodeValidationFailed, "invalid village name")
	}

	village := &models.Village{
		OwnerID: ownerID,
		Name:    name,
		Level:   1,
	}
	if err := s.villages.Create(village); err != nil {
		return nil, err
	}
	return village, nil
}

func (s *VillageService) Get(villageID uint) (*models.Village, error) {
	return s.villages.GetByID(villageID)
}

// GetByOwner returns nil when the owner has no village.
func (s *VillageService) GetByOwner(ownerID string) (*models.Village, error) {
	return s.villages.GetByOwner(ownerID)
}

// AddExperience grants experience and applies any level-ups it triggers.
// Each level-up consumes the threshold; the excess rolls over instead of
// resetting to zero. Level is capped at the configured maximum.
func (s *VillageService) AddExperience(villageID uint, exp int64) error {
	if exp <= 0 {
		return nil
	}
	if err := s.villages.AddExperience(villageID, exp); err != nil {
		return err
	}

	village, err := s.villages.GetByID(villageID)
	if err != nil {
		return err
	}

	level, remaining := village.Level, village.Experience
	for level < s.cfg.Village.MaxLevel {
		threshold := s.cfg.VillageLevelThreshold(level)
		if remaining < threshold {
			break
		}
		remaining -= threshold
		level++
	}
	if level == village.Level {
		return nil
	}
	return s.villages.UpdateLevelAndExperience(villageID, level, remaining)
}

func (s *VillageService) AddProsperity(villageID uint, amount int64) error {
	if amount <= 0 {
		return nil
	}
	return s.villages.AddProsperity(villageID, amount)
}

func (s *VillageService) SpendProsperity(villageID uint, amount int64) error {
	return s.villages.SpendProsperity(villageID, amount)
}

// VillagerLimit is base + (level-1) + the villager_capacity upgrade level.
func (s *VillageService) VillagerLimit(village *models.Village) (int, error) {
	limit := s.cfg.Village.BaseVillagerLimit + (village.Level - 1)
	upgradeLevel, err := s.upgrades.VillageUpgradeLevel(village.ID, "villager_capacity")
	if err != nil {
		return 0, err
	}
	return limit + upgradeLevel, nil
}

func (s *VillageService) Upgrades(villageID uint) (map[string]int, error) {
	return s.upgrades.VillageUpgrades(villageID)
}

// ApplyUpgrade charges the configured costs and bumps the upgrade level.
// Nothing is applied when payment fails.
func (s *VillageService) ApplyUpgrade(playerID string, villageID uint, upgradeID string) error {
	upgrade, ok := s.cfg.VillageUpgrades[upgradeID]
	if !ok {
		return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("unknown upgrade %q", upgradeID))
	}

	current, err := s.upgrades.VillageUpgradeLevel(villageID, upgradeID)
	if err != nil {
		return err
	}
	if current >= upgrade.MaxLevel {
		return errors.New(errors.ErrCodeCapacityReached, "upgrade already at max level")
	}

	if err := s.gateway.Deduct(playerID, upgrade.Costs, models.TxTypeVillageUpgrade); err != nil {
		return err
	}
	return s.upgrades.ApplyVillageUpgrade(villageID, upgradeID)
}

// UpgradeCostLines renders the priced requirement of an upgrade for display.
func (s *VillageService) UpgradeCostLines(upgradeID string) []string {
	upgrade, ok := s.cfg.VillageUpgrades[upgradeID]
	if !ok {
		return nil
	}
	return economy.Describe(upgrade.Costs)
}
