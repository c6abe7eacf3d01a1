package config

import (
	"fmt"
	"os"
	"time"

	"github.com/villageworks/villagecraft/internal/economy"
	"github.com/villageworks/villagecraft/pkg/logger"
	"gopkg.in/yaml.v3"
)

// GameConfig is the balance document: professions, production chains,
// upgrades, level thresholds and visitor tuning. It is loaded once at
// startup and read-only afterwards; all validation happens here so the
// schedulers and services never see malformed data.
type GameConfig struct {
	Village         VillageConfig               `yaml:"village"`
	Villager        VillagerConfig              `yaml:"villager"`
	Professions     map[string]ProfessionConfig `yaml:"professions"`
	Chains          []ChainConfig               `yaml:"chains"`
	VillageUpgrades map[string]UpgradeConfig    `yaml:"village_upgrades"`
	Visitors        VisitorConfig               `yaml:"visitors"`
	Legacy          LegacyConfig                `yaml:"legacy"`
	Payment         PaymentConfig               `yaml:"payment"`
}

type VillageConfig struct {
	MaxLevel                  int   `yaml:"max_level"`
	BaseExpPerLevel           int64 `yaml:"base_exp_per_level"`
	BaseVillagerLimit         int   `yaml:"base_villager_limit"`
	BaseWarehouseCapacity     int64 `yaml:"base_warehouse_capacity"`
	WarehouseCapacityPerLevel int64 `yaml:"warehouse_capacity_per_level"`
}

type VillagerConfig struct {
	BaseExpPerLevel     int64   `yaml:"base_exp_per_level"`
	WorkPollSeconds     int     `yaml:"work_poll_seconds"`
	WorkIntervalSeconds int     `yaml:"work_interval_seconds"`
	WorkExperience      int64   `yaml:"work_experience"`
	Range               float64 `yaml:"range"`
}

type ProfessionConfig struct {
	WorkItems           []string               `yaml:"work_items"`
	BaseAmount          int64                  `yaml:"base_amount"`
	Probability         float64                `yaml:"probability"`
	WorkIntervalSeconds int                    `yaml:"work_interval_seconds"`
	Range               float64                `yaml:"range"`
	RecruitCosts        []economy.CostEntry    `yaml:"recruit_costs"`
	Skills              map[string]SkillConfig `yaml:"skills"`
}

// Skill effects understood by the scheduler.
const (
	SkillEffectOutputBonus = "output_bonus"
	SkillEffectRangeBonus  = "range_bonus"
)

type SkillConfig struct {
	Name     string              `yaml:"name"`
	Effect   string              `yaml:"effect"`
	PerLevel float64             `yaml:"per_level"`
	MaxLevel int                 `yaml:"max_level"`
	Costs    []economy.CostEntry `yaml:"costs"`
}

type ChainConfig struct {
	Name    string      `yaml:"name"`
	Enabled bool        `yaml:"enabled"`
	Steps   []ChainStep `yaml:"steps"`
}

type ChainStep struct {
	Profession string `yaml:"profession"`
	Produces   string `yaml:"produces,omitempty"`
	Consumes   string `yaml:"consumes,omitempty"`
	Ratio      int64  `yaml:"ratio,omitempty"`
}

// ProducerStep returns the first step where the given profession produces
// something, or nil.
func (c *ChainConfig) ProducerStep(profession string) *ChainStep {
	for i := range c.Steps {
		s := &c.Steps[i]
		if s.Profession == profession && s.Produces != "" {
			return s
		}
	}
	return nil
}

// ConsumerStep returns the first step with a non-empty consumed item, or nil.
func (c *ChainConfig) ConsumerStep() *ChainStep {
	for i := range c.Steps {
		if c.Steps[i].Consumes != "" {
			return &c.Steps[i]
		}
	}
	return nil
}

type UpgradeConfig struct {
	Name     string              `yaml:"name"`
	MaxLevel int                 `yaml:"max_level"`
	Costs    []economy.CostEntry `yaml:"costs"`
}

type VisitorConfig struct {
	Enabled                bool                         `yaml:"enabled"`
	CheckIntervalMinutes   int                          `yaml:"check_interval_minutes"`
	CleanupIntervalMinutes int                          `yaml:"cleanup_interval_minutes"`
	LifetimeMinutes        int                          `yaml:"lifetime_minutes"`
	ProsperityThreshold    int64                        `yaml:"prosperity_threshold"`
	SpawnProbability       float64                      `yaml:"spawn_probability"`
	Types                  map[string]VisitorTypeConfig `yaml:"types"`
	Deals                  []DealConfig                 `yaml:"deals"`
}

type VisitorTypeConfig struct {
	Enabled bool `yaml:"enabled"`
}

type DealConfig struct {
	Cost         economy.CostEntry `yaml:"cost"`
	RewardItem   string            `yaml:"reward_item"`
	RewardAmount int64             `yaml:"reward_amount"`
}

type LegacyConfig struct {
	Enabled        bool `yaml:"enabled"`
	MinLevel       int  `yaml:"min_level"`
	InheritPercent int  `yaml:"inherit_percent"`
}

// PaymentConfig selects how the gateway treats cost entries whose backend is
// not installed. The safe default is fail closed: such entries are
// unaffordable. Setting skip_missing_backends restores the lenient behavior
// where absent optional integrations are ignored.
type PaymentConfig struct {
	SkipMissingBackends bool `yaml:"skip_missing_backends"`
}

// LoadGameConfig reads and validates the YAML balance document.
func LoadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}

	cfg := &GameConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *GameConfig) applyDefaults() {
	if c.Village.MaxLevel == 0 {
		c.Village.MaxLevel = 5
	}
	if c.Village.BaseExpPerLevel == 0 {
		c.Village.BaseExpPerLevel = 200
	}
	if c.Village.BaseVillagerLimit == 0 {
		c.Village.BaseVillagerLimit = 3
	}
	if c.Village.BaseWarehouseCapacity == 0 {
		c.Village.BaseWarehouseCapacity = 50
	}
	if c.Village.WarehouseCapacityPerLevel == 0 {
		c.Village.WarehouseCapacityPerLevel = 25
	}
	if c.Villager.BaseExpPerLevel == 0 {
		c.Villager.BaseExpPerLevel = 100
	}
	if c.Villager.WorkPollSeconds == 0 {
		c.Villager.WorkPollSeconds = 5
	}
	if c.Villager.WorkIntervalSeconds == 0 {
		c.Villager.WorkIntervalSeconds = 120
	}
	if c.Villager.WorkExperience == 0 {
		c.Villager.WorkExperience = 1
	}
	if c.Villager.Range == 0 {
		c.Villager.Range = 32
	}
	if c.Visitors.CheckIntervalMinutes == 0 {
		c.Visitors.CheckIntervalMinutes = 20
	}
	if c.Visitors.CleanupIntervalMinutes == 0 {
		c.Visitors.CleanupIntervalMinutes = 5
	}
	if c.Visitors.LifetimeMinutes == 0 {
		c.Visitors.LifetimeMinutes = 30
	}
	if c.Visitors.ProsperityThreshold == 0 {
		c.Visitors.ProsperityThreshold = 100
	}
	if c.Legacy.InheritPercent == 0 {
		c.Legacy.InheritPercent = 50
	}
	if c.Legacy.MinLevel == 0 {
		c.Legacy.MinLevel = 5
	}
	for ci := range c.Chains {
		for si := range c.Chains[ci].Steps {
			if c.Chains[ci].Steps[si].Ratio == 0 {
				c.Chains[ci].Steps[si].Ratio = 1
			}
		}
	}
}

func (c *GameConfig) Validate() error {
	// A non-positive threshold would make the level rollover loops spin
	// forever.
	if c.Village.BaseExpPerLevel <= 0 {
		return fmt.Errorf("village: base_exp_per_level must be positive, got %d", c.Village.BaseExpPerLevel)
	}
	if c.Villager.BaseExpPerLevel <= 0 {
		return fmt.Errorf("villager: base_exp_per_level must be positive, got %d", c.Villager.BaseExpPerLevel)
	}

	for name, prof := range c.Professions {
		if prof.Probability < 0 || prof.Probability > 1 {
			return fmt.Errorf("profession %s: probability must be in [0,1], got %v", name, prof.Probability)
		}
		if prof.BaseAmount < 0 {
			return fmt.Errorf("profession %s: base_amount must be >= 0", name)
		}
		if len(prof.WorkItems) == 0 {
			// Degrades to a no-op producer rather than failing the load.
			logger.Warn("profession has no work items and will never produce", "profession", name)
		}
		if err := economy.ValidateCosts(prof.RecruitCosts); err != nil {
			return fmt.Errorf("profession %s recruit costs: %w", name, err)
		}
		for skillID, skill := range prof.Skills {
			if skill.Effect != SkillEffectOutputBonus && skill.Effect != SkillEffectRangeBonus {
				return fmt.Errorf("profession %s skill %s: unknown effect %q", name, skillID, skill.Effect)
			}
			if err := economy.ValidateCosts(skill.Costs); err != nil {
				return fmt.Errorf("profession %s skill %s costs: %w", name, skillID, err)
			}
		}
	}

	for _, chain := range c.Chains {
		if chain.Name == "" {
			return fmt.Errorf("chain without a name")
		}
		for i, step := range chain.Steps {
			if step.Profession == "" {
				return fmt.Errorf("chain %s step %d: profession is required", chain.Name, i)
			}
			if step.Ratio < 1 {
				return fmt.Errorf("chain %s step %d: ratio must be >= 1, got %d", chain.Name, i, step.Ratio)
			}
		}
	}

	for id, up := range c.VillageUpgrades {
		if up.MaxLevel < 1 {
			return fmt.Errorf("village upgrade %s: max_level must be >= 1", id)
		}
		if err := economy.ValidateCosts(up.Costs); err != nil {
			return fmt.Errorf("village upgrade %s costs: %w", id, err)
		}
	}

	if c.Visitors.SpawnProbability < 0 || c.Visitors.SpawnProbability > 1 {
		return fmt.Errorf("visitors: spawn_probability must be in [0,1], got %v", c.Visitors.SpawnProbability)
	}
	for _, deal := range c.Visitors.Deals {
		if err := deal.Cost.Validate(); err != nil {
			return fmt.Errorf("visitor deal: %w", err)
		}
		if deal.RewardItem == "" || deal.RewardAmount <= 0 {
			return fmt.Errorf("visitor deal: reward_item and a positive reward_amount are required")
		}
	}

	if c.Legacy.InheritPercent < 0 || c.Legacy.InheritPercent > 100 {
		return fmt.Errorf("legacy: inherit_percent must be in [0,100], got %d", c.Legacy.InheritPercent)
	}

	return nil
}

// Profession returns the configuration for a profession, reporting whether
// it exists. Professions are an open set driven purely by configuration.
func (c *GameConfig) Profession(name string) (ProfessionConfig, bool) {
	prof, ok := c.Professions[name]
	return prof, ok
}

// WorkInterval is the per-worker production interval for a profession,
// falling back to the global default.
func (c *GameConfig) WorkInterval(profession string) time.Duration {
	if prof, ok := c.Professions[profession]; ok && prof.WorkIntervalSeconds > 0 {
		return time.Duration(prof.WorkIntervalSeconds) * time.Second
	}
	return time.Duration(c.Villager.WorkIntervalSeconds) * time.Second
}

// WorkRange is the base interaction range for a profession, before skill
// bonuses.
func (c *GameConfig) WorkRange(profession string) float64 {
	if prof, ok := c.Professions[profession]; ok && prof.Range > 0 {
		return prof.Range
	}
	return c.Villager.Range
}

func (c *GameConfig) WorkPollInterval() time.Duration {
	return time.Duration(c.Villager.WorkPollSeconds) * time.Second
}

func (c *GameConfig) VisitorCheckInterval() time.Duration {
	return time.Duration(c.Visitors.CheckIntervalMinutes) * time.Minute
}

func (c *GameConfig) VisitorCleanupInterval() time.Duration {
	return time.Duration(c.Visitors.CleanupIntervalMinutes) * time.Minute
}

func (c *GameConfig) VisitorLifetime() time.Duration {
	return time.Duration(c.Visitors.LifetimeMinutes) * time.Minute
}

// VillageLevelThreshold is the experience needed to move from the given
// level to the next one.
func (c *GameConfig) VillageLevelThreshold(level int) int64 {
	return int64(level) * c.Village.BaseExpPerLevel
}

// VillagerLevelThreshold is the experience a worker needs to move from the
// given level to the next one.
func (c *GameConfig) VillagerLevelThreshold(level int) int64 {
	return int64(level) * c.Villager.BaseExpPerLevel
}
