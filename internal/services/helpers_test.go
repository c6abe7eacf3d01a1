package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/villageworks/villagecraft/internal/config"
	"github.com/villageworks/villagecraft/internal/economy"
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/pkg/errors"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Village{},
		&models.VillageUpgrade{},
		&models.Villager{},
		&models.VillagerSkill{},
		&models.WarehouseItem{},
		&models.ChainActivity{},
		&models.Visitor{},
		&models.VisitorDeal{},
		&models.PlayerWallet{},
		&models.WalletTransaction{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func testGameConfig() *config.GameConfig {
	return &config.GameConfig{
		Village: config.VillageConfig{
			MaxLevel:                  5,
			BaseExpPerLevel:           200,
			BaseVillagerLimit:         3,
			BaseWarehouseCapacity:     50,
			WarehouseCapacityPerLevel: 25,
		},
		Villager: config.VillagerConfig{
			BaseExpPerLevel:     100,
			WorkPollSeconds:     5,
			WorkIntervalSeconds: 120,
			WorkExperience:      1,
			Range:               32,
		},
		Professions: map[string]config.ProfessionConfig{
			"farmer": {
				WorkItems:   []string{"WHEAT"},
				BaseAmount:  2,
				Probability: 1.0,
				RecruitCosts: []economy.CostEntry{
					{Kind: economy.CostCurrency, Amount: 50},
				},
				Skills: map[string]config.SkillConfig{
					"harvest": {
						Name:     "Harvest Mastery",
						Effect:   config.SkillEffectOutputBonus,
						PerLevel: 1,
						MaxLevel: 3,
						Costs:    []economy.CostEntry{{Kind: economy.CostCurrency, Amount: 100}},
					},
				},
			},
			"baker": {
				RecruitCosts: []economy.CostEntry{
					{Kind: economy.CostCurrency, Amount: 60},
				},
			},
		},
		Chains: []config.ChainConfig{
			{
				Name:    "bread",
				Enabled: true,
				Steps: []config.ChainStep{
					{Profession: "farmer", Produces: "WHEAT"},
					{Profession: "baker", Consumes: "WHEAT", Produces: "BREAD", Ratio: 4},
				},
			},
		},
		VillageUpgrades: map[string]config.UpgradeConfig{
			"warehouse_expansion": {
				Name:     "Warehouse Expansion",
				MaxLevel: 5,
				Costs:    []economy.CostEntry{{Kind: economy.CostCurrency, Amount: 200}},
			},
			"villager_capacity": {
				Name:     "Housing",
				MaxLevel: 5,
				Costs:    []economy.CostEntry{{Kind: economy.CostCurrency, Amount: 150}},
			},
		},
		Visitors: config.VisitorConfig{
			Enabled:             true,
			LifetimeMinutes:     30,
			ProsperityThreshold: 100,
			SpawnProbability:    1.0,
			Types: map[string]config.VisitorTypeConfig{
				"merchant": {Enabled: true},
			},
			Deals: []config.DealConfig{
				{
					Cost:         economy.CostEntry{Kind: economy.CostCurrency, Amount: 40},
					RewardItem:   "EMERALD",
					RewardAmount: 2,
				},
			},
		},
		Legacy: config.LegacyConfig{
			Enabled:        true,
			MinLevel:       5,
			InheritPercent: 50,
		},
	}
}

// memCurrency is an in-memory currency backend for service tests. The
// database-backed wallet has its own coverage.
type memCurrency struct {
	balances map[string]int64
}

func newMemCurrency(balances map[string]int64) *memCurrency {
	if balances == nil {
		balances = make(map[string]int64)
	}
	return &memCurrency{balances: balances}
}

func (m *memCurrency) HasBalance(playerID string, amount int64) (bool, error) {
	return m.balances[playerID] >= amount, nil
}

func (m *memCurrency) Withdraw(playerID string, amount int64, reason string) error {
	if m.balances[playerID] < amount {
		return errors.New(errors.ErrCodeInsufficientFunds, "insufficient balance")
	}
	m.balances[playerID] -= amount
	return nil
}

func (m *memCurrency) Deposit(playerID string, amount int64, reason string) error {
	m.balances[playerID] += amount
	return nil
}

func newTestGateway(balances map[string]int64) (*economy.Gateway, *memCurrency) {
	currency := newMemCurrency(balances)
	return economy.NewGateway(currency, nil, nil, true), currency
}

// memSink is an in-memory item destination with a fixed capacity.
type memSink struct {
	capacity int64
	held     map[string]int64
}

func newMemSink(capacity int64) *memSink {
	return &memSink{capacity: capacity, held: make(map[string]int64)}
}

func (s *memSink) total() int64 {
	var sum int64
	for _, n := range s.held {
		sum += n
	}
	return sum
}

func (s *memSink) CanAccept(itemType string, amount int64) bool {
	return s.total()+amount <= s.capacity
}

func (s *memSink) Accept(itemType string, amount int64) error {
	if !s.CanAccept(itemType, amount) {
		return errors.New(errors.ErrCodeCapacityReached, "sink full")
	}
	s.held[itemType] += amount
	return nil
}
