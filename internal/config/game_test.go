package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeGameConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const validGameYAML = `
village:
  max_level: 5
  base_exp_per_level: 200
villager:
  work_interval_seconds: 120
professions:
  farmer:
    work_items: [WHEAT, CARROT]
    base_amount: 2
    probability: 0.8
    recruit_costs:
      - kind: currency
        amount: 50
    skills:
      harvest:
        name: Harvest Mastery
        effect: output_bonus
        per_level: 1
        max_level: 3
  miner:
    work_items: [COAL]
    base_amount: 1
    probability: 0.6
    work_interval_seconds: 180
chains:
  - name: bread
    enabled: true
    steps:
      - profession: farmer
        produces: WHEAT
      - profession: baker
        consumes: WHEAT
        produces: BREAD
        ratio: 4
village_upgrades:
  warehouse_expansion:
    name: Warehouse Expansion
    max_level: 5
    costs:
      - kind: currency
        amount: 200
`

func TestLoadGameConfig(t *testing.T) {
	path := writeGameConfig(t, validGameYAML)

	cfg, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("LoadGameConfig() error = %v", err)
	}

	if len(cfg.Professions) != 2 {
		t.Errorf("Professions = %d, want 2", len(cfg.Professions))
	}
	if got := cfg.WorkInterval("miner"); got != 180*time.Second {
		t.Errorf("WorkInterval(miner) = %v, want 180s", got)
	}
	if got := cfg.WorkInterval("farmer"); got != 120*time.Second {
		t.Errorf("WorkInterval(farmer) = %v, want fallback 120s", got)
	}
	if got := cfg.VillageLevelThreshold(3); got != 600 {
		t.Errorf("VillageLevelThreshold(3) = %d, want 600", got)
	}
}

func TestLoadGameConfig_Defaults(t *testing.T) {
	path := writeGameConfig(t, "professions: {}\n")

	cfg, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("LoadGameConfig() error = %v", err)
	}

	if cfg.Village.MaxLevel != 5 {
		t.Errorf("Village.MaxLevel default = %d, want 5", cfg.Village.MaxLevel)
	}
	if cfg.Villager.WorkPollSeconds != 5 {
		t.Errorf("Villager.WorkPollSeconds default = %d, want 5", cfg.Villager.WorkPollSeconds)
	}
	if cfg.Visitors.LifetimeMinutes != 30 {
		t.Errorf("Visitors.LifetimeMinutes default = %d, want 30", cfg.Visitors.LifetimeMinutes)
	}
	if cfg.Legacy.InheritPercent != 50 {
		t.Errorf("Legacy.InheritPercent default = %d, want 50", cfg.Legacy.InheritPercent)
	}
}

func TestLoadGameConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "probability out of range",
			yaml: "professions:\n  farmer:\n    work_items: [WHEAT]\n    probability: 1.5\n",
		},
		{
			name: "unknown skill effect",
			yaml: "professions:\n  farmer:\n    work_items: [WHEAT]\n    probability: 0.5\n    skills:\n      x:\n        effect: teleport\n",
		},
		{
			name: "chain without name",
			yaml: "chains:\n  - enabled: true\n    steps:\n      - profession: farmer\n        produces: WHEAT\n",
		},
		{
			name: "step without profession",
			yaml: "chains:\n  - name: bread\n    steps:\n      - produces: WHEAT\n",
		},
		{
			name: "unknown cost kind",
			yaml: "professions:\n  farmer:\n    work_items: [WHEAT]\n    recruit_costs:\n      - kind: gems\n        amount: 5\n",
		},
		{
			name: "inherit percent over 100",
			yaml: "legacy:\n  inherit_percent: 150\n",
		},
		{
			name: "negative village exp threshold",
			yaml: "village:\n  base_exp_per_level: -200\n",
		},
		{
			name: "negative villager exp threshold",
			yaml: "villager:\n  base_exp_per_level: -100\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeGameConfig(t, tt.yaml)
			if _, err := LoadGameConfig(path); err == nil {
				t.Error("LoadGameConfig() expected error")
			}
		})
	}
}

func TestLoadGameConfig_RatioDefault(t *testing.T) {
	path := writeGameConfig(t, "chains:\n  - name: bread\n    steps:\n      - profession: baker\n        consumes: WHEAT\n        produces: BREAD\n")

	cfg, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("LoadGameConfig() error = %v", err)
	}
	if got := cfg.Chains[0].Steps[0].Ratio; got != 1 {
		t.Errorf("default Ratio = %d, want 1", got)
	}
}

func TestChainConfig_Steps(t *testing.T) {
	chain := ChainConfig{
		Name: "bread",
		Steps: []ChainStep{
			{Profession: "farmer", Produces: "WHEAT"},
			{Profession: "baker", Consumes: "WHEAT", Produces: "BREAD", Ratio: 4},
		},
	}

	if step := chain.ProducerStep("farmer"); step == nil || step.Produces != "WHEAT" {
		t.Errorf("ProducerStep(farmer) = %+v, want WHEAT producer", step)
	}
	if step := chain.ProducerStep("miner"); step != nil {
		t.Errorf("ProducerStep(miner) = %+v, want nil", step)
	}
	consumer := chain.ConsumerStep()
	if consumer == nil || consumer.Profession != "baker" || consumer.Ratio != 4 {
		t.Errorf("ConsumerStep() = %+v, want baker at ratio 4", consumer)
	}
}
