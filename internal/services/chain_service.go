package services

import (
	"github.com/villageworks/villagecraft/internal/config"
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/internal/repositories"
	"github.com/villageworks/villagecraft/pkg/logger"
)

// ItemStack is a quantity of one item type moving through the production
// pipeline.
type ItemStack struct {
	Type   string
	Amount int64
}

// ChainService rewrites a worker's raw production output according to the
// configured producer/consumer chains. A chain only fires when both halves
// are present in the village; otherwise items pass through unchanged.
type ChainService struct {
	cfg        *config.GameConfig
	villagers  *repositories.VillagerRepository
	activities *repositories.ChainActivityRepository
}

func NewChainService(
	cfg *config.GameConfig,
	villagers *repositories.VillagerRepository,
	activities *repositories.ChainActivityRepository,
) *ChainService {
	return &ChainService{
		cfg:        cfg,
		villagers:  villagers,
		activities: activities,
	}
}

// Transform applies every chain where the producing profession participates,
// in configuration order. Quantities consumed by an earlier chain are not
// visible to later ones.
func (s *ChainService) Transform(villageID uint, profession string, output []ItemStack) []ItemStack {
	if len(output) == 0 {
		return output
	}
	for i := range s.cfg.Chains {
		chain := &s.cfg.Chains[i]
		if !chain.Enabled {
			continue
		}
		if chain.ProducerStep(profession) == nil {
			continue
		}
		output = s.applyChain(chain, villageID, profession, output)
	}
	return output
}

func (s *ChainService) applyChain(chain *config.ChainConfig, villageID uint, profession string, output []ItemStack) []ItemStack {
	producer := chain.ProducerStep(profession)
	consumer := chain.ConsumerStep()
	if producer == nil || consumer == nil || consumer.Produces == "" {
		return output
	}

	hasConsumer, err := s.hasConsumerVillagers(villageID, consumer.Profession)
	if err != nil {
		logger.Warn("failed to check chain consumers, chain inert this cycle",
			"chain", chain.Name, "village", villageID, "error", err)
		return output
	}
	if !hasConsumer {
		return output
	}

	result := make([]ItemStack, 0, len(output))
	for _, item := range output {
		if item.Type != producer.Produces {
			result = append(result, item)
			continue
		}

		s.record(villageID, chain.Name, models.ChainStepConsume, consumer.Profession, item.Type, item.Amount)

		produced := item.Amount / consumer.Ratio
		if produced <= 0 {
			continue
		}
		result = append(result, ItemStack{Type: consumer.Produces, Amount: produced})
		s.record(villageID, chain.Name, models.ChainStepProduce, consumer.Profession, consumer.Produces, produced)
	}
	return result
}

func (s *ChainService) hasConsumerVillagers(villageID uint, profession string) (bool, error) {
	count, err := s.villagers.CountByProfession(villageID, profession)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// record writes one audit half; logging failure never aborts the
// transformation.
func (s *ChainService) record(villageID uint, chainName, stepType, profession, itemType string, amount int64) {
	err := s.activities.Record(&models.ChainActivity{
		VillageID:  villageID,
		ChainName:  chainName,
		StepType:   stepType,
		Profession: profession,
		ItemType:   itemType,
		Amount:     amount,
	})
	if err != nil {
		logger.Warn("failed to record chain activity",
			"chain", chainName, "village", villageID, "step", stepType, "error", err)
	}
}

// RecentActivity exposes the audit trail for inspection surfaces.
func (s *ChainService) RecentActivity(villageID uint, limit int) ([]models.ChainActivity, error) {
	return s.activities.RecentByVillage(villageID, limit)
}
