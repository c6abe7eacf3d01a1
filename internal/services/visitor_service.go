package services

import (
	"fmt"
	"time"

	"github.com/villageworks/villagecraft/internal/config"
	"github.com/villageworks/villagecraft/internal/economy"
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/internal/repositories"
	"github.com/villageworks/villagecraft/internal/world"
	"github.com/villageworks/villagecraft/pkg/errors"
	"github.com/villageworks/villagecraft/pkg/logger"
	"github.com/villageworks/villagecraft/pkg/utils"
)

// Prosperity granted to the village when one of its visitor deals is
// accepted.
const dealProsperity = 5

type VisitorService struct {
	visitors  *repositories.VisitorRepository
	villages  *VillageService
	warehouse *WarehouseService
	gateway   *economy.Gateway
	presenter world.Presenter
	cfg       *config.GameConfig

	now func() time.Time
}

func NewVisitorService(
	visitors *repositories.VisitorRepository,
	villages *VillageService,
	warehouse *WarehouseService,
	gateway *economy.Gateway,
	presenter world.Presenter,
	cfg *config.GameConfig,
) *VisitorService {
	return &VisitorService{
		visitors:  visitors,
		villages:  villages,
		warehouse: warehouse,
		gateway:   gateway,
		presenter: presenter,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetClock overrides the time source; tests use it to control expiry.
func (s *VisitorService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *VisitorService) HasActive(villageID uint) (bool, error) {
	visitor, err := s.visitors.ActiveByVillage(villageID, s.now())
	if err != nil {
		return false, err
	}
	return visitor != nil, nil
}

// Spawn creates a visitor for the village at the given location. The
// one-active-visitor invariant is enforced here, regardless of caller.
func (s *VisitorService) Spawn(village *models.Village, visitorType, worldName string, pos world.Position) (*models.Visitor, error) {
	active, err := s.HasActive(village.ID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, errors.New(errors.ErrCodeAlreadyExists, "village already has a visitor")
	}

	now := s.now()
	visitor := &models.Visitor{
		VillageID: village.ID,
		Type:      visitorType,
		Name:      visitorDisplayName(visitorType),
		EntityID:  fmt.Sprintf("visitor-%d-%s", village.ID, utils.GenerateEntityToken(12)),
		World:     worldName,
		X:         pos.X,
		Y:         pos.Y,
		Z:         pos.Z,
		Active:    true,
		ExpiresAt: now.Add(s.cfg.VisitorLifetime()),
	}
	if err := s.visitors.Create(visitor); err != nil {
		return nil, err
	}

	if visitorType == models.VisitorTypeMerchant {
		s.generateDeals(visitor)
	}

	if err := s.presenter.SpawnVisitor(visitor.EntityID, visitor.Name, visitorType, worldName, pos); err != nil {
		logger.Warn("failed to present visitor", "visitor", visitor.ID, "error", err)
	}
	if err := s.presenter.PlayEffect(worldName, pos, "visitor_arrival"); err != nil {
		logger.Warn("failed to play arrival effect", "visitor", visitor.ID, "error", err)
	}
	logger.Info("visitor spawned", "village", village.ID, "type", visitorType)
	return visitor, nil
}

func (s *VisitorService) generateDeals(visitor *models.Visitor) {
	for _, dealCfg := range s.cfg.Visitors.Deals {
		deal := &models.VisitorDeal{
			VisitorID:    visitor.ID,
			VillageID:    visitor.VillageID,
			CostKind:     string(dealCfg.Cost.Kind),
			CostAmount:   dealCfg.Cost.Amount,
			CostItem:     dealCfg.Cost.Item,
			RewardItem:   dealCfg.RewardItem,
			RewardAmount: dealCfg.RewardAmount,
			ExpiresAt:    visitor.ExpiresAt,
		}
		if err := s.visitors.CreateDeal(deal); err != nil {
			logger.Warn("failed to create visitor deal", "visitor", visitor.ID, "error", err)
		}
	}
}

func (s *VisitorService) Deals(visitorID uint) ([]models.VisitorDeal, error) {
	return s.visitors.DealsByVisitor(visitorID)
}

// AcceptDeal pays the deal's cost and delivers the reward into the village
// warehouse. The deal is claimed before payment so concurrent accepts race
// safely; a failed payment releases the claim and applies nothing.
func (s *VisitorService) AcceptDeal(playerID string, dealID uint) error {
	deal, err := s.visitors.GetDeal(dealID)
	if err != nil {
		return err
	}
	if deal.Accepted {
		return errors.New(errors.ErrCodeAlreadyExists, "deal already accepted")
	}
	if !s.now().Before(deal.ExpiresAt) {
		return errors.New(errors.ErrCodeExpired, "deal has expired")
	}

	village, err := s.villages.GetByOwner(playerID)
	if err != nil {
		return err
	}
	if village == nil || village.ID != deal.VillageID {
		return errors.New(errors.ErrCodeForbidden, "this deal belongs to another village")
	}

	capacity, err := s.warehouse.Capacity(village)
	if err != nil {
		return err
	}
	total, err := s.warehouse.CurrentTotal(village.ID)
	if err != nil {
		return err
	}
	if total+deal.RewardAmount > capacity {
		return errors.New(errors.ErrCodeCapacityReached, "warehouse cannot hold the reward")
	}

	if err := s.visitors.MarkDealAccepted(dealID); err != nil {
		return err
	}

	cost := economy.CostEntry{Kind: economy.CostKind(deal.CostKind), Amount: deal.CostAmount, Item: deal.CostItem}
	if err := s.gateway.Deduct(playerID, []economy.CostEntry{cost}, models.TxTypeVisitorDeal); err != nil {
		if reopenErr := s.visitors.ReopenDeal(dealID); reopenErr != nil {
			logger.Error("failed to reopen deal after payment failure", "deal", dealID, "error", reopenErr)
		}
		return err
	}

	if err := s.warehouse.Add(village.ID, deal.RewardItem, deal.RewardAmount); err != nil {
		return err
	}
	if err := s.villages.AddProsperity(village.ID, dealProsperity); err != nil {
		logger.Warn("failed to grant deal prosperity", "village", village.ID, "error", err)
	}
	return nil
}

// ExpireVisitors deactivates every visitor whose expiry has passed and
// removes its presentation entity. It returns how many were expired.
func (s *VisitorService) ExpireVisitors() (int, error) {
	expired, err := s.visitors.Expired(s.now())
	if err != nil {
		return 0, err
	}
	for _, visitor := range expired {
		if err := s.visitors.Deactivate(visitor.ID); err != nil {
			logger.Warn("failed to deactivate visitor", "visitor", visitor.ID, "error", err)
			continue
		}
		if err := s.presenter.RemoveEntity(visitor.EntityID); err != nil {
			logger.Warn("failed to remove visitor entity", "visitor", visitor.ID, "error", err)
		}
	}
	return len(expired), nil
}

// Dismiss removes a visitor before its natural expiry.
func (s *VisitorService) Dismiss(visitorID uint) error {
	visitor, err := s.visitors.GetByID(visitorID)
	if err != nil {
		return err
	}
	if err := s.visitors.Deactivate(visitorID); err != nil {
		return err
	}
	if err := s.presenter.RemoveEntity(visitor.EntityID); err != nil {
		logger.Warn("failed to remove visitor entity", "visitor", visitorID, "error", err)
	}
	return nil
}

func visitorDisplayName(visitorType string) string {
	switch visitorType {
	case models.VisitorTypeMerchant:
		return "Wandering Merchant"
	case models.VisitorTypeTraveler:
		return "Traveler"
	case models.VisitorTypeFestival:
		return "Festival Envoy"
	default:
		return "Visitor"
	}
}
