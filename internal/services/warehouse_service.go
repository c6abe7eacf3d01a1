package services

import (
	"fmt"
	"sync"

	"github.com/villageworks/villagecraft/internal/config"
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/internal/repositories"
	"github.com/villageworks/villagecraft/internal/world"
	"github.com/villageworks/villagecraft/pkg/errors"
)

// Bonus capacity granted per level of the warehouse_expansion upgrade.
const warehouseUpgradeBonus = 50

// WarehouseService is the per-village resource ledger. The database already
// guards individual rows; the per-village mutex additionally serializes
// composite operations (capacity checks, extract) so check-then-commit
// sequences don't interleave.
type WarehouseService struct {
	warehouses *repositories.WarehouseRepository
	upgrades   *repositories.UpgradeRepository
	cfg        *config.GameConfig

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewWarehouseService(
	warehouses *repositories.WarehouseRepository,
	upgrades *repositories.UpgradeRepository,
	cfg *config.GameConfig,
) *WarehouseService {
	return &WarehouseService{
		warehouses: warehouses,
		upgrades:   upgrades,
		cfg:        cfg,
		locks:      make(map[uint]*sync.Mutex),
	}
}

func (s *WarehouseService) villageLock(villageID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[villageID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[villageID] = lock
	}
	return lock
}

// Add increases the stored quantity for a key, creating the row if absent.
func (s *WarehouseService) Add(villageID uint, itemType string, amount int64) error {
	if amount <= 0 {
		return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("add amount must be > 0, got %d", amount))
	}
	lock := s.villageLock(villageID)
	lock.Lock()
	defer lock.Unlock()
	return s.warehouses.Add(villageID, itemType, amount)
}

// Deposit stores up to amount, clamped to the village's remaining capacity.
// It returns how much was actually stored; overflow is discarded. The work
// scheduler uses this so unattended production can never overfill the
// warehouse.
func (s *WarehouseService) Deposit(village *models.Village, itemType string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("deposit amount must be > 0, got %d", amount))
	}
	lock := s.villageLock(village.ID)
	lock.Lock()
	defer lock.Unlock()

	capacity, err := s.capacityLocked(village)
	if err != nil {
		return 0, err
	}
	total, err := s.warehouses.Total(village.ID)
	if err != nil {
		return 0, err
	}
	remaining := capacity - total
	if remaining <= 0 {
		return 0, nil
	}
	if amount > remaining {
		amount = remaining
	}
	if err := s.warehouses.Add(village.ID, itemType, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// Remove decrements the key, failing without change when less than amount is
// stored.
func (s *WarehouseService) Remove(villageID uint, itemType string, amount int64) error {
	if amount <= 0 {
		return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("remove amount must be > 0, got %d", amount))
	}
	lock := s.villageLock(villageID)
	lock.Lock()
	defer lock.Unlock()
	return s.warehouses.Remove(villageID, itemType, amount)
}

// Extract moves items from the ledger to a destination. The destination is
// checked before the ledger is decremented, and items are only materialized
// after the decrement succeeded, so the operation either fully succeeds or
// leaves both sides untouched.
func (s *WarehouseService) Extract(dest world.ItemSink, villageID uint, itemType string, amount int64) error {
	if amount <= 0 {
		return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("extract amount must be > 0, got %d", amount))
	}
	lock := s.villageLock(villageID)
	lock.Lock()
	defer lock.Unlock()

	item, err := s.warehouses.Get(villageID, itemType)
	if err != nil {
		return err
	}
	if item == nil || item.Amount < amount {
		return errors.New(errors.ErrCodeInsufficientItems, fmt.Sprintf("not enough %s in warehouse", itemType))
	}
	if !dest.CanAccept(itemType, amount) {
		return errors.New(errors.ErrCodeCapacityReached, "destination cannot accept items")
	}
	if err := s.warehouses.Remove(villageID, itemType, amount); err != nil {
		return err
	}
	if err := dest.Accept(itemType, amount); err != nil {
		// The acceptance check passed moments ago; surface the mismatch.
		return errors.Wrap(err, errors.ErrCodeInternalError, "destination rejected items after acceptance check")
	}
	return nil
}

// CurrentTotal sums all quantities stored for the village.
func (s *WarehouseService) CurrentTotal(villageID uint) (int64, error) {
	return s.warehouses.Total(villageID)
}

func (s *WarehouseService) Items(villageID uint) ([]models.WarehouseItem, error) {
	return s.warehouses.List(villageID)
}

// Capacity is base + (level-1)*perLevel + the warehouse_expansion upgrade
// bonus.
func (s *WarehouseService) Capacity(village *models.Village) (int64, error) {
	lock := s.villageLock(village.ID)
	lock.Lock()
	defer lock.Unlock()
	return s.capacityLocked(village)
}

func (s *WarehouseService) capacityLocked(village *models.Village) (int64, error) {
	capacity := s.cfg.Village.BaseWarehouseCapacity +
		int64(village.Level-1)*s.cfg.Village.WarehouseCapacityPerLevel
	level, err := s.upgrades.VillageUpgradeLevel(village.ID, "warehouse_expansion")
	if err != nil {
		return 0, err
	}
	return capacity + int64(level)*warehouseUpgradeBonus, nil
}

// Clear wipes every row for a village; administrative flows only.
func (s *WarehouseService) Clear(villageID uint) error {
	lock := s.villageLock(villageID)
	lock.Lock()
	defer lock.Unlock()
	return s.warehouses.Clear(villageID)
}
