package repositories

import (
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WarehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

// Add upserts the (village, item type) row, incrementing in the database so
// concurrent adds on the same key never lose updates.
func (r *WarehouseRepository) Add(villageID uint, itemType string, amount int64) error {
	row := &models.WarehouseItem{
		VillageID: villageID,
		ItemType:  itemType,
		Amount:    amount,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "village_id"}, {Name: "item_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"amount": gorm.Expr("amount + excluded.amount"),
		}),
	}).Create(row).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to add warehouse item")
	}
	return nil
}

// Remove decrements the row only when enough quantity is stored; the guard
// lives in the WHERE clause so the amount can never go negative under any
// interleaving.
func (r *WarehouseRepository) Remove(villageID uint, itemType string, amount int64) error {
	res := r.db.Model(&models.WarehouseItem{}).
		Where("village_id = ? AND item_type = ? AND amount >= ?", villageID, itemType, amount).
		Update("amount", gorm.Expr("amount - ?", amount))
	if res.Error != nil {
		return errors.Wrap(res.Error, errors.ErrCodeInternalError, "failed to remove warehouse item")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.ErrCodeInsufficientItems, "not enough items in warehouse")
	}
	return nil
}

func (r *WarehouseRepository) Get(villageID uint, itemType string) (*models.WarehouseItem, error) {
	var item models.WarehouseItem
	if err := r.db.Where("village_id = ? AND item_type = ?", villageID, itemType).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get warehouse item")
	}
	return &item, nil
}

func (r *WarehouseRepository) List(villageID uint) ([]models.WarehouseItem, error) {
	var items []models.WarehouseItem
	if err := r.db.Where("village_id = ?", villageID).Order("item_type").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list warehouse items")
	}
	return items, nil
}

func (r *WarehouseRepository) Total(villageID uint) (int64, error) {
	var total int64
	if err := r.db.Model(&models.WarehouseItem{}).
		Where("village_id = ?", villageID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to sum warehouse")
	}
	return total, nil
}

func (r *WarehouseRepository) Clear(villageID uint) error {
	if err := r.db.Where("village_id = ?", villageID).Delete(&models.WarehouseItem{}).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to clear warehouse")
	}
	return nil
}
