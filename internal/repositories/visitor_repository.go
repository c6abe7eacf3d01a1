package repositories

import (
	"time"

	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/pkg/errors"
	"gorm.io/gorm"
)

type VisitorRepository struct {
	db *gorm.DB
}

func NewVisitorRepository(db *gorm.DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

func (r *VisitorRepository) Create(visitor *models.Visitor) error {
	if err := r.db.Create(visitor).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create visitor")
	}
	return nil
}

func (r *VisitorRepository) GetByID(id uint) (*models.Visitor, error) {
	var visitor models.Visitor
	if err := r.db.First(&visitor, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.ErrCodeNotFound, "visitor not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get visitor")
	}
	return &visitor, nil
}

// ActiveByVillage returns the village's live, unexpired visitor, or nil.
func (r *VisitorRepository) ActiveByVillage(villageID uint, now time.Time) (*models.Visitor, error) {
	var visitor models.Visitor
	if err := r.db.Where("village_id = ? AND active = ? AND expires_at > ?", villageID, true, now).
		First(&visitor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get active visitor")
	}
	return &visitor, nil
}

// Expired returns visitors still flagged active whose expiry has passed.
func (r *VisitorRepository) Expired(now time.Time) ([]models.Visitor, error) {
	var visitors []models.Visitor
	if err := r.db.Where("active = ? AND expires_at <= ?", true, now).Find(&visitors).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list expired visitors")
	}
	return visitors, nil
}

func (r *VisitorRepository) Deactivate(id uint) error {
	if err := r.db.Model(&models.Visitor{}).Where("id = ?", id).Update("active", false).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to deactivate visitor")
	}
	return nil
}

func (r *VisitorRepository) CreateDeal(deal *models.VisitorDeal) error {
	if err := r.db.Create(deal).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create visitor deal")
	}
	return nil
}

func (r *VisitorRepository) GetDeal(dealID uint) (*models.VisitorDeal, error) {
	var deal models.VisitorDeal
	if err := r.db.First(&deal, dealID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.ErrCodeNotFound, "deal not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get deal")
	}
	return &deal, nil
}

func (r *VisitorRepository) DealsByVisitor(visitorID uint) ([]models.VisitorDeal, error) {
	var deals []models.VisitorDeal
	if err := r.db.Where("visitor_id = ?", visitorID).Find(&deals).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list deals")
	}
	return deals, nil
}

// MarkDealAccepted flips the deal to accepted only if it was still open,
// so double-accepts race safely.
func (r *VisitorRepository) MarkDealAccepted(dealID uint) error {
	res := r.db.Model(&models.VisitorDeal{}).
		Where("id = ? AND accepted = ?", dealID, false).
		Update("accepted", true)
	if res.Error != nil {
		return errors.Wrap(res.Error, errors.ErrCodeInternalError, "failed to accept deal")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.ErrCodeAlreadyExists, "deal already accepted")
	}
	return nil
}

// ReopenDeal releases a claim taken by MarkDealAccepted, used when the
// payment that followed the claim did not go through.
func (r *VisitorRepository) ReopenDeal(dealID uint) error {
	if err := r.db.Model(&models.VisitorDeal{}).
		Where("id = ?", dealID).
		Update("accepted", false).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to reopen deal")
	}
	return nil
}
