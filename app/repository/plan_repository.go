package repository

import (
	"github.com/streamnest-app/streamnest/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Create creates a new plan in the catalog
func (r *planRepository) Create(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

// GetByID retrieves a plan by its ID
func (r *planRepository) GetByID(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByTier retrieves a plan by its tier identifier
func (r *planRepository) GetByTier(tier string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.Where("tier = ?", tier).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetAll retrieves the full plan catalog
func (r *planRepository) GetAll() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Order("price_monthly ASC").Find(&plans).Error
	return plans, err
}

// Update updates an existing plan
func (r *planRepository) Update(plan *models.SubscriptionPlan) error {
	return r.db.Save(plan).Error
}

// Delete deletes a plan by its ID
func (r *planRepository) Delete(id uint) error {
	return r.db.Delete(&models.SubscriptionPlan{}, id).Error
}

// TierExists checks if a tier already has a catalog entry
func (r *planRepository) TierExists(tier string) (bool, error) {
	var count int64
	err := r.db.Model(&models.SubscriptionPlan{}).Where("tier = ?", tier).Count(&count).Error
	return count > 0, err
}

// TierExistsExceptID checks if a tier exists excluding a specific ID
func (r *planRepository) TierExistsExceptID(tier string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.SubscriptionPlan{}).Where("tier = ? AND id != ?", tier, id).Count(&count).Error
	return count > 0, err
}
