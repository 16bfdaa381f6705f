package repository

import (
	"time"

	"github.com/streamnest-app/streamnest/app/models"
	"gorm.io/gorm"
)

// bannerRepository implements the BannerRepository interface
type bannerRepository struct {
	db *gorm.DB
}

// NewBannerRepository creates a new banner repository instance
func NewBannerRepository(db *gorm.DB) BannerRepository {
	return &bannerRepository{db: db}
}

// Create creates a new banner in the database
func (r *bannerRepository) Create(banner *models.Banner) error {
	return r.db.Create(banner).Error
}

// GetByID retrieves a banner by its ID
func (r *bannerRepository) GetByID(id uint) (*models.Banner, error) {
	var banner models.Banner
	err := r.db.First(&banner, id).Error
	if err != nil {
		return nil, err
	}
	return &banner, nil
}

// GetAll retrieves all banners ordered by position
func (r *bannerRepository) GetAll() ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.Order("position ASC, created_at DESC").Find(&banners).Error
	return banners, err
}

// GetVisible retrieves the banners that should currently be served
func (r *bannerRepository) GetVisible(now time.Time) ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("position ASC").
		Find(&banners).Error
	return banners, err
}

// Update updates an existing banner in the database
func (r *bannerRepository) Update(banner *models.Banner) error {
	return r.db.Save(banner).Error
}

// Delete deletes a banner by its ID
func (r *bannerRepository) Delete(id uint) error {
	return r.db.Delete(&models.Banner{}, id).Error
}
