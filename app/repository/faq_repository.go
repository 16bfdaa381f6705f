package repository

import (
	"github.com/streamnest-app/streamnest/app/models"
	"gorm.io/gorm"
)

// faqRepository implements the FAQRepository interface
type faqRepository struct {
	db *gorm.DB
}

// NewFAQRepository creates a new FAQ repository instance
func NewFAQRepository(db *gorm.DB) FAQRepository {
	return &faqRepository{db: db}
}

// Create creates a new FAQ entry in the database
func (r *faqRepository) Create(entry *models.FAQEntry) error {
	return r.db.Create(entry).Error
}

// GetByID retrieves an FAQ entry by its ID
func (r *faqRepository) GetByID(id uint) (*models.FAQEntry, error) {
	var entry models.FAQEntry
	err := r.db.First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAll retrieves all FAQ entries ordered by category and position
func (r *faqRepository) GetAll() ([]models.FAQEntry, error) {
	var entries []models.FAQEntry
	err := r.db.Order("category ASC, position ASC").Find(&entries).Error
	return entries, err
}

// GetActiveByCategory retrieves active entries, optionally filtered by category
func (r *faqRepository) GetActiveByCategory(category string) ([]models.FAQEntry, error) {
	var entries []models.FAQEntry
	query := r.db.Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("position ASC").Find(&entries).Error
	return entries, err
}

// Update updates an existing FAQ entry in the database
func (r *faqRepository) Update(entry *models.FAQEntry) error {
	return r.db.Save(entry).Error
}

// Delete deletes an FAQ entry by its ID
func (r *faqRepository) Delete(id uint) error {
	return r.db.Delete(&models.FAQEntry{}, id).Error
}
