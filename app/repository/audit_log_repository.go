package repository

import (
	"github.com/streamnest-app/streamnest/app/models"
	"gorm.io/gorm"
)

// auditLogRepository implements the AuditLogRepository interface. The trail is
// append-only; writes happen in the webhook transaction, this type only reads.
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository instance
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// GetByUserID retrieves the audit trail of one user, newest first
func (r *auditLogRepository) GetByUserID(userID uint, offset, limit int) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, err
}

// GetByEntityID retrieves all entries referencing one provider transaction
func (r *auditLogRepository) GetByEntityID(entityID string) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	err := r.db.Where("entity_id = ?", entityID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}

// List retrieves a paginated list of audit entries, newest first
func (r *auditLogRepository) List(offset, limit int) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, err
}

// Count returns the total number of audit entries
func (r *auditLogRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.AuditLogEntry{}).Count(&count).Error
	return count, err
}
