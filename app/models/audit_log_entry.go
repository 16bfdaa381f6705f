package models

import "time"

// AuditLogEntry is an immutable per-event trace written by the webhook
// dispatcher. The actor is the affected user, since webhook calls have no
// human actor. Entries are append-only and never updated or deleted.
type AuditLogEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"uuid"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Action       string    `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityType   string    `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID     string    `gorm:"type:varchar(191);not null;index" json:"entity_id"`
	MetadataJSON string    `gorm:"type:longtext" json:"metadata_json"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
