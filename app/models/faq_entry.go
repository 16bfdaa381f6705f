package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// FAQEntry is a CMS help-center entry managed via the admin API.
type FAQEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Question  string    `gorm:"type:varchar(500);not null" json:"question" validate:"required,max=500"`
	Answer    string    `gorm:"type:text;not null" json:"answer" validate:"required"`
	Category  string    `gorm:"type:varchar(100);default:'general';index" json:"category" validate:"max=100"`
	Position  int       `gorm:"default:0;index" json:"position"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (f *FAQEntry) Validate() error {
	v := validator.New()

	return v.Struct(f)
}
