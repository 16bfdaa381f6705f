package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Banner is a CMS entry shown on the client landing screens.
type Banner struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"type:varchar(200);not null" json:"title" validate:"required,max=200"`
	ImageURL  string     `gorm:"type:varchar(500);not null" json:"image_url" validate:"required,url,max=500"`
	LinkURL   string     `gorm:"type:varchar(500);default:null" json:"link_url" validate:"omitempty,url,max=500"`
	Position  int        `gorm:"default:0;index" json:"position"`
	IsActive  bool       `gorm:"default:true;index" json:"is_active"`
	StartsAt  *time.Time `gorm:"type:timestamp;default:null" json:"starts_at,omitempty"`
	EndsAt    *time.Time `gorm:"type:timestamp;default:null" json:"ends_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *Banner) Validate() error {
	v := validator.New()

	return v.Struct(b)
}

// IsVisible reports whether the banner should currently be served.
func (b *Banner) IsVisible(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	if b.StartsAt != nil && now.Before(*b.StartsAt) {
		return false
	}
	if b.EndsAt != nil && now.After(*b.EndsAt) {
		return false
	}
	return true
}
