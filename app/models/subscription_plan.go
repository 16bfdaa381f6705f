package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// SubscriptionPlan is a catalog entry for an internal entitlement tier.
// Rows may be lazily self-populated by the webhook path when a provider
// product maps to a tier that has no catalog entry yet; those rows carry
// auto_provisioned=true so operators can spot and fill them in later.
type SubscriptionPlan struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Tier            string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"tier" validate:"required,min=2,max=50"`
	Name            string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,max=150"`
	PriceMonthly    int64     `gorm:"not null;default:0" json:"price_monthly" validate:"min=0"`
	PriceYearly     int64     `gorm:"not null;default:0" json:"price_yearly" validate:"min=0"`
	Currency        string    `gorm:"type:varchar(3);not null;default:'USD'" json:"currency" validate:"len=3"`
	FeaturesJSON    string    `gorm:"type:longtext" json:"features_json"`
	AutoProvisioned bool      `gorm:"default:false" json:"auto_provisioned"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *SubscriptionPlan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
