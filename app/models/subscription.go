package models

import "time"

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusPastDue   = "past_due"
)

const (
	SubscriptionIntervalMonthly = "monthly"
	SubscriptionIntervalYearly  = "yearly"
)

const (
	CancelReasonCustomer   = "customer_cancelled"
	CancelReasonSuperseded = "superseded"
)

// Subscription mirrors one provider-side subscription lineage. The lineage is
// keyed by the provider's original transaction id, which survives renewals;
// replayed events for the same lineage update this row in place instead of
// creating a second one.
type Subscription struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"not null;index;index:ux_subscriptions_user_orig_txn,unique,priority:1" json:"user_id"`
	PlanID                uint       `gorm:"not null;index" json:"plan_id"`
	OriginalTransactionID string     `gorm:"type:varchar(191);not null;index:ux_subscriptions_user_orig_txn,unique,priority:2" json:"original_transaction_id"`
	Status                string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	BillingInterval       string     `gorm:"type:varchar(16);not null;default:'monthly'" json:"billing_interval"`
	CurrentPeriodStart    *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd      *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	AutoRenew             bool       `gorm:"default:true" json:"auto_renew"`
	CancelledAt           *time.Time `gorm:"type:timestamp;default:null" json:"cancelled_at,omitempty"`
	CancelReason          string     `gorm:"type:varchar(100);default:null" json:"cancel_reason,omitempty"`
	Store                 string     `gorm:"type:varchar(32);default:null" json:"store"`
	Environment           string     `gorm:"type:varchar(32);default:null" json:"environment"`
	ProviderData          string     `gorm:"type:longtext" json:"provider_data,omitempty"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether this lineage currently grants entitlement.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}
