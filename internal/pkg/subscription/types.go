package subscription

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/streamnest-app/streamnest/app/models"
)

// Provider event types. The provider adds new types over time; anything not
// listed here is acknowledged without mutation.
const (
	EventInitialPurchase     = "INITIAL_PURCHASE"
	EventRenewal             = "RENEWAL"
	EventCancellation        = "CANCELLATION"
	EventUncancellation      = "UNCANCELLATION"
	EventNonRenewingPurchase = "NON_RENEWING_PURCHASE"
	EventSubscriptionPaused  = "SUBSCRIPTION_PAUSED"
	EventExpiration          = "EXPIRATION"
	EventBillingIssue        = "BILLING_ISSUE"
	EventProductChange       = "PRODUCT_CHANGE"
	EventTransfer            = "TRANSFER"
)

// Event is the provider's billing-lifecycle event as delivered inside the
// webhook envelope.
type Event struct {
	Type                  string   `json:"type"`
	AppUserID             string   `json:"app_user_id"`
	ProductID             string   `json:"product_id"`
	EntitlementIDs        []string `json:"entitlement_ids"`
	PurchasedAtMs         int64    `json:"purchased_at_ms"`
	ExpirationAtMs        int64    `json:"expiration_at_ms"`
	Store                 string   `json:"store"`
	Environment           string   `json:"environment"`
	Price                 float64  `json:"price"`
	Currency              string   `json:"currency"`
	TransactionID         string   `json:"transaction_id"`
	OriginalTransactionID string   `json:"original_transaction_id"`
}

// EventEnvelope is the request body posted by the provider. A missing Event
// is the only structurally invalid shape.
type EventEnvelope struct {
	Event      *Event `json:"event"`
	APIVersion string `json:"api_version"`
}

// Result describes the outcome of one dispatched event. A Result is always
// produced; business failures never surface as transport errors.
type Result struct {
	Success bool
	Action  string
	Message string
	UserID  uint
}

// PurchasedAt converts the purchase timestamp, nil when absent.
func (e *Event) PurchasedAt() *time.Time {
	if e.PurchasedAtMs <= 0 {
		return nil
	}
	t := time.UnixMilli(e.PurchasedAtMs).UTC()
	return &t
}

// ExpiresAt converts the expiration timestamp, nil when absent
// (lifetime or non-expiring purchases).
func (e *Event) ExpiresAt() *time.Time {
	if e.ExpirationAtMs <= 0 {
		return nil
	}
	t := time.UnixMilli(e.ExpirationAtMs).UTC()
	return &t
}

// Interval derives the billing interval from the product id. Provider
// payloads carry no explicit interval field, but product SKUs follow the
// <tier>_<interval> convention across all stores.
func (e *Event) Interval() string {
	p := strings.ToLower(e.ProductID)
	if strings.Contains(p, "year") || strings.Contains(p, "annual") {
		return models.SubscriptionIntervalYearly
	}
	return models.SubscriptionIntervalMonthly
}

// ProviderSnapshot serializes the event fields kept on the subscription row
// for forensic inspection of the last-applied provider state.
func (e *Event) ProviderSnapshot() string {
	snap := map[string]interface{}{
		"transaction_id":          e.TransactionID,
		"original_transaction_id": e.OriginalTransactionID,
		"product_id":              e.ProductID,
		"price":                   e.Price,
		"currency":                e.Currency,
		"store":                   e.Store,
		"environment":             e.Environment,
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return ""
	}
	return string(b)
}
