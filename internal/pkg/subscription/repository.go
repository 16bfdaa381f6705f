package subscription

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/streamnest-app/streamnest/app/models"
	"github.com/streamnest-app/streamnest/internal/pkg/entitlements"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the event dispatcher.
type Repository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction. Handlers wrap their whole read-modify-write sequence in
	// it so concurrent deliveries for the same user serialize on the rows
	// they touch.
	Transaction(fn func(Repository) error) error

	FindUserByIDOrCorrelationID(appUserID string) (*models.User, error)
	FindActiveSubscriptionsForUser(userID uint) ([]models.Subscription, error)
	FindSubscriptionByOriginalTransactionID(userID uint, originalTransactionID string) (*models.Subscription, error)
	UpsertSubscriptionPlanByTier(tier entitlements.Tier) (*models.SubscriptionPlan, error)
	CreateSubscription(sub *models.Subscription) error
	UpdateSubscription(sub *models.Subscription) error
	UpdateUserEntitlement(userID uint, tier entitlements.Tier, expiresAt *time.Time) error
	AppendAuditLogEntry(entry *models.AuditLogEntry) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a dispatcher repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) FindUserByIDOrCorrelationID(appUserID string) (*models.User, error) {
	id := strings.TrimSpace(appUserID)
	if id == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var user models.User
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		err := r.db.First(&user, uint(n)).Error
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	err := r.db.Where("provider_customer_id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) FindActiveSubscriptionsForUser(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) FindSubscriptionByOriginalTransactionID(userID uint, originalTransactionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.
		Where("user_id = ? AND original_transaction_id = ?", userID, originalTransactionID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) UpsertSubscriptionPlanByTier(tier entitlements.Tier) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.
		Where(models.SubscriptionPlan{Tier: string(tier)}).
		Attrs(models.SubscriptionPlan{
			Name:            planDisplayName(tier),
			Currency:        "USD",
			AutoProvisioned: true,
		}).
		FirstOrCreate(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) CreateSubscription(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) UpdateSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) UpdateUserEntitlement(userID uint, tier entitlements.Tier, expiresAt *time.Time) error {
	// Both cached columns change in one UPDATE so a concurrent reader never
	// observes a tier from one subscription paired with the expiry of another.
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"subscription_tier":       string(tier),
			"subscription_expires_at": expiresAt,
		}).Error
}

func (r *gormRepository) AppendAuditLogEntry(entry *models.AuditLogEntry) error {
	return r.db.Create(entry).Error
}

func planDisplayName(tier entitlements.Tier) string {
	t := string(tier)
	if t == "" {
		return "Unknown"
	}
	return strings.ToUpper(t[:1]) + t[1:]
}
