package repository

import (
	"time"

	"github.com/streamnest-app/streamnest/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByProviderCustomerID(id string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
	CountByTier() (map[string]int64, error)
}

// PlanRepository defines the interface for subscription plan catalog operations
type PlanRepository interface {
	Create(plan *models.SubscriptionPlan) error
	GetByID(id uint) (*models.SubscriptionPlan, error)
	GetByTier(tier string) (*models.SubscriptionPlan, error)
	GetAll() ([]models.SubscriptionPlan, error)
	Update(plan *models.SubscriptionPlan) error
	Delete(id uint) error
	TierExists(tier string) (bool, error)
	TierExistsExceptID(tier string, id uint) (bool, error)
}

// SubscriptionRepository defines the read side used by the admin API. The
// webhook write path has its own transactional repository and does not go
// through this interface.
type SubscriptionRepository interface {
	GetByID(id uint) (*models.Subscription, error)
	GetByUserID(userID uint) ([]models.Subscription, error)
	GetActiveByUserID(userID uint) (*models.Subscription, error)
	List(offset, limit int) ([]models.Subscription, error)
	ListByStatus(status string, offset, limit int) ([]models.Subscription, error)
	Count() (int64, error)
	CountByPlanID(planID uint) (int64, error)
	CountByStatus() (map[string]int64, error)
}

// AuditLogRepository defines the read side of the append-only audit trail.
type AuditLogRepository interface {
	GetByUserID(userID uint, offset, limit int) ([]models.AuditLogEntry, error)
	GetByEntityID(entityID string) ([]models.AuditLogEntry, error)
	List(offset, limit int) ([]models.AuditLogEntry, error)
	Count() (int64, error)
}

// BannerRepository defines the interface for banner CMS operations
type BannerRepository interface {
	Create(banner *models.Banner) error
	GetByID(id uint) (*models.Banner, error)
	GetAll() ([]models.Banner, error)
	GetVisible(now time.Time) ([]models.Banner, error)
	Update(banner *models.Banner) error
	Delete(id uint) error
}

// FAQRepository defines the interface for help-center entries
type FAQRepository interface {
	Create(entry *models.FAQEntry) error
	GetByID(id uint) (*models.FAQEntry, error)
	GetAll() ([]models.FAQEntry, error)
	GetActiveByCategory(category string) ([]models.FAQEntry, error)
	Update(entry *models.FAQEntry) error
	Delete(id uint) error
}

// CacheRepository defines the interface for Redis cache administration
type CacheRepository interface {
	GetValue(key string) (string, error)
	GetTTL(key string) (time.Duration, error)
	FindKeysByPatterns(patterns []string) ([]string, error)
	DeleteKeys(keys []string) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Plan         PlanRepository
	Subscription SubscriptionRepository
	AuditLog     AuditLogRepository
	Banner       BannerRepository
	FAQ          FAQRepository
	Cache        CacheRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Plan:         NewPlanRepository(db),
		Subscription: NewSubscriptionRepository(db),
		AuditLog:     NewAuditLogRepository(db),
		Banner:       NewBannerRepository(db),
		FAQ:          NewFAQRepository(db),
		Cache:        NewCacheRepository(),
	}
}
