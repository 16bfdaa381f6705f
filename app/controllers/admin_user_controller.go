package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/streamnest-app/streamnest/app/repository"
	"github.com/streamnest-app/streamnest/internal/pkg/cache"
)

// HandleAdminListUsers returns a paginated user list, or a search result when
// the q parameter is set.
func HandleAdminListUsers(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetUserRepository()

	if query := strings.TrimSpace(c.Query("q")); query != "" {
		users, err := repo.Search(query)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Search failed"})
		}
		return c.JSON(fiber.Map{"users": users, "total": len(users)})
	}

	offset, limit := parsePagination(c)
	users, err := repo.List(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load users"})
	}
	total, err := repo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count users"})
	}
	return c.JSON(fiber.Map{"users": users, "total": total, "offset": offset, "limit": limit})
}

// HandleAdminGetUser returns one user with their subscription lineages and
// recent audit trail, the operator view for billing support tickets.
func HandleAdminGetUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid user id"})
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	subs, err := repos.Subscription.GetByUserID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscriptions"})
	}
	trail, err := repos.AuditLog.GetByUserID(id, 0, 50)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load audit trail"})
	}

	return c.JSON(fiber.Map{
		"user":          user,
		"subscriptions": subs,
		"audit_trail":   trail,
	})
}

// HandleAdminGetStats returns aggregate subscription and entitlement counts.
func HandleAdminGetStats(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	byTier, err := repos.User.CountByTier()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load tier stats"})
	}
	byStatus, err := repos.Subscription.CountByStatus()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscription stats"})
	}
	auditTotal, err := repos.AuditLog.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load audit stats"})
	}

	return c.JSON(fiber.Map{
		"users_by_tier":           byTier,
		"subscriptions_by_status": byStatus,
		"audit_entries":           auditTotal,
	})
}

// HandleAdminFlushEntitlementCache drops cached entitlement summaries. With an
// id parameter only that user's entry is dropped, otherwise all of them.
func HandleAdminFlushEntitlementCache(c *fiber.Ctx) error {
	cacheRepo := repository.GetGlobalFactory().GetCacheRepository()

	if idParam := c.Params("id"); idParam != "" {
		id, err := parseIDParam(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid user id"})
		}
		deleted, err := cacheRepo.DeleteKeys([]string{cache.EntitlementKey(id)})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Cache flush failed"})
		}
		return c.JSON(fiber.Map{"deleted": deleted})
	}

	keys, err := cacheRepo.FindKeysByPatterns([]string{"user:entitlement:*"})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Cache scan failed"})
	}
	deleted, err := cacheRepo.DeleteKeys(keys)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Cache flush failed"})
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}
