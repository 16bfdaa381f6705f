package controllers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/streamnest-app/streamnest/app/repository"
	"github.com/streamnest-app/streamnest/internal/pkg/cache"
	"github.com/streamnest-app/streamnest/internal/pkg/entitlements"
)

// Cached entitlement summaries expire on their own as a safety net; the
// webhook write path invalidates them eagerly.
const entitlementCacheTTL = 5 * time.Minute

type entitlementResponse struct {
	UserID    uint        `json:"user_id"`
	Tier      string      `json:"tier"`
	ExpiresAt interface{} `json:"expires_at"`
	Features  fiber.Map   `json:"features"`
}

// HandleGetUserEntitlement returns the cached entitlement summary for a user.
// Clients gate playback features on this response.
func HandleGetUserEntitlement(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid user id"})
	}

	if cached, err := cache.Get(cache.EntitlementKey(id)); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	tier := entitlements.Normalize(user.SubscriptionTier)
	response := entitlementResponse{
		UserID:    user.ID,
		Tier:      string(tier),
		ExpiresAt: formatTimePtr(user.SubscriptionExpiresAt),
		Features: fiber.Map{
			"max_profiles":      entitlements.MaxProfiles(tier),
			"offline_downloads": entitlements.AllowsOffline(tier),
		},
	}

	if raw, err := json.Marshal(response); err == nil {
		_ = cache.Set(cache.EntitlementKey(id), string(raw), entitlementCacheTTL)
	}

	return c.JSON(response)
}
