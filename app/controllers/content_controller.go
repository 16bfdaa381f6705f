package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/streamnest-app/streamnest/app/repository"
)

// HandleGetBanners returns the banners currently visible to clients.
func HandleGetBanners(c *fiber.Ctx) error {
	banners, err := repository.GetGlobalFactory().GetBannerRepository().GetVisible(time.Now().UTC())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load banners"})
	}
	return c.JSON(fiber.Map{"banners": banners})
}

// HandleGetFAQs returns active help-center entries, optionally filtered by category.
func HandleGetFAQs(c *fiber.Ctx) error {
	entries, err := repository.GetGlobalFactory().GetFAQRepository().GetActiveByCategory(c.Query("category"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load FAQ entries"})
	}
	return c.JSON(fiber.Map{"faqs": entries})
}

// HandleGetPlans returns the public plan catalog.
func HandleGetPlans(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().GetAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plans"})
	}
	return c.JSON(fiber.Map{"plans": plans})
}
