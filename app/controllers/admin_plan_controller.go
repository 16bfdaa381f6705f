package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/streamnest-app/streamnest/app/models"
	"github.com/streamnest-app/streamnest/app/repository"
)

// HandleAdminListPlans returns the full plan catalog including auto-provisioned rows.
func HandleAdminListPlans(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().GetAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plans"})
	}
	return c.JSON(fiber.Map{"plans": plans})
}

// HandleAdminCreatePlan creates a catalog entry for a tier.
func HandleAdminCreatePlan(c *fiber.Ctx) error {
	var plan models.SubscriptionPlan
	if err := c.BodyParser(&plan); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid plan payload"})
	}
	if err := plan.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	repo := repository.GetGlobalFactory().GetPlanRepository()
	exists, err := repo.TierExists(plan.Tier)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check tier"})
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Tier already has a plan"})
	}

	plan.AutoProvisioned = false
	if err := repo.Create(&plan); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create plan"})
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleAdminUpdatePlan updates an existing catalog entry. Filling in an
// auto-provisioned row clears its flag.
func HandleAdminUpdatePlan(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid plan id"})
	}

	repo := repository.GetGlobalFactory().GetPlanRepository()
	plan, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plan"})
	}

	var input models.SubscriptionPlan
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid plan payload"})
	}

	if input.Tier != "" && input.Tier != plan.Tier {
		taken, err := repo.TierExistsExceptID(input.Tier, plan.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check tier"})
		}
		if taken {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Tier already has a plan"})
		}
		plan.Tier = input.Tier
	}
	if input.Name != "" {
		plan.Name = input.Name
	}
	if input.Currency != "" {
		plan.Currency = input.Currency
	}
	plan.PriceMonthly = input.PriceMonthly
	plan.PriceYearly = input.PriceYearly
	plan.FeaturesJSON = input.FeaturesJSON
	plan.AutoProvisioned = false

	if err := plan.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := repo.Update(plan); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update plan"})
	}
	return c.JSON(plan)
}

// HandleAdminDeletePlan deletes a catalog entry. Plans still referenced by
// subscription lineages cannot be deleted.
func HandleAdminDeletePlan(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid plan id"})
	}

	refs, err := repository.GetGlobalFactory().GetSubscriptionRepository().CountByPlanID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check plan usage"})
	}
	if refs > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Plan is referenced by subscriptions"})
	}

	if err := repository.GetGlobalFactory().GetPlanRepository().Delete(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete plan"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
