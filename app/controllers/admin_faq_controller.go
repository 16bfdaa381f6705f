package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/streamnest-app/streamnest/app/models"
	"github.com/streamnest-app/streamnest/app/repository"
)

// HandleAdminListFAQs returns all help-center entries including inactive ones.
func HandleAdminListFAQs(c *fiber.Ctx) error {
	entries, err := repository.GetGlobalFactory().GetFAQRepository().GetAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load FAQ entries"})
	}
	return c.JSON(fiber.Map{"faqs": entries})
}

// HandleAdminCreateFAQ creates a help-center entry.
func HandleAdminCreateFAQ(c *fiber.Ctx) error {
	var entry models.FAQEntry
	if err := c.BodyParser(&entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid FAQ payload"})
	}
	if err := entry.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := repository.GetGlobalFactory().GetFAQRepository().Create(&entry); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create FAQ entry"})
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// HandleAdminUpdateFAQ updates a help-center entry.
func HandleAdminUpdateFAQ(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid FAQ id"})
	}

	repo := repository.GetGlobalFactory().GetFAQRepository()
	entry, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "FAQ entry not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load FAQ entry"})
	}

	if err := c.BodyParser(entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid FAQ payload"})
	}
	if err := entry.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := repo.Update(entry); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update FAQ entry"})
	}
	return c.JSON(entry)
}

// HandleAdminDeleteFAQ deletes a help-center entry.
func HandleAdminDeleteFAQ(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid FAQ id"})
	}
	if err := repository.GetGlobalFactory().GetFAQRepository().Delete(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete FAQ entry"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
