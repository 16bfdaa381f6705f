package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/streamnest-app/streamnest/app/models"
	"github.com/streamnest-app/streamnest/app/repository"
)

// HandleAdminListBanners returns all banners including inactive and scheduled ones.
func HandleAdminListBanners(c *fiber.Ctx) error {
	banners, err := repository.GetGlobalFactory().GetBannerRepository().GetAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load banners"})
	}
	return c.JSON(fiber.Map{"banners": banners})
}

// HandleAdminCreateBanner creates a banner.
func HandleAdminCreateBanner(c *fiber.Ctx) error {
	var banner models.Banner
	if err := c.BodyParser(&banner); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid banner payload"})
	}
	if err := banner.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := repository.GetGlobalFactory().GetBannerRepository().Create(&banner); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create banner"})
	}
	return c.Status(fiber.StatusCreated).JSON(banner)
}

// HandleAdminUpdateBanner updates a banner.
func HandleAdminUpdateBanner(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid banner id"})
	}

	repo := repository.GetGlobalFactory().GetBannerRepository()
	banner, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Banner not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load banner"})
	}

	if err := c.BodyParser(banner); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid banner payload"})
	}
	if err := banner.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := repo.Update(banner); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update banner"})
	}
	return c.JSON(banner)
}

// HandleAdminDeleteBanner deletes a banner.
func HandleAdminDeleteBanner(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid banner id"})
	}
	if err := repository.GetGlobalFactory().GetBannerRepository().Delete(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete banner"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
