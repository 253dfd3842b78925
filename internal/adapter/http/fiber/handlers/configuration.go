package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

type ConfigurationHandler struct {
	configurations ports.ConfigurationService
	log            *zap.Logger
}

func NewConfigurationHandler(configurations ports.ConfigurationService, log *zap.Logger) *ConfigurationHandler {
	return &ConfigurationHandler{
		configurations: configurations,
		log:            log,
	}
}

func (h *ConfigurationHandler) Save(c *fiber.Ctx) error {
	var req struct {
		UserID     string             `json:"userId"`
		ChatID     string             `json:"chatId"`
		Title      string             `json:"title"`
		Components []domain.Component `json:"components"`
		TotalPrice float64            `json:"totalPrice"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid body"})
	}
	if req.UserID == "" || req.Title == "" || len(req.Components) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "userId, title and components are required"})
	}

	configID, err := h.configurations.Save(c.Context(), req.UserID, req.ChatID, req.Title, req.Components, req.TotalPrice)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "configId": configID})
}

func (h *ConfigurationHandler) List(c *fiber.Ctx) error {
	userID := c.Params("userId")

	configurations, err := h.configurations.ListByUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "configurations": configurations})
}

func (h *ConfigurationHandler) AddToWishlist(c *fiber.Ctx) error {
	var req struct {
		UserID        string   `json:"userId"`
		ComponentName string   `json:"componentName"`
		ComponentData string   `json:"componentData"`
		PriceAlert    *float64 `json:"priceAlert"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid body"})
	}
	if req.UserID == "" || req.ComponentName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "userId and componentName are required"})
	}

	if err := h.configurations.AddToWishlist(c.Context(), req.UserID, req.ComponentName, req.ComponentData, req.PriceAlert); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *ConfigurationHandler) Wishlist(c *fiber.Ctx) error {
	userID := c.Params("userId")

	items, err := h.configurations.Wishlist(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "wishlist": items})
}
