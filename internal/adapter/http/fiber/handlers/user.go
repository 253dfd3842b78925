package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

type UserHandler struct {
	accounts ports.AccountService
	log      *zap.Logger
}

func NewUserHandler(accounts ports.AccountService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		log:      log,
	}
}

// InitUser upserts the authenticated user on login. The body mirrors what
// the hosting platform hands the front-end.
func (h *UserHandler) InitUser(c *fiber.Ctx) error {
	var req struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		ProfileImage string `json:"profileImage"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid body"})
	}
	if req.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "id is required"})
	}

	user, err := h.accounts.InitUser(c.Context(), domain.User{
		ExternalID:   req.ID,
		Username:     req.Name,
		Email:        req.Email,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

func (h *UserHandler) Dashboard(c *fiber.Ctx) error {
	userID := c.Params("userId")

	data, err := h.accounts.Dashboard(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": data})
}
