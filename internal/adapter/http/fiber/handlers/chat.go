package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

type ChatHandler struct {
	chats ports.ChatService
	log   *zap.Logger
}

func NewChatHandler(chats ports.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chats: chats,
		log:   log,
	}
}

func (h *ChatHandler) SaveMessage(c *fiber.Ctx) error {
	var req struct {
		ChatID  string `json:"chatId"`
		Author  string `json:"author"`
		Content string `json:"content"`
		UserID  string `json:"userId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid body"})
	}
	if req.ChatID == "" || req.Content == "" || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "chatId, content and userId are required"})
	}

	if err := h.chats.SaveMessage(c.Context(), req.ChatID, req.Author, req.Content, req.UserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *ChatHandler) UserChats(c *fiber.Ctx) error {
	userID := c.Params("userId")

	chats, err := h.chats.UserChats(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "chats": chats})
}

func (h *ChatHandler) ChatMessages(c *fiber.Ctx) error {
	chatID := c.Params("chatId")
	userID := c.Params("userId")

	messages, err := h.chats.ChatMessages(c.Context(), chatID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "messages": messages})
}
