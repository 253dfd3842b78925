package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

// SendHandler drives the full send pipeline over plain HTTP for clients
// without a websocket: persist, forward to the agent, classify, reply.
type SendHandler struct {
	chats ports.ChatService
	log   *zap.Logger
}

func NewSendHandler(chats ports.ChatService, log *zap.Logger) *SendHandler {
	return &SendHandler{
		chats: chats,
		log:   log,
	}
}

func (h *SendHandler) SendMessage(c *fiber.Ctx) error {
	var req struct {
		Mensaje  string `json:"mensaje"`
		UserID   string `json:"userId"`
		ChatID   string `json:"chatId"`
		UserName string `json:"userName"`
		Source   string `json:"source"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid body"})
	}
	if req.Mensaje == "" || req.UserID == "" || req.ChatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "mensaje, userId and chatId are required"})
	}

	source := domain.SourceTyped
	if req.Source == string(domain.SourceTranscribed) {
		source = domain.SourceTranscribed
	}

	session := domain.Session{
		UserID:   req.UserID,
		UserName: req.UserName,
		ChatID:   req.ChatID,
	}

	reply, err := h.chats.Send(c.Context(), session, req.Mensaje, source)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "reply": reply})
}
