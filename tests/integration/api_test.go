package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/adapter/http/fiber/handlers"
	"github.com/mauriciomeseguer/configurador/internal/adapter/http/fiber/middleware"
	"github.com/mauriciomeseguer/configurador/internal/adapter/queue"
	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/mocks"
	"github.com/mauriciomeseguer/configurador/internal/service/account"
	"github.com/mauriciomeseguer/configurador/internal/service/chat"
	"github.com/mauriciomeseguer/configurador/internal/service/playback"
	"github.com/mauriciomeseguer/configurador/pkg/config"
)

// setupTestApp wires the real handlers and services over in-memory mocks.
func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()

	users := &mocks.MockUserRepository{
		FindByExternalIDFunc: func(ctx context.Context, externalID string) (*domain.User, error) {
			if externalID == "ana@example.com" {
				return &domain.User{ID: 1, ExternalID: "ana@example.com", Username: "Ana"}, nil
			}
			return nil, nil
		},
	}
	chatRepo := &mocks.MockChatRepository{}
	messages := &mocks.MockMessageRepository{}
	agent := &mocks.MockAgentClient{
		SendFunc: func(ctx context.Context, req domain.AgentRequest) (*domain.AgentReply, error) {
			return &domain.AgentReply{
				Body:        []byte(`{"output":"Hola Ana"}`),
				ContentType: "application/json",
			}, nil
		},
	}
	events := queue.NewEventPublisher(mocks.NewMockQueue(), logger)
	negotiator := playback.NewNegotiator(&mocks.MockAudioPlayer{}, config.PlaybackConfig{}, logger)

	accountService := account.NewService(users, chatRepo, &mocks.MockConfigurationRepository{},
		&mocks.MockWishlistRepository{}, mocks.NewMockCache(), config.CacheConfig{}, logger)
	chatService := chat.NewService(users, chatRepo, messages, agent, negotiator,
		&mocks.MockBroadcaster{}, events, logger)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	api := app.Group("/api")
	userHandler := handlers.NewUserHandler(accountService, logger)
	api.Post("/init-user", userHandler.InitUser)
	api.Get("/dashboard/:userId", userHandler.Dashboard)

	chatHandler := handlers.NewChatHandler(chatService, logger)
	api.Post("/save-message", chatHandler.SaveMessage)
	api.Get("/chats/:userId", chatHandler.UserChats)

	sendHandler := handlers.NewSendHandler(chatService, logger)
	api.Post("/send-message", sendHandler.SendMessage)

	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	return resp, result
}

// TestAPI_HealthCheck tests the liveness endpoint
func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

// TestAPI_InitUser tests the login upsert endpoint
func TestAPI_InitUser(t *testing.T) {
	app := setupTestApp(t)

	resp, result := postJSON(t, app, "/api/init-user", map[string]string{
		"id":    "ana@example.com",
		"name":  "Ana",
		"email": "ana@example.com",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if result["success"] != true {
		t.Errorf("Expected success envelope, got %v", result)
	}
	if result["user"] == nil {
		t.Error("Expected the stored user in the reply")
	}
}

// TestAPI_UnknownUser tests the original not-found behavior
func TestAPI_UnknownUser(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chats/ghost", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["success"] != false || result["error"] != "Usuario no encontrado" {
		t.Errorf("Expected the original error envelope, got %v", result)
	}
}

// TestAPI_SendMessage tests the full send pipeline over HTTP
func TestAPI_SendMessage(t *testing.T) {
	app := setupTestApp(t)

	resp, result := postJSON(t, app, "/api/send-message", map[string]string{
		"mensaje":  "quiero un pc para jugar",
		"userId":   "ana@example.com",
		"chatId":   "c1",
		"userName": "Ana",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if result["success"] != true {
		t.Fatalf("Expected success envelope, got %v", result)
	}

	reply, ok := result["reply"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected a classified reply, got %v", result)
	}
	texts, _ := reply["texts"].([]interface{})
	if len(texts) != 1 || texts[0] != "Hola Ana" {
		t.Errorf("Unexpected reply texts: %v", texts)
	}
}

// TestAPI_SaveMessageValidation tests required-field handling
func TestAPI_SaveMessageValidation(t *testing.T) {
	app := setupTestApp(t)

	resp, result := postJSON(t, app, "/api/save-message", map[string]string{
		"author": "Tú",
	})

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
	if result["success"] != false {
		t.Errorf("Expected failure envelope, got %v", result)
	}
}
