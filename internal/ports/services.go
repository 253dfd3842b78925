package ports

import (
	"context"
	"time"

	"github.com/mauriciomeseguer/configurador/internal/domain"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

// AgentClient talks to the external workflow webhook. Send returns the raw
// transport reply; Announce is the fire-and-forget login notification the
// original front-end issues (reply ignored).
type AgentClient interface {
	Send(ctx context.Context, req domain.AgentRequest) (*domain.AgentReply, error)
	Announce(ctx context.Context, userName, chatID string) error
}

// AudioPlayer is the playback negotiator's output port. The concrete player
// lives on the other side of a websocket (the browser's media stack); its
// readiness/autoplay/ended signals come back as discrete events.
type AudioPlayer interface {
	PlayInline(chatID, sessionID, mimeType string, data []byte) error
	PlayRemote(chatID, sessionID, url string) error
	Release(chatID, sessionID string)
}

// RecognitionEngine starts and stops a speech-recognition stream. Calls must
// not overlap; the voice capture loop's debounce guard enforces that.
type RecognitionEngine interface {
	Start() error
	Stop() error
}

// TranscriptBroadcaster pushes live transcript entries to clients attached
// to a chat.
type TranscriptBroadcaster interface {
	Broadcast(chatID string, entry TranscriptEntry)
}

type TranscriptEntry struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type AccountService interface {
	InitUser(ctx context.Context, user domain.User) (*domain.User, error)
	Dashboard(ctx context.Context, externalID string) (*domain.DashboardData, error)
}

type ChatService interface {
	NewChatID() string
	SaveMessage(ctx context.Context, chatID, author, content, externalUserID string) error
	UserChats(ctx context.Context, externalUserID string) ([]domain.ChatSummary, error)
	ChatMessages(ctx context.Context, chatID, externalUserID string) ([]domain.Message, error)
	Send(ctx context.Context, session domain.Session, text string, source domain.UtteranceSource) (*domain.ClassifiedReply, error)
	AnnounceLogin(ctx context.Context, session domain.Session)
}

type ConfigurationService interface {
	Save(ctx context.Context, externalUserID, chatID, title string, components []domain.Component, totalPrice float64) (uint, error)
	ListByUser(ctx context.Context, externalUserID string) ([]domain.Configuration, error)
	AddToWishlist(ctx context.Context, externalUserID, componentName, componentData string, priceAlert *float64) error
	Wishlist(ctx context.Context, externalUserID string) ([]domain.WishlistItem, error)
}
