package mocks

import (
	"context"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

// MockAgentClient implements ports.AgentClient with func fields.
type MockAgentClient struct {
	SendFunc     func(ctx context.Context, req domain.AgentRequest) (*domain.AgentReply, error)
	AnnounceFunc func(ctx context.Context, userName, chatID string) error
}

func (m *MockAgentClient) Send(ctx context.Context, req domain.AgentRequest) (*domain.AgentReply, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, req)
	}
	return &domain.AgentReply{Body: []byte(`{}`), ContentType: "application/json"}, nil
}

func (m *MockAgentClient) Announce(ctx context.Context, userName, chatID string) error {
	if m.AnnounceFunc != nil {
		return m.AnnounceFunc(ctx, userName, chatID)
	}
	return nil
}

// MockAudioPlayer records playback directives.
type MockAudioPlayer struct {
	PlayInlineFunc func(chatID, sessionID, mimeType string, data []byte) error
	PlayRemoteFunc func(chatID, sessionID, url string) error
	ReleaseFunc    func(chatID, sessionID string)
}

func (m *MockAudioPlayer) PlayInline(chatID, sessionID, mimeType string, data []byte) error {
	if m.PlayInlineFunc != nil {
		return m.PlayInlineFunc(chatID, sessionID, mimeType, data)
	}
	return nil
}

func (m *MockAudioPlayer) PlayRemote(chatID, sessionID, url string) error {
	if m.PlayRemoteFunc != nil {
		return m.PlayRemoteFunc(chatID, sessionID, url)
	}
	return nil
}

func (m *MockAudioPlayer) Release(chatID, sessionID string) {
	if m.ReleaseFunc != nil {
		m.ReleaseFunc(chatID, sessionID)
	}
}

// MockBroadcaster collects transcript entries per chat.
type MockBroadcaster struct {
	BroadcastFunc func(chatID string, entry ports.TranscriptEntry)
	Entries       []ports.TranscriptEntry
}

func (m *MockBroadcaster) Broadcast(chatID string, entry ports.TranscriptEntry) {
	if m.BroadcastFunc != nil {
		m.BroadcastFunc(chatID, entry)
		return
	}
	m.Entries = append(m.Entries, entry)
}

// MockRecognitionEngine implements ports.RecognitionEngine with func fields.
type MockRecognitionEngine struct {
	StartFunc func() error
	StopFunc  func() error
}

func (m *MockRecognitionEngine) Start() error {
	if m.StartFunc != nil {
		return m.StartFunc()
	}
	return nil
}

func (m *MockRecognitionEngine) Stop() error {
	if m.StopFunc != nil {
		return m.StopFunc()
	}
	return nil
}
