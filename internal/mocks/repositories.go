package mocks

import (
	"context"

	"github.com/mauriciomeseguer/configurador/internal/domain"
)

// MockUserRepository implements ports.UserRepository with func fields.
type MockUserRepository struct {
	UpsertFunc           func(ctx context.Context, user *domain.User) error
	FindByExternalIDFunc func(ctx context.Context, externalID string) (*domain.User, error)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	if m.FindByExternalIDFunc != nil {
		return m.FindByExternalIDFunc(ctx, externalID)
	}
	return nil, nil
}

// MockChatRepository implements ports.ChatRepository with func fields.
type MockChatRepository struct {
	CreateIfAbsentFunc func(ctx context.Context, chatID string, userID uint, title string) error
	FindByUserIDFunc   func(ctx context.Context, userID uint) ([]domain.ChatSummary, error)
	TouchFunc          func(ctx context.Context, chatID string) error
}

func (m *MockChatRepository) CreateIfAbsent(ctx context.Context, chatID string, userID uint, title string) error {
	if m.CreateIfAbsentFunc != nil {
		return m.CreateIfAbsentFunc(ctx, chatID, userID, title)
	}
	return nil
}

func (m *MockChatRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.ChatSummary, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockChatRepository) Touch(ctx context.Context, chatID string) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, chatID)
	}
	return nil
}

// MockMessageRepository implements ports.MessageRepository with func fields.
type MockMessageRepository struct {
	SaveFunc         func(ctx context.Context, msg *domain.Message) error
	FindByChatIDFunc func(ctx context.Context, chatID string) ([]domain.Message, error)
}

func (m *MockMessageRepository) Save(ctx context.Context, msg *domain.Message) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, msg)
	}
	return nil
}

func (m *MockMessageRepository) FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error) {
	if m.FindByChatIDFunc != nil {
		return m.FindByChatIDFunc(ctx, chatID)
	}
	return nil, nil
}

// MockConfigurationRepository implements ports.ConfigurationRepository with
// func fields.
type MockConfigurationRepository struct {
	SaveFunc         func(ctx context.Context, cfg *domain.Configuration) error
	FindByUserIDFunc func(ctx context.Context, userID uint) ([]domain.Configuration, error)
}

func (m *MockConfigurationRepository) Save(ctx context.Context, cfg *domain.Configuration) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, cfg)
	}
	return nil
}

func (m *MockConfigurationRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Configuration, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

// MockWishlistRepository implements ports.WishlistRepository with func
// fields.
type MockWishlistRepository struct {
	SaveFunc          func(ctx context.Context, item *domain.WishlistItem) error
	FindByUserIDFunc  func(ctx context.Context, userID uint) ([]domain.WishlistItem, error)
	CountByUserIDFunc func(ctx context.Context, userID uint) (int64, error)
}

func (m *MockWishlistRepository) Save(ctx context.Context, item *domain.WishlistItem) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, item)
	}
	return nil
}

func (m *MockWishlistRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.WishlistItem, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockWishlistRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	if m.CountByUserIDFunc != nil {
		return m.CountByUserIDFunc(ctx, userID)
	}
	return 0, nil
}
