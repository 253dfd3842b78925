package ports

import (
	"context"

	"github.com/mauriciomeseguer/configurador/internal/domain"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	FindByExternalID(ctx context.Context, externalID string) (*domain.User, error)
}

type ChatRepository interface {
	CreateIfAbsent(ctx context.Context, chatID string, userID uint, title string) error
	FindByUserID(ctx context.Context, userID uint) ([]domain.ChatSummary, error)
	Touch(ctx context.Context, chatID string) error
}

type MessageRepository interface {
	Save(ctx context.Context, msg *domain.Message) error
	FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error)
}

type ConfigurationRepository interface {
	Save(ctx context.Context, cfg *domain.Configuration) error
	FindByUserID(ctx context.Context, userID uint) ([]domain.Configuration, error)
}

type WishlistRepository interface {
	Save(ctx context.Context, item *domain.WishlistItem) error
	FindByUserID(ctx context.Context, userID uint) ([]domain.WishlistItem, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
}
