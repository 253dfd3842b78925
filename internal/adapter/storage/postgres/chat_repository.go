package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

type ChatRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewChatRepository(db *gorm.DB, log *zap.Logger) ports.ChatRepository {
	return &ChatRepository{
		db:  db,
		log: log,
	}
}

func (r *ChatRepository) CreateIfAbsent(ctx context.Context, chatID string, userID uint, title string) error {
	if title == "" {
		title = domain.DefaultChatTitle
	}
	chat := domain.Chat{
		ChatID: chatID,
		UserID: userID,
		Title:  title,
		Status: domain.ChatStatusActive,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoNothing: true,
	}).Create(&chat).Error
}

// FindByUserID lists a user's chats with their message counts, most
// recently active first.
func (r *ChatRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.ChatSummary, error) {
	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&domain.Message{}).
			Where("chat_id = ?", chat.ChatID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.ChatSummary{Chat: chat, MessageCount: count})
	}
	return summaries, nil
}

// Touch bumps a chat's updated_at so it sorts to the top of the history.
func (r *ChatRepository) Touch(ctx context.Context, chatID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("chat_id = ?", chatID).
		Update("updated_at", time.Now()).Error
}
