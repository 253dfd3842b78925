package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/observability/telemetry"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

type MessageRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewMessageRepository(db *gorm.DB, log *zap.Logger) ports.MessageRepository {
	return &MessageRepository{
		db:  db,
		log: log,
	}
}

func (r *MessageRepository) Save(ctx context.Context, msg *domain.Message) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Create(msg).Error
	telemetry.DatabaseLatency.Observe(time.Since(start).Seconds())
	return err
}

func (r *MessageRepository) FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
