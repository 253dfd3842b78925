package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

type ConfigurationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewConfigurationRepository(db *gorm.DB, log *zap.Logger) ports.ConfigurationRepository {
	return &ConfigurationRepository{
		db:  db,
		log: log,
	}
}

func (r *ConfigurationRepository) Save(ctx context.Context, cfg *domain.Configuration) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *ConfigurationRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Configuration, error) {
	var configs []domain.Configuration
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&configs).Error
	if err != nil {
		return nil, err
	}
	return configs, nil
}
