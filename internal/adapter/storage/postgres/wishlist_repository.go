package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

type WishlistRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewWishlistRepository(db *gorm.DB, log *zap.Logger) ports.WishlistRepository {
	return &WishlistRepository{
		db:  db,
		log: log,
	}
}

func (r *WishlistRepository) Save(ctx context.Context, item *domain.WishlistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *WishlistRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.WishlistItem, error) {
	var items []domain.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *WishlistRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.WishlistItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
