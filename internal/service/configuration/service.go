// Package configuration stores finished PC builds and the component
// wishlist.
package configuration

import (
	"context"

	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/adapter/queue"
	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

type Service struct {
	users          ports.UserRepository
	configurations ports.ConfigurationRepository
	wishlist       ports.WishlistRepository
	cache          ports.Cache
	events         *queue.EventPublisher
	log            *zap.Logger
}

func NewService(
	users ports.UserRepository,
	configurations ports.ConfigurationRepository,
	wishlist ports.WishlistRepository,
	cache ports.Cache,
	events *queue.EventPublisher,
	log *zap.Logger,
) ports.ConfigurationService {
	return &Service{
		users:          users,
		configurations: configurations,
		wishlist:       wishlist,
		cache:          cache,
		events:         events,
		log:            log,
	}
}

func (s *Service) Save(ctx context.Context, externalUserID, chatID, title string, components []domain.Component, totalPrice float64) (uint, error) {
	user, err := s.resolveUser(ctx, externalUserID)
	if err != nil {
		return 0, err
	}

	cfg := &domain.Configuration{
		UserID:     user.ID,
		ChatID:     chatID,
		Title:      title,
		Components: components,
		TotalPrice: totalPrice,
	}
	if err := s.configurations.Save(ctx, cfg); err != nil {
		return 0, err
	}

	s.invalidateDashboard(ctx, externalUserID)
	s.events.ConfigurationSaved(*cfg)
	return cfg.ID, nil
}

func (s *Service) ListByUser(ctx context.Context, externalUserID string) ([]domain.Configuration, error) {
	user, err := s.resolveUser(ctx, externalUserID)
	if err != nil {
		return nil, err
	}
	return s.configurations.FindByUserID(ctx, user.ID)
}

func (s *Service) AddToWishlist(ctx context.Context, externalUserID, componentName, componentData string, priceAlert *float64) error {
	user, err := s.resolveUser(ctx, externalUserID)
	if err != nil {
		return err
	}

	item := &domain.WishlistItem{
		UserID:        user.ID,
		ComponentName: componentName,
		ComponentData: componentData,
		PriceAlert:    priceAlert,
	}
	if err := s.wishlist.Save(ctx, item); err != nil {
		return err
	}

	s.invalidateDashboard(ctx, externalUserID)
	return nil
}

func (s *Service) Wishlist(ctx context.Context, externalUserID string) ([]domain.WishlistItem, error) {
	user, err := s.resolveUser(ctx, externalUserID)
	if err != nil {
		return nil, err
	}
	return s.wishlist.FindByUserID(ctx, user.ID)
}

func (s *Service) resolveUser(ctx context.Context, externalID string) (*domain.User, error) {
	user, err := s.users.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// Dashboard snapshots include configuration and wishlist counts, so writes
// here invalidate the account cache entry.
func (s *Service) invalidateDashboard(ctx context.Context, externalID string) {
	if err := s.cache.Delete(ctx, "dashboard:"+externalID); err != nil {
		s.log.Debug("Failed to invalidate dashboard cache", zap.Error(err))
	}
}
