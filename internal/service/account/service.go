// Package account covers login initialization and the per-user dashboard
// snapshot.
package account

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
	"github.com/mauriciomeseguer/configurador/pkg/config"
)

const (
	recentChatLimit   = 5
	recentConfigLimit = 3
)

type Service struct {
	users          ports.UserRepository
	chats          ports.ChatRepository
	configurations ports.ConfigurationRepository
	wishlist       ports.WishlistRepository
	cache          ports.Cache
	cacheCfg       config.CacheConfig
	log            *zap.Logger
}

func NewService(
	users ports.UserRepository,
	chats ports.ChatRepository,
	configurations ports.ConfigurationRepository,
	wishlist ports.WishlistRepository,
	cache ports.Cache,
	cacheCfg config.CacheConfig,
	log *zap.Logger,
) ports.AccountService {
	return &Service{
		users:          users,
		chats:          chats,
		configurations: configurations,
		wishlist:       wishlist,
		cache:          cache,
		cacheCfg:       cacheCfg,
		log:            log,
	}
}

// InitUser upserts the account on login, refreshing profile fields and the
// last-login stamp. The dashboard snapshot is invalidated so the next read
// reflects the login.
func (s *Service) InitUser(ctx context.Context, user domain.User) (*domain.User, error) {
	user.LastLogin = time.Now()
	if err := s.users.Upsert(ctx, &user); err != nil {
		return nil, err
	}

	stored, err := s.users.FindByExternalID(ctx, user.ExternalID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, domain.ErrUserNotFound
	}

	s.invalidateDashboard(ctx, user.ExternalID)
	return stored, nil
}

func (s *Service) Dashboard(ctx context.Context, externalID string) (*domain.DashboardData, error) {
	cacheKey := "dashboard:" + externalID
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var data domain.DashboardData
		if err := json.Unmarshal([]byte(cached), &data); err == nil {
			return &data, nil
		}
	}

	user, err := s.users.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	chats, err := s.chats.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	configurations, err := s.configurations.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	wishlistCount, err := s.wishlist.CountByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	data := &domain.DashboardData{
		User:                 user,
		RecentChats:          head(chats, recentChatLimit),
		RecentConfigurations: head(configurations, recentConfigLimit),
		WishlistCount:        wishlistCount,
		TotalChats:           len(chats),
		TotalConfigurations:  len(configurations),
	}

	if payload, err := json.Marshal(data); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(payload), s.cacheCfg.DashboardTTL); err != nil {
			s.log.Warn("Failed to cache dashboard snapshot", zap.Error(err))
		}
	}

	return data, nil
}

func (s *Service) invalidateDashboard(ctx context.Context, externalID string) {
	if err := s.cache.Delete(ctx, "dashboard:"+externalID); err != nil {
		s.log.Debug("Failed to invalidate dashboard cache", zap.Error(err))
	}
}

func head[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
