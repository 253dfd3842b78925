package account

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/mocks"
	"github.com/mauriciomeseguer/configurador/pkg/config"
)

func knownUsers() *mocks.MockUserRepository {
	return &mocks.MockUserRepository{
		FindByExternalIDFunc: func(ctx context.Context, externalID string) (*domain.User, error) {
			if externalID == "known" {
				return &domain.User{ID: 7, ExternalID: "known", Username: "Ana"}, nil
			}
			return nil, nil
		},
	}
}

func TestInitUserUpsertsAndReturnsStoredUser(t *testing.T) {
	var upserted *domain.User
	users := knownUsers()
	users.UpsertFunc = func(ctx context.Context, user *domain.User) error {
		upserted = user
		return nil
	}
	cache := mocks.NewMockCache()

	svc := NewService(users, &mocks.MockChatRepository{}, &mocks.MockConfigurationRepository{},
		&mocks.MockWishlistRepository{}, cache, config.CacheConfig{}, zap.NewNop())

	user, err := svc.InitUser(context.Background(), domain.User{ExternalID: "known", Username: "Ana"})
	if err != nil {
		t.Fatalf("InitUser: %v", err)
	}

	if upserted == nil || upserted.LastLogin.IsZero() {
		t.Error("upsert should stamp last_login")
	}
	if user.ID != 7 {
		t.Errorf("expected the stored record back, got %+v", user)
	}
}

func TestDashboardAggregatesAndTruncates(t *testing.T) {
	chats := &mocks.MockChatRepository{
		FindByUserIDFunc: func(ctx context.Context, userID uint) ([]domain.ChatSummary, error) {
			out := make([]domain.ChatSummary, 8)
			return out, nil
		},
	}
	configurations := &mocks.MockConfigurationRepository{
		FindByUserIDFunc: func(ctx context.Context, userID uint) ([]domain.Configuration, error) {
			return make([]domain.Configuration, 5), nil
		},
	}
	wishlist := &mocks.MockWishlistRepository{
		CountByUserIDFunc: func(ctx context.Context, userID uint) (int64, error) {
			return 2, nil
		},
	}

	svc := NewService(knownUsers(), chats, configurations, wishlist,
		mocks.NewMockCache(), config.CacheConfig{DashboardTTL: time.Minute}, zap.NewNop())

	data, err := svc.Dashboard(context.Background(), "known")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if len(data.RecentChats) != 5 || data.TotalChats != 8 {
		t.Errorf("chats: recent=%d total=%d", len(data.RecentChats), data.TotalChats)
	}
	if len(data.RecentConfigurations) != 3 || data.TotalConfigurations != 5 {
		t.Errorf("configurations: recent=%d total=%d", len(data.RecentConfigurations), data.TotalConfigurations)
	}
	if data.WishlistCount != 2 {
		t.Errorf("wishlist count: %d", data.WishlistCount)
	}
}

func TestDashboardServesCachedSnapshot(t *testing.T) {
	snapshot := domain.DashboardData{TotalChats: 42}
	payload, _ := json.Marshal(snapshot)
	cache := mocks.NewMockCache()
	cache.Set(context.Background(), "dashboard:known", string(payload), 0)

	users := knownUsers()
	users.FindByExternalIDFunc = func(ctx context.Context, externalID string) (*domain.User, error) {
		t.Error("cached dashboards must not hit the store")
		return nil, nil
	}

	svc := NewService(users, &mocks.MockChatRepository{}, &mocks.MockConfigurationRepository{},
		&mocks.MockWishlistRepository{}, cache, config.CacheConfig{}, zap.NewNop())

	data, err := svc.Dashboard(context.Background(), "known")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if data.TotalChats != 42 {
		t.Errorf("expected cached snapshot, got %+v", data)
	}
}

func TestDashboardUnknownUser(t *testing.T) {
	svc := NewService(knownUsers(), &mocks.MockChatRepository{}, &mocks.MockConfigurationRepository{},
		&mocks.MockWishlistRepository{}, mocks.NewMockCache(), config.CacheConfig{}, zap.NewNop())

	if _, err := svc.Dashboard(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestInitUserInvalidatesDashboardCache(t *testing.T) {
	cache := mocks.NewMockCache()
	cache.Set(context.Background(), "dashboard:known", "stale", 0)

	svc := NewService(knownUsers(), &mocks.MockChatRepository{}, &mocks.MockConfigurationRepository{},
		&mocks.MockWishlistRepository{}, cache, config.CacheConfig{}, zap.NewNop())

	if _, err := svc.InitUser(context.Background(), domain.User{ExternalID: "known"}); err != nil {
		t.Fatalf("InitUser: %v", err)
	}

	if cached, _ := cache.Get(context.Background(), "dashboard:known"); cached != "" {
		t.Error("login should drop the stale dashboard snapshot")
	}
}
