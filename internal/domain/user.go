package domain

import (
	"errors"
	"time"
)

// ErrUserNotFound is surfaced through the gateway as the original
// "Usuario no encontrado" error string.
var ErrUserNotFound = errors.New("Usuario no encontrado")

// User is an account initialized from the login form. ExternalID is the
// identity the browser knows the user by (the login email); ID is the
// store's own key.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ExternalID   string    `json:"external_id" gorm:"uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"not null"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profile_image"`
	Preferences  string    `json:"preferences" gorm:"default:'{}'"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login"`
}

func (User) TableName() string { return "users" }

// DashboardData is the per-user landing snapshot.
type DashboardData struct {
	User                 *User           `json:"user"`
	RecentChats          []ChatSummary   `json:"recent_chats"`
	RecentConfigurations []Configuration `json:"recent_configurations"`
	WishlistCount        int64           `json:"wishlist_count"`
	TotalChats           int             `json:"total_chats"`
	TotalConfigurations  int             `json:"total_configurations"`
}
