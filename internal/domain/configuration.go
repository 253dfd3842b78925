package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Component is a single build line inside a configuration option. The agent
// drifts between field name pairs (tipo/nombre, modelo/descripcion), so both
// spellings survive serialization.
type Component struct {
	Type        string `json:"tipo,omitempty"`
	Name        string `json:"nombre,omitempty"`
	Model       string `json:"modelo,omitempty"`
	Description string `json:"descripcion,omitempty"`
	Price       string `json:"precio,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Label picks the component's display label across the drifting field pairs.
func (c Component) Label() string {
	if c.Type != "" {
		return c.Type
	}
	return c.Name
}

// Detail picks the component's description across the drifting field pairs.
func (c Component) Detail() string {
	if c.Model != "" {
		return c.Model
	}
	return c.Description
}

// ConfigOption is one complete build proposal (e.g. "AMD, 950€"). An option
// with no components is not renderable and never leaves the classifier.
type ConfigOption struct {
	Name       string      `json:"nombre,omitempty"`
	Total      string      `json:"total,omitempty"`
	Components []Component `json:"componentes"`
}

// ComponentList stores components JSON-serialized in a single column and
// parses them back on read.
type ComponentList []Component

func (l ComponentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ComponentList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported components column type %T", src)
	}
}

type Configuration struct {
	ID         uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uint          `json:"user_id" gorm:"not null;index"`
	ChatID     string        `json:"chat_id"`
	Title      string        `json:"title" gorm:"not null"`
	Components ComponentList `json:"components" gorm:"type:text;not null"`
	TotalPrice float64       `json:"total_price"`
	Currency   string        `json:"currency" gorm:"default:'EUR'"`
	Status     string        `json:"status" gorm:"default:'draft'"`
	IsFavorite bool          `json:"is_favorite"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (Configuration) TableName() string { return "configurations" }

type WishlistItem struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        uint      `json:"user_id" gorm:"not null;index"`
	ComponentName string    `json:"component_name" gorm:"not null"`
	ComponentData string    `json:"component_data" gorm:"type:text;not null"`
	PriceAlert    *float64  `json:"price_alert"`
	CreatedAt     time.Time `json:"created_at"`
}

func (WishlistItem) TableName() string { return "wishlist" }
