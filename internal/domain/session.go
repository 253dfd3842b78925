package domain

// Session is the explicit per-conversation context passed through the send
// pipeline: no ambient globals. UserID is the external identity and must
// resolve to a stored user; sends for unknown users fail with
// ErrUserNotFound, and the websocket relay rejects connections without one.
type Session struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	ChatID   string `json:"chat_id"`
}
