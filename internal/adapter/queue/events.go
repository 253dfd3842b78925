package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

// Subjects carried over the message queue. chat.message.saved is consumed
// by every server instance for cross-instance transcript fan-out; the
// other subjects are for external consumers (analytics, CRM sync).
const (
	SubjectMessageSaved       = "chat.message.saved"
	SubjectConfigurationSaved = "chat.configuration.saved"
	SubjectSessionStarted     = "chat.session.started"
)

type MessageSavedEvent struct {
	Origin    string    `json:"origin"`
	ChatID    string    `json:"chat_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ConfigurationSavedEvent struct {
	UserID    uint      `json:"user_id"`
	ChatID    string    `json:"chat_id,omitempty"`
	Title     string    `json:"title"`
	Total     float64   `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionStartedEvent struct {
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	ChatID    string    `json:"chat_id"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher wraps a MessageQueue with typed, fire-and-forget
// publishing. Queue failures are logged and swallowed: the chat flow
// never blocks on the broker. Each publisher carries a process-unique
// origin so an instance can ignore its own events on subjects it also
// consumes.
type EventPublisher struct {
	queue  MessageQueue
	origin string
	log    *zap.Logger
}

func NewEventPublisher(q MessageQueue, log *zap.Logger) *EventPublisher {
	return &EventPublisher{queue: q, origin: uuid.NewString(), log: log}
}

func (p *EventPublisher) MessageSaved(msg domain.Message, source string) {
	p.publish(SubjectMessageSaved, MessageSavedEvent{
		Origin:    p.origin,
		ChatID:    msg.ChatID,
		Author:    msg.Author,
		Content:   msg.Content,
		Source:    source,
		Timestamp: time.Now().UTC(),
	})
}

func (p *EventPublisher) ConfigurationSaved(cfg domain.Configuration) {
	p.publish(SubjectConfigurationSaved, ConfigurationSavedEvent{
		UserID:    cfg.UserID,
		ChatID:    cfg.ChatID,
		Title:     cfg.Title,
		Total:     cfg.TotalPrice,
		Timestamp: time.Now().UTC(),
	})
}

func (p *EventPublisher) SessionStarted(userID, userName, chatID string) {
	p.publish(SubjectSessionStarted, SessionStartedEvent{
		UserID:    userID,
		UserName:  userName,
		ChatID:    chatID,
		Timestamp: time.Now().UTC(),
	})
}

// SubscribeTranscriptFanout relays chat.message.saved events published by
// other instances into the local broadcaster, so clients attached to any
// instance see the full transcript. Events carrying this publisher's own
// origin already reached local clients directly and are skipped.
func (p *EventPublisher) SubscribeTranscriptFanout(broadcast ports.TranscriptBroadcaster) error {
	if p == nil || p.queue == nil {
		return nil
	}

	return p.queue.Subscribe(SubjectMessageSaved, func(data []byte) error {
		var event MessageSavedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return err
		}
		if event.Origin == p.origin {
			return nil
		}

		broadcast.Broadcast(event.ChatID, ports.TranscriptEntry{
			Author:  event.Author,
			Content: event.Content,
		})
		return nil
	})
}

func (p *EventPublisher) publish(subject string, event interface{}) {
	if p == nil || p.queue == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to marshal queue event", zap.String("subject", subject), zap.Error(err))
		return
	}

	if err := p.queue.Publish(subject, data); err != nil {
		p.log.Error("Failed to publish queue event", zap.String("subject", subject), zap.Error(err))
	}
}
