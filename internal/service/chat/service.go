// Package chat owns conversation persistence and the synchronous send
// pipeline: persist the user's utterance, forward it to the agent, classify
// the reply and fan the results out to storage, the live transcript and the
// playback negotiator.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/adapter/queue"
	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/observability/telemetry"
	"github.com/mauriciomeseguer/configurador/internal/ports"
	"github.com/mauriciomeseguer/configurador/internal/service/classifier"
	"github.com/mauriciomeseguer/configurador/internal/service/playback"
)

// MessageTypeConfig marks transcript entries whose content is a JSON-encoded
// configuration option list rather than prose.
const MessageTypeConfig = "config"

// EmptyReplyNotice is shown when the agent answered but the classifier
// found nothing renderable.
const EmptyReplyNotice = "No se recibió respuesta del agente."

type Service struct {
	users      ports.UserRepository
	chats      ports.ChatRepository
	messages   ports.MessageRepository
	agent      ports.AgentClient
	negotiator *playback.Negotiator
	broadcast  ports.TranscriptBroadcaster
	events     *queue.EventPublisher
	log        *zap.Logger

	mu    sync.Mutex
	turns map[string]*sync.Mutex
}

func NewService(
	users ports.UserRepository,
	chats ports.ChatRepository,
	messages ports.MessageRepository,
	agent ports.AgentClient,
	negotiator *playback.Negotiator,
	broadcast ports.TranscriptBroadcaster,
	events *queue.EventPublisher,
	log *zap.Logger,
) ports.ChatService {
	return &Service{
		users:      users,
		chats:      chats,
		messages:   messages,
		agent:      agent,
		negotiator: negotiator,
		broadcast:  broadcast,
		events:     events,
		log:        log,
		turns:      make(map[string]*sync.Mutex),
	}
}

// NewChatID mirrors the front-end's generateChatId: a millisecond stamp
// plus a short random fragment, sortable and unique enough per user.
func (s *Service) NewChatID() string {
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func (s *Service) SaveMessage(ctx context.Context, chatID, author, content, externalUserID string) error {
	user, err := s.resolveUser(ctx, externalUserID)
	if err != nil {
		return err
	}
	_, err = s.persist(ctx, user, chatID, author, content, "text", "")
	return err
}

func (s *Service) UserChats(ctx context.Context, externalUserID string) ([]domain.ChatSummary, error) {
	user, err := s.resolveUser(ctx, externalUserID)
	if err != nil {
		return nil, err
	}
	return s.chats.FindByUserID(ctx, user.ID)
}

func (s *Service) ChatMessages(ctx context.Context, chatID, externalUserID string) ([]domain.Message, error) {
	if _, err := s.resolveUser(ctx, externalUserID); err != nil {
		return nil, err
	}
	return s.messages.FindByChatID(ctx, chatID)
}

// Send runs one conversational turn. Turns on the same chat are serialized;
// concurrent sends queue up rather than interleave their transcript writes.
// Agent failures stay inside the turn: the transcript gets an inline error
// entry and the caller still receives a reply.
func (s *Service) Send(ctx context.Context, session domain.Session, text string, source domain.UtteranceSource) (*domain.ClassifiedReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &domain.ClassifiedReply{IsEmpty: true}, nil
	}

	user, err := s.resolveUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	turn := s.turnLock(session.ChatID)
	turn.Lock()
	defer turn.Unlock()

	if _, err := s.persist(ctx, user, session.ChatID, domain.AuthorUser, text, "text", string(source)); err != nil {
		return nil, err
	}

	agentReply, err := s.agent.Send(ctx, domain.AgentRequest{
		Mensaje:  text,
		UserID:   session.UserID,
		ChatID:   session.ChatID,
		UserName: session.UserName,
	})
	if err != nil {
		s.log.Warn("Agent webhook failed",
			zap.String("chat_id", session.ChatID),
			zap.Error(err),
		)
		notice := "Error de conexión: " + err.Error()
		if _, perr := s.persist(ctx, user, session.ChatID, domain.AuthorAgent, notice, "text", ""); perr != nil {
			return nil, perr
		}
		return &domain.ClassifiedReply{Texts: []string{notice}}, nil
	}

	reply := classifier.ClassifyTransport(agentReply)
	telemetry.ClassifierRepliesTotal.WithLabelValues(replyShape(reply)).Inc()

	if reply.IsEmpty {
		if _, err := s.persist(ctx, user, session.ChatID, domain.AuthorAgent, EmptyReplyNotice, "text", ""); err != nil {
			return nil, err
		}
		reply.Texts = []string{EmptyReplyNotice}
		return &reply, nil
	}

	for _, t := range reply.Texts {
		if _, err := s.persist(ctx, user, session.ChatID, domain.AuthorAgent, t, "text", ""); err != nil {
			return nil, err
		}
	}

	if len(reply.ConfigOptions) > 0 {
		payload, err := json.Marshal(reply.ConfigOptions)
		if err == nil {
			if _, err := s.persist(ctx, user, session.ChatID, domain.AuthorAgent, string(payload), MessageTypeConfig, ""); err != nil {
				return nil, err
			}
		}
	}

	if reply.Audio != nil {
		s.negotiator.Play(session.ChatID, reply.Audio)
	}

	return &reply, nil
}

// AnnounceLogin pings the agent right after login, the way the front-end
// always has. Failures are logged and dropped.
func (s *Service) AnnounceLogin(ctx context.Context, session domain.Session) {
	if err := s.agent.Announce(ctx, session.UserName, session.ChatID); err != nil {
		s.log.Warn("Login announcement failed",
			zap.String("chat_id", session.ChatID),
			zap.Error(err),
		)
		return
	}
	s.events.SessionStarted(session.UserID, session.UserName, session.ChatID)
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

// persist writes one transcript entry: chat ensured, message stored, chat
// recency touched, live clients notified, event published.
func (s *Service) persist(ctx context.Context, user *domain.User, chatID, author, content, messageType string, source string) (*domain.Message, error) {
	if err := s.chats.CreateIfAbsent(ctx, chatID, user.ID, domain.DefaultChatTitle); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ChatID:      chatID,
		Author:      author,
		Content:     content,
		MessageType: messageType,
		Timestamp:   time.Now(),
	}
	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.chats.Touch(ctx, chatID); err != nil {
		s.log.Warn("Failed to touch chat recency", zap.String("chat_id", chatID), zap.Error(err))
	}

	telemetry.MessagesTotal.WithLabelValues(author, sourceLabel(source)).Inc()
	s.broadcast.Broadcast(chatID, ports.TranscriptEntry{Author: author, Content: content})
	s.events.MessageSaved(*msg, source)

	return msg, nil
}

func (s *Service) turnLock(chatID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.turns[chatID]
	if !ok {
		lock = &sync.Mutex{}
		s.turns[chatID] = lock
	}
	return lock
}

func sourceLabel(source string) string {
	if source == "" {
		return "none"
	}
	return source
}

func replyShape(reply domain.ClassifiedReply) string {
	switch {
	case reply.IsEmpty:
		return "empty"
	case len(reply.ConfigOptions) > 0:
		return "config"
	case reply.Audio != nil && len(reply.Texts) == 0:
		return "audio-only"
	case reply.Audio != nil:
		return "text-audio"
	default:
		return "text"
	}
}
