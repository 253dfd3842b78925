package websocket

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/ports"
	"github.com/mauriciomeseguer/configurador/internal/service/playback"
	"github.com/mauriciomeseguer/configurador/internal/service/voice"
	"github.com/mauriciomeseguer/configurador/pkg/config"
)

// Relay is the per-connection event pump. Each connection gets its own
// voice capture loop; playback events are forwarded to the chat's shared
// negotiator session.
type Relay struct {
	hub        *Hub
	chats      ports.ChatService
	negotiator *playback.Negotiator
	voiceCfg   config.VoiceConfig
	log        *zap.Logger
}

func NewRelay(hub *Hub, chats ports.ChatService, negotiator *playback.Negotiator, voiceCfg config.VoiceConfig, log *zap.Logger) *Relay {
	return &Relay{
		hub:        hub,
		chats:      chats,
		negotiator: negotiator,
		voiceCfg:   voiceCfg,
		log:        log,
	}
}

// Register mounts the chat websocket on path, guarding against plain HTTP
// requests.
func (r *Relay) Register(app *fiber.App, path string) {
	app.Use(path, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get(path, websocket.New(r.Handle))
}

func (r *Relay) Handle(c *websocket.Conn) {
	chatID := c.Query("chatId")
	userID := c.Query("userId")
	userName := c.Query("userName")
	if chatID == "" || userID == "" {
		c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "chatId and userId are required"))
		c.Close()
		return
	}

	client := r.hub.attach(c, chatID, userID)
	defer r.hub.detach(client)

	session := domain.Session{UserID: userID, UserName: userName, ChatID: chatID}

	// The front-end opens its first connection with announce=1 right after
	// login; reconnects do not re-announce.
	if c.Query("announce") == "1" {
		go r.chats.AnnounceLogin(context.Background(), session)
	}

	engine := &socketEngine{client: client, language: r.voiceCfg.Language}
	capture := voice.NewCapture(engine, r.voiceCfg.ToggleDebounce,
		func(text string) {
			if _, err := r.chats.Send(context.Background(), session, text, domain.SourceTranscribed); err != nil {
				r.log.Error("Failed to send transcribed utterance",
					zap.String("chat_id", chatID),
					zap.Error(err),
				)
			}
		},
		func(notice string) {
			r.hub.Broadcast(chatID, ports.TranscriptEntry{
				Author:  domain.AuthorSystem,
				Content: notice,
			})
		},
		r.log,
	)

	for {
		_, payload, err := c.ReadMessage()
		if err != nil {
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			r.log.Debug("Ignoring malformed websocket frame", zap.Error(err))
			continue
		}

		switch frame.Type {
		case frameVoiceToggle:
			capture.Toggle()
		case frameVoiceResult:
			capture.HandleResult(frame.Transcript, frame.Final)
		case frameVoiceError:
			capture.HandleError(frame.Code)
		case frameVoiceEnd:
			capture.HandleEnd()
		case framePlaybackEvent:
			r.negotiator.HandleEvent(chatID, frame.SessionID, playback.Event(frame.Event))
		default:
			r.log.Debug("Ignoring unknown websocket frame", zap.String("type", frame.Type))
		}
	}
}

// StatusPusher adapts the hub into a playback status listener so every
// transition reaches the chat's clients.
func StatusPusher(hub *Hub) playback.StatusListener {
	return func(status playback.Status) {
		hub.Push(status.ChatID, struct {
			Type string `json:"type"`
			playback.Status
		}{Type: framePlaybackStatus, Status: status})
	}
}

// socketEngine implements ports.RecognitionEngine by directing the
// connection's browser to start or stop the Web Speech recognizer.
type socketEngine struct {
	client   *Client
	language string
}

func (e *socketEngine) Start() error {
	e.client.sendDirect(voiceDirectiveFrame{Type: frameVoiceStart, Language: e.language})
	return nil
}

func (e *socketEngine) Stop() error {
	e.client.sendDirect(voiceDirectiveFrame{Type: frameVoiceStop})
	return nil
}
