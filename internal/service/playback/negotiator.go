// Package playback makes a classified AudioRef audible through whatever the
// attached player can manage, degrading to an explicit user action instead
// of failing. One state machine covers all three transport shapes.
package playback

import (
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/observability/telemetry"
	"github.com/mauriciomeseguer/configurador/internal/ports"
	"github.com/mauriciomeseguer/configurador/pkg/config"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StatePlaying
	StateEnded
	StateDegraded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StateEnded:
		return "ended"
	case StateDegraded:
		return "degraded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a discrete playback signal, relayed from the player (the
// browser's media stack) or raised internally by timers.
type Event string

const (
	EventReady            Event = "ready"
	EventPlayStarted      Event = "play-started"
	EventAutoplayRejected Event = "autoplay-rejected"
	EventEnded            Event = "ended"
	EventDecodeFailed     Event = "decode-failed"
	EventNetworkFailed    Event = "network-failed"
	EventReadyTimeout     Event = "ready-timeout"
	EventRetry            Event = "retry"
)

// Degraded-state actions offered to the user.
const (
	ActionManualPlay     = "manual-play"
	ActionOpenExternally = "open-externally"
)

// Timer is a stoppable deferred callback; injected so tests can fire
// timeouts deterministically.
type Timer interface {
	Stop() bool
}

type TimerFactory func(d time.Duration, fn func()) Timer

type realTimer struct{ t *time.Timer }

func (r realTimer) Stop() bool { return r.t.Stop() }

func realTimers(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}

// Status is the externally visible snapshot of a playback session, pushed to
// clients on every transition.
type Status struct {
	SessionID string           `json:"session_id"`
	ChatID    string           `json:"chat_id"`
	State     string           `json:"state"`
	Kind      domain.AudioKind `json:"kind"`
	LastError string           `json:"last_error,omitempty"`
	Action    string           `json:"action,omitempty"`
	ActionURL string           `json:"action_url,omitempty"`
}

type StatusListener func(Status)

type session struct {
	id          string
	chatID      string
	ref         domain.AudioRef
	data        []byte
	state       State
	lastErr     string
	closed      bool
	readyTimer  Timer
	retainTimer Timer
}

// Negotiator owns at most one live playback session per chat. A new
// AudioRef supersedes the previous session; the old handle is released, not
// aborted mid-flight.
type Negotiator struct {
	player   ports.AudioPlayer
	cfg      config.PlaybackConfig
	log      *zap.Logger
	timers   TimerFactory
	listener StatusListener

	mu       sync.Mutex
	sessions map[string]*session
}

type Option func(*Negotiator)

func WithTimerFactory(f TimerFactory) Option {
	return func(n *Negotiator) { n.timers = f }
}

func WithListener(l StatusListener) Option {
	return func(n *Negotiator) { n.listener = l }
}

func NewNegotiator(player ports.AudioPlayer, cfg config.PlaybackConfig, log *zap.Logger, opts ...Option) *Negotiator {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 8 * time.Second
	}
	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = 5 * time.Minute
	}
	n := &Negotiator{
		player:   player,
		cfg:      cfg,
		log:      log,
		timers:   realTimers,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Play starts a fresh session for ref, superseding any live session on the
// same chat. It returns the new session's id. Playback failures never reach
// the caller; they only move the session's own state.
func (n *Negotiator) Play(chatID string, ref *domain.AudioRef) string {
	if ref == nil {
		return ""
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if old := n.sessions[chatID]; old != nil {
		n.closeLocked(old, "superseded")
	}

	s := &session{
		id:     uuid.NewString(),
		chatID: chatID,
		ref:    *ref,
		state:  StateIdle,
	}
	n.sessions[chatID] = s
	n.transitionLocked(s, StateLoading)
	n.startLocked(s)
	return s.id
}

// HandleEvent feeds a discrete playback event into the chat's live session.
// Events for superseded or unknown sessions are dropped.
func (n *Negotiator) HandleEvent(chatID, sessionID string, ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := n.sessions[chatID]
	if s == nil || s.id != sessionID || s.closed {
		n.log.Debug("playback event for stale session",
			zap.String("chat_id", chatID),
			zap.String("session_id", sessionID),
			zap.String("event", string(ev)),
		)
		return
	}
	n.applyLocked(s, ev)
}

// Status reports the live session snapshot for a chat, if any.
func (n *Negotiator) Status(chatID string) (Status, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := n.sessions[chatID]
	if s == nil || s.closed {
		return Status{}, false
	}
	return n.snapshotLocked(s), true
}

func (n *Negotiator) startLocked(s *session) {
	switch s.ref.Kind {
	case domain.AudioInline:
		data, err := base64.StdEncoding.DecodeString(s.ref.Base64)
		if err != nil {
			n.failLocked(s, "invalid base64 audio payload")
			return
		}
		s.data = data
		if err := n.player.PlayInline(s.chatID, s.id, s.ref.MimeType, data); err != nil {
			n.failLocked(s, err.Error())
		}
	case domain.AudioBinary:
		s.data = s.ref.Data
		if err := n.player.PlayInline(s.chatID, s.id, s.ref.MimeType, s.data); err != nil {
			n.failLocked(s, err.Error())
		}
	case domain.AudioRemote:
		if err := n.player.PlayRemote(s.chatID, s.id, s.ref.URL); err != nil {
			n.failLocked(s, err.Error())
			return
		}
		// Third-party hosts may never signal readiness; a bounded wait
		// degrades to an explicit action instead of hanging in Loading.
		id, chatID := s.id, s.chatID
		s.readyTimer = n.timers(n.cfg.ReadyTimeout, func() {
			n.HandleEvent(chatID, id, EventReadyTimeout)
		})
	default:
		n.failLocked(s, "unknown audio kind")
	}
}

func (n *Negotiator) applyLocked(s *session, ev Event) {
	if s.state == StateError {
		// Terminal for this AudioRef; a new one starts a fresh session.
		return
	}

	switch ev {
	case EventReady:
		if s.state == StateLoading {
			n.stopReadyTimerLocked(s)
			n.transitionLocked(s, StateReady)
		}
	case EventPlayStarted:
		if s.state == StateLoading {
			n.stopReadyTimerLocked(s)
			n.transitionLocked(s, StateReady)
		}
		if s.state == StateReady {
			n.transitionLocked(s, StatePlaying)
		}
	case EventAutoplayRejected:
		// Browser policy, not a fault: wait for an explicit user action.
		if s.state == StateLoading || s.state == StateReady {
			n.stopReadyTimerLocked(s)
			n.transitionLocked(s, StateDegraded)
		}
	case EventReadyTimeout:
		if s.state == StateLoading && s.ref.Kind == domain.AudioRemote {
			n.transitionLocked(s, StateDegraded)
		}
	case EventEnded:
		if s.state == StatePlaying {
			n.transitionLocked(s, StateEnded)
			id, chatID := s.id, s.chatID
			s.retainTimer = n.timers(n.cfg.RetentionWindow, func() {
				n.release(chatID, id)
			})
		}
	case EventDecodeFailed:
		n.failLocked(s, "audio decode failed")
	case EventNetworkFailed:
		n.failLocked(s, "audio fetch failed")
	case EventRetry:
		// Manual re-entry into Loading; only honored from Degraded.
		if s.state == StateDegraded {
			n.transitionLocked(s, StateLoading)
			n.startLocked(s)
		}
	default:
		n.log.Debug("unrecognized playback event", zap.String("event", string(ev)))
	}
}

func (n *Negotiator) failLocked(s *session, reason string) {
	s.lastErr = reason
	n.stopReadyTimerLocked(s)
	n.transitionLocked(s, StateError)
	n.player.Release(s.chatID, s.id)
}

func (n *Negotiator) release(chatID, sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := n.sessions[chatID]
	if s == nil || s.id != sessionID {
		return
	}
	n.closeLocked(s, "retention window elapsed")
	delete(n.sessions, chatID)
}

func (n *Negotiator) closeLocked(s *session, why string) {
	if s.closed {
		return
	}
	s.closed = true
	n.stopReadyTimerLocked(s)
	if s.retainTimer != nil {
		s.retainTimer.Stop()
		s.retainTimer = nil
	}
	s.data = nil
	n.player.Release(s.chatID, s.id)
	n.log.Debug("playback session released",
		zap.String("chat_id", s.chatID),
		zap.String("session_id", s.id),
		zap.String("reason", why),
	)
}

func (n *Negotiator) stopReadyTimerLocked(s *session) {
	if s.readyTimer != nil {
		s.readyTimer.Stop()
		s.readyTimer = nil
	}
}

func (n *Negotiator) transitionLocked(s *session, to State) {
	from := s.state
	s.state = to
	telemetry.PlaybackTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
	n.log.Debug("playback transition",
		zap.String("chat_id", s.chatID),
		zap.String("session_id", s.id),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
	if n.listener != nil {
		n.listener(n.snapshotLocked(s))
	}
}

func (n *Negotiator) snapshotLocked(s *session) Status {
	st := Status{
		SessionID: s.id,
		ChatID:    s.chatID,
		State:     s.state.String(),
		Kind:      s.ref.Kind,
		LastError: s.lastErr,
	}
	if s.state == StateDegraded {
		if s.ref.Kind == domain.AudioRemote {
			st.Action = ActionOpenExternally
			st.ActionURL = s.ref.URL
		} else {
			st.Action = ActionManualPlay
		}
	}
	return st
}
