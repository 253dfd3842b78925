// Package voice owns the capture toggle and the finalized-utterance
// dispatch. The recognition engine itself runs in the browser; this side
// receives its lifecycle as discrete events, which keeps the guard logic
// deterministic and testable without a microphone.
package voice

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/observability/telemetry"
	"github.com/mauriciomeseguer/configurador/internal/ports"
)

type State int

const (
	StateStopped State = iota
	StateListening
)

func (s State) String() string {
	if s == StateListening {
		return "listening"
	}
	return "stopped"
}

// Recognition error codes as the engine reports them (Web Speech API
// vocabulary), normalized to a known set for metrics and user notices.
const (
	ErrNoSpeech     = "no-speech"
	ErrAudioCapture = "audio-capture"
	ErrNotAllowed   = "not-allowed"
	ErrBadLanguage  = "language-not-supported"
	ErrUnknown      = "unknown"
)

// User-facing notices, appended to the transcript as system entries. The
// wording matches what the front-end has always shown.
var errorNotices = map[string]string{
	ErrNoSpeech:     "No se detectó voz. Intenta hablar más claro.",
	ErrAudioCapture: "No se pudo acceder al micrófono.",
	ErrNotAllowed:   "Permisos de micrófono denegados.",
	ErrBadLanguage:  "Idioma no soportado para el reconocimiento de voz.",
	ErrUnknown:      "Error en el reconocimiento de voz.",
}

// Dispatcher receives each finalized utterance exactly once. It is the same
// send path typed messages go through.
type Dispatcher func(text string)

// Reporter surfaces system notices (listening started/stopped, errors) to
// the transcript.
type Reporter func(notice string)

// Capture is the two-state toggle with a debounce guard. Rapid double
// toggles would otherwise issue overlapping start/stop calls on the engine,
// which throws.
type Capture struct {
	engine   ports.RecognitionEngine
	dispatch Dispatcher
	report   Reporter
	debounce time.Duration
	now      func() time.Time
	log      *zap.Logger

	mu         sync.Mutex
	state      State
	lastToggle time.Time
}

type Option func(*Capture)

func WithClock(now func() time.Time) Option {
	return func(c *Capture) { c.now = now }
}

func NewCapture(engine ports.RecognitionEngine, debounce time.Duration, dispatch Dispatcher, report Reporter, log *zap.Logger, opts ...Option) *Capture {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	c := &Capture{
		engine:   engine,
		dispatch: dispatch,
		report:   report,
		debounce: debounce,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Toggle flips between Stopped and Listening. Requests landing inside the
// debounce window after a previous toggle are dropped.
func (c *Capture) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.lastToggle.IsZero() && now.Sub(c.lastToggle) < c.debounce {
		c.log.Debug("voice toggle ignored inside debounce window")
		return
	}
	c.lastToggle = now

	if c.state == StateStopped {
		if err := c.engine.Start(); err != nil {
			c.log.Warn("recognition engine failed to start", zap.Error(err))
			c.report("No se pudo iniciar el reconocimiento de voz.")
			return
		}
		c.state = StateListening
		c.report("Escuchando... Habla ahora")
		return
	}

	if err := c.engine.Stop(); err != nil {
		c.log.Warn("recognition engine failed to stop", zap.Error(err))
	}
	c.state = StateStopped
	c.report("Reconocimiento de voz detenido")
}

// HandleResult receives a recognition segment. Interim segments are ignored;
// final non-empty segments are dispatched exactly once through the send
// pipeline.
func (c *Capture) HandleResult(transcript string, final bool) {
	if !final {
		return
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return
	}

	c.mu.Lock()
	listening := c.state == StateListening
	c.mu.Unlock()
	if !listening {
		c.log.Debug("final segment after stop ignored", zap.String("transcript", transcript))
		return
	}

	c.dispatch(transcript)
}

// HandleError ends the current listening attempt and reports the condition.
// No recognition error terminates the session; the text path stays usable.
func (c *Capture) HandleError(code string) {
	notice, ok := errorNotices[code]
	if !ok {
		code = ErrUnknown
		notice = errorNotices[ErrUnknown]
	}
	telemetry.VoiceErrorsTotal.WithLabelValues(code).Inc()

	c.mu.Lock()
	c.state = StateStopped
	c.mu.Unlock()

	c.report(notice)
}

// HandleEnd is the engine's own stop signal (it may stop without a local
// toggle, e.g. after a silence timeout).
func (c *Capture) HandleEnd() {
	c.mu.Lock()
	wasListening := c.state == StateListening
	c.state = StateStopped
	c.mu.Unlock()

	if wasListening {
		c.report("Reconocimiento de voz detenido")
	}
}
