package voice

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeEngine struct {
	mu       sync.Mutex
	starts   int
	stops    int
	startErr error
}

func (e *fakeEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	return e.startErr
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
	return nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recorder struct {
	mu      sync.Mutex
	sent    []string
	notices []string
}

func (r *recorder) dispatch(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
}

func (r *recorder) report(notice string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

func newTestCapture(engine *fakeEngine, clk *fakeClock) (*Capture, *recorder) {
	rec := &recorder{}
	c := NewCapture(engine, 300*time.Millisecond, rec.dispatch, rec.report, zap.NewNop(), WithClock(clk.now))
	return c, rec
}

func TestToggle_StartsAndStops(t *testing.T) {
	engine := &fakeEngine{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c, _ := newTestCapture(engine, clk)

	c.Toggle()
	if c.State() != StateListening {
		t.Fatalf("expected listening, got %s", c.State())
	}

	clk.advance(time.Second)
	c.Toggle()
	if c.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", c.State())
	}
	if engine.starts != 1 || engine.stops != 1 {
		t.Errorf("expected one start and one stop, got %d/%d", engine.starts, engine.stops)
	}
}

func TestToggle_DebounceDropsRapidSecondToggle(t *testing.T) {
	engine := &fakeEngine{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c, _ := newTestCapture(engine, clk)

	c.Toggle()
	clk.advance(100 * time.Millisecond) // inside the 300ms window
	c.Toggle()

	if engine.starts != 1 || engine.stops != 0 {
		t.Errorf("double toggle inside debounce must reach the engine once, got starts=%d stops=%d", engine.starts, engine.stops)
	}
	if c.State() != StateListening {
		t.Errorf("state must reflect exactly one transition, got %s", c.State())
	}
}

func TestToggle_AfterDebounceWindowIsHonored(t *testing.T) {
	engine := &fakeEngine{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c, _ := newTestCapture(engine, clk)

	c.Toggle()
	clk.advance(301 * time.Millisecond)
	c.Toggle()

	if engine.starts != 1 || engine.stops != 1 {
		t.Errorf("toggle after the window must stop the engine, got starts=%d stops=%d", engine.starts, engine.stops)
	}
}

func TestToggle_EngineStartFailureStaysStopped(t *testing.T) {
	engine := &fakeEngine{startErr: errors.New("mic busy")}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c, rec := newTestCapture(engine, clk)

	c.Toggle()

	if c.State() != StateStopped {
		t.Errorf("start failure must leave capture stopped, got %s", c.State())
	}
	if len(rec.notices) != 1 {
		t.Fatalf("expected one notice, got %v", rec.notices)
	}
}

func TestHandleResult_InterimIgnoredFinalDispatchedOnce(t *testing.T) {
	engine := &fakeEngine{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c, rec := newTestCapture(engine, clk)

	c.Toggle()
	c.HandleResult("quiero un pc para ju", false)
	c.HandleResult("quiero un pc para jugar", true)

	if len(rec.sent) != 1 || rec.sent[0] != "quiero un pc para jugar" {
		t.Errorf("expected exactly the final segment, got %v", rec.sent)
	}
}

func TestHandleResult_EmptyAndWhitespaceFinalsDropped(t *testing.T) {
	engine := &fakeEngine{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c, rec := newTestCapture(engine, clk)

	c.Toggle()
	c.HandleResult("", true)
	c.HandleResult("   ", true)

	if len(rec.sent) != 0 {
		t.Errorf("expected no dispatches, got %v", rec.sent)
	}
}

func TestHandleResult_AfterStopIgnored(t *testing.T) {
	engine := &fakeEngine{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c, rec := newTestCapture(engine, clk)

	c.HandleResult("huérfano", true)

	if len(rec.sent) != 0 {
		t.Errorf("final segment without listening must be dropped, got %v", rec.sent)
	}
}

func TestHandleError_KnownCodesMapToNotices(t *testing.T) {
	cases := map[string]string{
		ErrNoSpeech:     "No se detectó voz. Intenta hablar más claro.",
		ErrAudioCapture: "No se pudo acceder al micrófono.",
		ErrNotAllowed:   "Permisos de micrófono denegados.",
		ErrBadLanguage:  "Idioma no soportado para el reconocimiento de voz.",
	}

	for code, want := range cases {
		engine := &fakeEngine{}
		clk := &fakeClock{t: time.Unix(1000, 0)}
		c, rec := newTestCapture(engine, clk)

		c.Toggle()
		c.HandleError(code)

		if c.State() != StateStopped {
			t.Errorf("%s: error must stop listening", code)
		}
		last := rec.notices[len(rec.notices)-1]
		if last != want {
			t.Errorf("%s: expected notice %q, got %q", code, want, last)
		}
	}
}

func TestHandleError_UnknownCodeFallsBack(t *testing.T) {
	engine := &fakeEngine{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c, rec := newTestCapture(engine, clk)

	c.Toggle()
	c.HandleError("weird-new-browser-code")

	last := rec.notices[len(rec.notices)-1]
	if last != "Error en el reconocimiento de voz." {
		t.Errorf("unexpected fallback notice %q", last)
	}
}

func TestHandleEnd_ReportsOnlyWhenListening(t *testing.T) {
	engine := &fakeEngine{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c, rec := newTestCapture(engine, clk)

	c.HandleEnd() // engine end while already stopped: silent
	if len(rec.notices) != 0 {
		t.Errorf("expected no notice, got %v", rec.notices)
	}

	c.Toggle()
	c.HandleEnd()
	if c.State() != StateStopped {
		t.Error("engine end must stop capture")
	}
	last := rec.notices[len(rec.notices)-1]
	if last != "Reconocimiento de voz detenido" {
		t.Errorf("unexpected notice %q", last)
	}
}
