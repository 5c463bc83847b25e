package preview

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ByLCY/rollingdot/engine"
	"github.com/ByLCY/rollingdot/layout"
	termrenderer "github.com/ByLCY/rollingdot/renderer/term"
	"github.com/ByLCY/rollingdot/scene"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Add(d time.Duration) { c.now = c.now.Add(d) }

func headline(text string) scene.Headline {
	return scene.Headline{
		Text:            text,
		Color:           scene.Color{R: 0x11, G: 0x11, B: 0x11},
		IndicatorColor:  engine.CurrentColor,
		Stagger:         80 * time.Millisecond,
		ReplayOnView:    true,
		VisibleFraction: 0.6,
	}
}

func newModel(t *testing.T, text string) (*Model, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m, err := New(Options{Headline: headline(text), Width: 80, Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m, clock
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func settle(m *Model, clock *fakeClock) {
	for i := 0; i < 400 && m.Engine().Phase() != engine.Settled; i++ {
		clock.Add(20 * time.Millisecond)
		m.Update(tickMsg(clock.now))
	}
}

func TestTickDrivesEngine(t *testing.T) {
	m, clock := newModel(t, "Rent anything.")
	if m.Engine().Phase() != engine.Measuring {
		t.Fatalf("expected measuring after mount, got %s", m.Engine().Phase())
	}
	clock.Add(engine.DefaultSettleDelay)
	_, cmd := m.Update(tickMsg(clock.now))
	if cmd == nil {
		t.Fatalf("tick must schedule the next tick")
	}
	if m.frame.Phase != engine.Running {
		t.Fatalf("expected running, got %s", m.frame.Phase)
	}
	settle(m, clock)
	if m.Engine().Phase() != engine.Settled {
		t.Fatalf("preview never settled")
	}
	clock.Add(engine.RevealDuration)
	m.Update(tickMsg(clock.now))
	lines := termrenderer.Lines(m.surface.Draw(m.frame, cellHopHeight))
	if len(lines) != termrenderer.RowsPerLine || lines[1] != "Rent anything." {
		t.Fatalf("unexpected settled drawing: %q", lines)
	}
}

func TestMobileToggle(t *testing.T) {
	m, clock := newModel(t, "Rent anything, anywhere.")
	settle(m, clock)
	gen := m.Engine().Generation()

	m.Update(key("m"))
	if m.frame.Class != layout.Mobile {
		t.Fatalf("expected mobile class, got %s", m.frame.Class)
	}
	if m.Engine().Generation() == gen || m.Engine().Phase() != engine.Measuring {
		t.Fatalf("class change must rebuild")
	}
	settle(m, clock)
	if n := len(m.Engine().Lines()); n != 3 {
		t.Fatalf("mobile layout must have 3 lines, got %d", n)
	}

	m.Update(key("m"))
	if m.frame.Class != layout.Desktop {
		t.Fatalf("expected desktop class after toggling back, got %s", m.frame.Class)
	}
}

func TestVisibilityReplay(t *testing.T) {
	m, clock := newModel(t, "Hi there.")
	settle(m, clock)
	gen := m.Engine().Generation()

	m.Update(key("v"))
	if !strings.Contains(m.status(), "visible false") {
		t.Fatalf("status must report visibility: %q", m.status())
	}
	if m.Engine().Generation() != gen {
		t.Fatalf("leaving the viewport must not rebuild")
	}
	m.Update(key("v"))
	if m.Engine().Generation() == gen || m.Engine().Phase() != engine.Measuring {
		t.Fatalf("re-entering the viewport must replay")
	}
}

func TestReplayAndQuit(t *testing.T) {
	m, clock := newModel(t, "Hi.")
	settle(m, clock)
	gen := m.Engine().Generation()
	m.Update(key("r"))
	if m.Engine().Generation() == gen {
		t.Fatalf("r must replay")
	}
	if view := m.View(); !strings.Contains(view, "q quit") {
		t.Fatalf("view must include the key help")
	}
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatalf("q must return a quit command")
	}
	if m.Engine().Phase() != engine.Idle {
		t.Fatalf("quitting must unmount the engine")
	}
}

func TestWindowResize(t *testing.T) {
	m, clock := newModel(t, "Rent anything, anywhere.")
	settle(m, clock)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	if m.surface.Width() != 36 {
		t.Fatalf("surface must follow the terminal width minus padding, got %g", m.surface.Width())
	}
	if m.frame.Class != layout.Mobile {
		t.Fatalf("40 columns must classify as mobile")
	}
}
