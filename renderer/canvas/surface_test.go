package canvasrenderer

import (
	"testing"
	"time"

	"github.com/ByLCY/rollingdot/engine"
	"github.com/ByLCY/rollingdot/layout"
	"github.com/ByLCY/rollingdot/scene"
	"github.com/ByLCY/rollingdot/segment"
)

func testHeadline(text string) scene.Headline {
	return scene.Headline{
		Text:            text,
		Font:            "Display",
		FontSize:        layout.Length{Value: 48, Unit: layout.UnitPX},
		LineHeight:      layout.LineHeightSpec{Kind: layout.LineHeightFactor, Factor: 1.15},
		Color:           scene.Color{R: 17, G: 17, B: 17},
		IndicatorColor:  engine.CurrentColor,
		HopHeight:       layout.Length{Value: 14, Unit: layout.UnitPX},
		Stagger:         80 * time.Millisecond,
		ReplayOnView:    true,
		VisibleFraction: 0.6,
	}
}

func testRenderer() *Renderer {
	return NewRendererWithOptions(Options{Fonts: map[string]scene.FontResource{
		"Display": {Name: "Display", Src: "builtin:gobold", IsBuiltin: true},
	}})
}

func newTestSurface(t *testing.T, text string, width float64) (*Surface, []segment.Unit, bool) {
	t.Helper()
	s, err := testRenderer().NewSurface(testHeadline(text), width)
	if err != nil {
		t.Fatalf("创建 Surface 失败: %v", err)
	}
	units, term := segment.Segment(text)
	return s, units, term
}

func TestSurfaceSingleLine(t *testing.T) {
	s, units, term := newTestSurface(t, "Rent anything, anywhere.", 1280)
	if err := s.Render(units, layout.Plan{}, term); err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	boxes := s.Boxes()
	if len(boxes) != len(units) {
		t.Fatalf("expected %d boxes, got %d", len(units), len(boxes))
	}
	for i, b := range boxes {
		if b.Y != 0 || b.Width <= 0 {
			t.Fatalf("unit %d not on a single line: %+v", i, b)
		}
		if i > 0 && b.X < boxes[i-1].Right()-1e-9 {
			t.Fatalf("unit %d overlaps its predecessor", i)
		}
	}
	// 空白带额外 0.25ch
	if space, plain := boxes[4].Width, s.textWidth(" "); space <= plain {
		t.Fatalf("space advance %g should exceed plain space %g", space, plain)
	}
	tb, ok := s.TerminatorBox()
	if !ok || tb.X < boxes[len(boxes)-1].Right()-1e-9 || tb.Width <= 0 {
		t.Fatalf("terminator box mismatch: %+v", tb)
	}
}

func TestSurfaceMobileStaircase(t *testing.T) {
	s, units, term := newTestSurface(t, "Rent anything, anywhere.", 375)
	plan := layout.DefaultPolicy().Plan(units, layout.Mobile)
	if err := s.Render(units, plan, term); err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	lines := layout.GroupLines(layout.Measure(s, len(units)), layout.DefaultLineTolerance)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if l.First().X != 0 {
			t.Fatalf("line %d must start at the left edge: %+v", i, l.First())
		}
		if l.Last().Right() > 375 {
			t.Fatalf("line %d overflows: %g", i, l.Last().Right())
		}
	}
}

func TestSurfaceWrapsWithinWidth(t *testing.T) {
	s, units, term := newTestSurface(t, "Borrow tools from neighbours across the city.", 300)
	if err := s.Render(units, layout.Plan{}, term); err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	for i, b := range s.Boxes() {
		if b.Right() > 300+1e-9 {
			t.Fatalf("unit %d exceeds container width: %+v", i, b)
		}
	}
	if s.Height() <= s.LineHeight() {
		t.Fatalf("text should wrap into several lines, height %g", s.Height())
	}
}

func TestSurfaceDetached(t *testing.T) {
	s, units, term := newTestSurface(t, "Hi.", 300)
	s.SetAttached(false)
	if err := s.Render(units, layout.Plan{}, term); err != ErrDetached {
		t.Fatalf("detached surface must refuse to render, got %v", err)
	}
	if got := layout.Measure(s, len(units)); got != nil {
		t.Fatalf("detached surface must not be measurable")
	}
}

func TestSurfaceOriginIsRemovedByMeasure(t *testing.T) {
	s, units, term := newTestSurface(t, "Hi.", 300)
	s.SetOrigin(48, 120)
	if err := s.Render(units, layout.Plan{}, term); err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	if b := s.Boxes()[0]; b.X != 48 || b.Y != 120 {
		t.Fatalf("host boxes must include the origin: %+v", b)
	}
	if g := layout.Measure(s, len(units))[0]; g.X != 0 || g.Y != 0 {
		t.Fatalf("measured glyphs must be container-local: %+v", g)
	}
}

// 引擎 + 真实字体宿主：完整播放一次，圆点终点落在最后一个字形的右缘。
func TestSurfaceDrivesEngine(t *testing.T) {
	s, _, _ := newTestSurface(t, "Rent anything, anywhere.", 1280)
	e, err := engine.New(engine.DefaultConfig("Rent anything, anywhere."), engine.Options{Container: s, FontSize: 48})
	if err != nil {
		t.Fatalf("创建引擎失败: %v", err)
	}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	frames := e.Record(start, 1280, 16*time.Millisecond)
	last := frames[len(frames)-1]
	if last.Phase != engine.Settled || !last.Terminator.Visible || last.Terminator.Scale != 1 {
		t.Fatalf("recording must end settled with the terminator revealed: %+v", last)
	}
	tb, ok := s.TerminatorBox()
	if !ok || last.Terminator.Box != tb {
		t.Fatalf("frame terminator box must match the host: %+v vs %+v", last.Terminator.Box, tb)
	}
	if shot := s.Shot(scene.Viewport{}, last); shot.Terminator != tb {
		t.Fatalf("shot must draw the terminator from the frame: %+v", shot.Terminator)
	}
	var sawRunning bool
	for _, f := range frames {
		if f.Phase == engine.Running && f.Indicator.Visible {
			sawRunning = true
			if f.Indicator.Radius != 12 {
				t.Fatalf("indicator radius must be 0.25em, got %g", f.Indicator.Radius)
			}
		}
	}
	if !sawRunning {
		t.Fatalf("indicator never observed running")
	}
}
