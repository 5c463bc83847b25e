package canvasrenderer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/rollingdot/engine"
	"github.com/ByLCY/rollingdot/layout"
	"github.com/ByLCY/rollingdot/renderer"
	"github.com/ByLCY/rollingdot/scene"
)

func recordShots(t *testing.T, text string, width float64) []renderer.Shot {
	t.Helper()
	s, _, _ := newTestSurface(t, text, width-96)
	s.SetOrigin(48, 120)
	e, err := engine.New(engine.DefaultConfig(text), engine.Options{Container: s, FontSize: 48})
	if err != nil {
		t.Fatalf("创建引擎失败: %v", err)
	}
	vp := scene.Viewport{
		Width:      layout.Length{Value: width, Unit: layout.UnitPX},
		Height:     layout.Length{Value: 400, Unit: layout.UnitPX},
		Background: scene.Color{R: 255, G: 255, B: 255},
	}
	var shots []renderer.Shot
	for _, f := range e.Record(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), width, 100*time.Millisecond) {
		shots = append(shots, s.Shot(vp, f))
	}
	return shots
}

func midRun(t *testing.T, shots []renderer.Shot) renderer.Shot {
	t.Helper()
	for _, sh := range shots {
		if sh.Frame.Phase == engine.Running && sh.Frame.Indicator.Visible {
			return sh
		}
	}
	t.Fatalf("no running frame recorded")
	return renderer.Shot{}
}

func TestRenderFrameSVG(t *testing.T) {
	shots := recordShots(t, "Rent anything, anywhere.", 1280)
	var buf bytes.Buffer
	if err := testRenderer().RenderFrame(&buf, midRun(t, shots), renderer.FormatSVG); err != nil {
		t.Fatalf("渲染 SVG 失败: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Fatalf("output is not SVG: %.80s", buf.String())
	}
}

func TestRenderFramePNG(t *testing.T) {
	shots := recordShots(t, "Hi.", 375)
	var buf bytes.Buffer
	if err := testRenderer().RenderFrame(&buf, shots[len(shots)-1], renderer.FormatPNG); err != nil {
		t.Fatalf("渲染 PNG 失败: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("output is not PNG")
	}
}

func TestRenderFrameUnknownFormat(t *testing.T) {
	shots := recordShots(t, "Hi.", 375)
	if err := testRenderer().RenderFrame(&bytes.Buffer{}, shots[0], renderer.Format("gif")); err == nil {
		t.Fatalf("unknown format must be rejected")
	}
}

func TestStoryboardPDF(t *testing.T) {
	shots := recordShots(t, "Welcome to Rent1T", 1280)
	data, err := testRenderer().Storyboard(scene.Meta{Title: "Storyboard", Creator: "rollingdot"}, shots)
	if err != nil {
		t.Fatalf("生成分镜失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("storyboard is not a PDF")
	}
	if _, err := testRenderer().Storyboard(scene.Meta{}, nil); err == nil {
		t.Fatalf("empty storyboard must fail")
	}
}

func TestFontFallback(t *testing.T) {
	r := NewRendererWithOptions(Options{Fonts: map[string]scene.FontResource{
		"Broken": {Name: "Broken", Src: "fonts/missing.ttf"},
	}})
	h := testHeadline("Hi.")
	h.Font = "Broken"
	if _, err := r.NewSurface(h, 300); err != nil {
		t.Fatalf("missing font file should fall back to the built-in font: %v", err)
	}
}

func TestResolveIndicatorColor(t *testing.T) {
	text := scene.Color{R: 10, G: 20, B: 30}
	if got := resolveIndicatorColor(engine.CurrentColor, text); got != colorOf(text, 1) {
		t.Fatalf("currentColor must resolve to the text color")
	}
	if got := resolveIndicatorColor("#ff0000", text); got != colorOf(scene.Color{R: 255}, 1) {
		t.Fatalf("explicit color not honoured")
	}
	if got := resolveIndicatorColor("nope", text); got != colorOf(text, 1) {
		t.Fatalf("invalid color must fall back to the text color")
	}
}

func TestParseFontStyle(t *testing.T) {
	if parseFontStyle("") != canvas.FontRegular {
		t.Fatalf("empty style must be regular")
	}
	if parseFontStyle("SemiBold") == parseFontStyle("Bold") {
		t.Fatalf("semibold must not collapse into bold")
	}
	if parseFontStyle("bold italic") == parseFontStyle("bold") {
		t.Fatalf("italic flag missing")
	}
}
