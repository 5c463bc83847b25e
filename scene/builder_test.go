package scene

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/rollingdot/dsl"
	"github.com/ByLCY/rollingdot/engine"
	"github.com/ByLCY/rollingdot/layout"
)

func buildScene(t *testing.T, src string, data any) *Scene {
	t.Helper()
	doc, err := dsl.Parse("test.dot", strings.NewReader(src))
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	sc, err := Build(doc, data, BuildOptions{})
	if err != nil {
		t.Fatalf("构建场景失败: %v", err)
	}
	return sc
}

const landing = `scene Landing v1 {
  meta { title: "Landing" keywords: ["a", "b"] }
  resources {
    font Display { src: "builtin:gobold" }
    color Brand = #4F46E5
  }
  viewport 1280px breakpoint 768px height 400px {
    headline Display size 48px color Brand {
      "Rent anything, anywhere."
      indicator-color: Brand
      stagger: 0.1s
      visible-fraction: 50%
    }
  }
  viewport 375px mobile-lines 3 {
    headline { "Welcome to ${brand}" replay-on-view: false }
  }
}`

func TestBuildLanding(t *testing.T) {
	sc := buildScene(t, landing, map[string]any{"brand": "Rent1T"})
	if sc.Name != "Landing" || sc.Meta.Title != "Landing" || len(sc.Meta.Keywords) != 2 {
		t.Fatalf("meta mismatch: %+v", sc.Meta)
	}
	if len(sc.Viewports) != 2 {
		t.Fatalf("expected 2 viewports, got %d", len(sc.Viewports))
	}

	desk := sc.Viewports[0]
	if desk.Width.PX() != 1280 || desk.Height.PX() != 400 {
		t.Fatalf("desktop viewport size mismatch: %+v", desk)
	}
	if desk.Policy().Classify(desk.Width.PX()) != layout.Desktop {
		t.Fatalf("1280px must classify as desktop")
	}
	h := desk.Headlines[0]
	if h.Text != "Rent anything, anywhere." || h.Font != "Display" || h.FontSize.PX() != 48 {
		t.Fatalf("headline mismatch: %+v", h)
	}
	if h.Color != (Color{R: 0x4f, G: 0x46, B: 0xe5}) || h.IndicatorColor != "#4f46e5" {
		t.Fatalf("color resolution mismatch: %+v / %s", h.Color, h.IndicatorColor)
	}
	cfg := h.Config()
	if cfg.Stagger != 100*time.Millisecond || cfg.VisibleFraction != 0.5 || cfg.HopHeight != 14 || !cfg.ReplayOnView {
		t.Fatalf("engine config mismatch: %+v", cfg)
	}

	mobile := sc.Viewports[1]
	if mobile.Policy().Classify(mobile.Width.PX()) != layout.Mobile {
		t.Fatalf("375px must classify as mobile")
	}
	m := mobile.Headlines[0]
	if m.Text != "Welcome to Rent1T" || m.ReplayOnView || m.IndicatorColor != engine.CurrentColor {
		t.Fatalf("mobile headline mismatch: %+v", m)
	}
	// 只声明了 Display，未指定字体的标题应回落到已声明的字体
	if m.Font != "Display" {
		t.Fatalf("expected font fallback to Display, got %s", m.Font)
	}
}

func TestBuildDefaults(t *testing.T) {
	sc := buildScene(t, `scene S v1 { viewport 375px { headline { "Hi." } } }`, nil)
	font, ok := sc.Resources.Fonts[DefaultFontName]
	if !ok || !font.IsBuiltin {
		t.Fatalf("default builtin font missing: %+v", sc.Resources.Fonts)
	}
	vp := sc.Viewports[0]
	if vp.MobileLines != layout.DefaultMobileLines || vp.Breakpoint.PX() != layout.DefaultBreakpoint {
		t.Fatalf("viewport defaults mismatch: %+v", vp)
	}
	h := vp.Headlines[0]
	if lh := h.LineHeight.Resolve(h.FontSize.PX()); h.FontSize.PX() != DefaultFontSizePX || math.Abs(lh-41.4) > 1e-9 {
		t.Fatalf("headline defaults mismatch: %+v", h)
	}
	if h.Config() != engine.DefaultConfig("Hi.") {
		t.Fatalf("engine defaults mismatch: %+v", h.Config())
	}
}

func TestBuildDataReference(t *testing.T) {
	var data any
	_ = json.Unmarshal([]byte(`{"hero":{"title":"Borrow tools nearby."}}`), &data)
	sc := buildScene(t, `scene S v1 { viewport 1280px { headline { text: data.hero.title } } }`, data)
	if got := sc.Viewports[0].Headlines[0].Text; got != "Borrow tools nearby." {
		t.Fatalf("data reference not resolved: %q", got)
	}

	doc, _ := dsl.ParseString(`scene S v1 { viewport 1280px { headline { text: data.nope } } }`)
	if _, err := Build(doc, data, BuildOptions{}); err == nil {
		t.Fatalf("missing data reference must fail")
	}
}

func TestBuildMissingBindingIsKept(t *testing.T) {
	sc := buildScene(t, `scene S v1 { viewport 1280px { headline { "Hi ${user}." } } }`, nil)
	h := sc.Viewports[0].Headlines[0]
	if h.Text != "Hi ${user}." || len(h.Missing) != 1 || h.Missing[0] != "user" {
		t.Fatalf("missing binding not reported: %+v", h)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]string{
		"no viewport":     `scene S v1 { meta { title: "x" } }`,
		"bad width":       `scene S v1 { viewport 0px { } }`,
		"unknown font":    `scene S v1 { viewport 1280px { headline Nope { "x" } } }`,
		"empty text":      `scene S v1 { viewport 1280px { headline { "   " } } }`,
		"bad fraction":    `scene S v1 { viewport 1280px { headline { "x" visible-fraction: 2 } } }`,
		"bad color":       `scene S v1 { resources { color C = nope } viewport 1280px { } }`,
		"bad stagger":     `scene S v1 { viewport 1280px { headline { "x" stagger: fast } } }`,
		"bad mobilelines": `scene S v1 { viewport 375px mobile-lines 0 { } }`,
		"bad lineheight":  `scene S v1 { viewport 1280px { headline { "x" line-height: 1.5em } } }`,
	}
	for name, src := range cases {
		doc, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("%s: 解析失败: %v", name, err)
		}
		if _, err := Build(doc, nil, BuildOptions{}); err == nil {
			t.Fatalf("%s: expected build error", name)
		}
	}
	doc, _ := dsl.ParseString(`scene S v1 { viewport 1280px { headline { "x" visible-fraction: 2 } } }`)
	if _, err := Build(doc, nil, BuildOptions{}); !errors.Is(err, engine.ErrInvalidConfig) {
		t.Fatalf("engine validation error must be wrapped, got %v", err)
	}
}

func TestBuildAbsoluteLineHeight(t *testing.T) {
	sc := buildScene(t, `scene S v1 { viewport 1280px { headline { "Hi." size: 40px line-height: 56px } } }`, nil)
	h := sc.Viewports[0].Headlines[0]
	if h.LineHeight.Kind != layout.LineHeightAbsolute {
		t.Fatalf("px line height must stay absolute: %+v", h.LineHeight)
	}
	if got := h.LineHeight.Resolve(h.FontSize.PX()); got != 56 {
		t.Fatalf("expected 56px line height, got %g", got)
	}
}

func TestWriteDebugJSON(t *testing.T) {
	sc := buildScene(t, `scene S v1 { viewport 1280px { headline { "Hi." } } }`, nil)
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := WriteDebugJSON(sc, path); err != nil {
		t.Fatalf("写入调试 JSON 失败: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取调试 JSON 失败: %v", err)
	}
	if !strings.Contains(string(raw), `"text": "Hi."`) {
		t.Fatalf("debug JSON missing headline text: %s", raw)
	}
}

func TestParseColor(t *testing.T) {
	if c, err := ParseColor("#abc"); err != nil || c != (Color{R: 0xaa, G: 0xbb, B: 0xcc}) {
		t.Fatalf("short hex: %+v %v", c, err)
	}
	if c, err := ParseColor("#11223344"); err != nil || c.Hex() != "#112233" {
		t.Fatalf("8-digit hex: %+v %v", c, err)
	}
	if _, err := ParseColor("#12"); err == nil {
		t.Fatalf("invalid hex must fail")
	}
}

func TestBuildMetaInterpolation(t *testing.T) {
	src := `scene S v1 {
  meta { title: "${brand} 首页" subject: "${tagline | 租赁}" author: "${brand}" }
  viewport 1280px { headline { "Hi." } }
}`
	sc := buildScene(t, src, map[string]any{"brand": "Rent1T"})
	if sc.Meta.Title != "Rent1T 首页" || sc.Meta.Subject != "租赁" {
		t.Fatalf("meta placeholders must be bound: %+v", sc.Meta)
	}
	// 作者按原样保留
	if sc.Meta.Author != "${brand}" {
		t.Fatalf("author must stay literal, got %q", sc.Meta.Author)
	}
}
