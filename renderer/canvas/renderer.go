// Package canvasrenderer 基于 github.com/tdewolff/canvas 实现标题宿主：
// 用真实字体度量排版单元（Surface），并把引擎帧输出为 SVG/PNG 或多页 PDF 分镜。
package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/rollingdot/engine"
	"github.com/ByLCY/rollingdot/layout"
	"github.com/ByLCY/rollingdot/renderer"
	"github.com/ByLCY/rollingdot/scene"
	"github.com/ByLCY/rollingdot/segment"
)

// DefaultDPMM 是 PNG 输出的分辨率（每毫米像素数），约等于 96dpi 的两倍。
const DefaultDPMM = 7.56

const (
	shadowAlpha  = 0.25
	captionSize  = 11.0 // px
	captionInset = 8.0  // px
)

// Renderer draws engine frames via github.com/tdewolff/canvas.
type Renderer struct {
	baseDir string
	dpmm    float64
	log     *slog.Logger
	fonts   map[string]scene.FontResource

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry
	fallbacks    map[string]*canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	// BaseDir 用于解析场景中的相对字体路径
	BaseDir string
	// Fonts 为场景声明的字体资源，按名称查找
	Fonts map[string]scene.FontResource
	// DPMM 为 PNG 分辨率，<=0 时取 DefaultDPMM
	DPMM   float64
	Logger *slog.Logger
}

// NewRendererWithOptions creates a renderer with scene fonts and output options.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		dpmm:         opts.DPMM,
		log:          opts.Logger,
		fonts:        map[string]scene.FontResource{},
		fontFamilies: map[string]*fontFamilyEntry{},
		fallbacks:    map[string]*canvas.FontFamily{},
	}
	if r.dpmm <= 0 {
		r.dpmm = DefaultDPMM
	}
	if r.log == nil {
		r.log = engine.Logger()
	}
	for name, f := range opts.Fonts {
		r.fonts[name] = f
	}
	return r
}

// RenderFrame 将单帧写为 SVG 或 PNG。
func (r *Renderer) RenderFrame(w io.Writer, shot renderer.Shot, format renderer.Format) error {
	c, err := r.draw(shot, false)
	if err != nil {
		return err
	}
	switch format {
	case renderer.FormatSVG, "":
		err = c.Write(w, renderers.SVG())
	case renderer.FormatPNG:
		err = c.Write(w, renderers.PNG(canvas.DPMM(r.dpmm)))
	default:
		return fmt.Errorf("不支持的输出格式 %q", format)
	}
	if err != nil {
		return fmt.Errorf("写出 %s 帧失败: %w", format, err)
	}
	return nil
}

// Storyboard 把每个 Shot 渲染为一页，页角标注视口类别、阶段与时间。
func (r *Renderer) Storyboard(meta scene.Meta, shots []renderer.Shot) ([]byte, error) {
	if len(shots) == 0 {
		return nil, fmt.Errorf("缺少可渲染的帧")
	}
	var buf bytes.Buffer
	w, h := pageSize(shots[0].Viewport)
	writer := pdf.New(&buf, w, h, nil)
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)
	for i, shot := range shots {
		if i > 0 {
			w, h = pageSize(shot.Viewport)
			writer.NewPage(w, h)
		}
		c, err := r.draw(shot, true)
		if err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// draw 在以左上角为原点的 mm 坐标系中绘制一帧；输入坐标均为 px。
func (r *Renderer) draw(shot renderer.Shot, caption bool) (*canvas.Canvas, error) {
	w, h := pageSize(shot.Viewport)
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(colorOf(shot.Viewport.Background, 1))
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))

	hl := shot.Headline
	font := r.fontFor(hl.Font)
	size := hl.FontSize.PX()
	face, err := r.face(font, size, hl.Color, 1)
	if err != nil {
		return nil, err
	}
	lineHeight := hl.LineHeight.Resolve(size)
	baseline := baselineOffset(face, lineHeight)

	f := shot.Frame
	for i, u := range f.Units {
		if i >= len(shot.Boxes) || u.IsSpace() {
			continue
		}
		b := shot.Boxes[i]
		x := shot.OriginX + b.X
		y := shot.OriginY + b.Y + baseline + u.OffsetY
		ctx.DrawText(pxToMm(x), pxToMm(y), canvas.NewTextLine(face, u.Char, canvas.Left))
	}

	if f.Indicator.Visible {
		drawIndicator(ctx, shot, resolveIndicatorColor(f.Indicator.Color, hl.Color))
	}

	if t := f.Terminator; t.Present && t.Visible && t.Scale > 0 && t.Opacity > 0 {
		dot, err := r.face(font, size*t.Scale, hl.Color, t.Opacity)
		if err != nil {
			return nil, err
		}
		tb := shot.Terminator
		// 以句点中心为缩放原点
		x := shot.OriginX + tb.X + tb.Width*(1-t.Scale)/2
		y := shot.OriginY + tb.Y + baseline
		ctx.DrawText(pxToMm(x), pxToMm(y), canvas.NewTextLine(dot, segment.Terminator, canvas.Left))
	}

	if caption {
		if err := r.drawCaption(ctx, shot); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// drawIndicator 画圆点及其投影。轨迹点位于基线，圆点底部贴着基线。
func drawIndicator(ctx *canvas.Context, shot renderer.Shot, col color.Color) {
	ind := shot.Frame.Indicator
	cx := shot.OriginX + ind.X
	cy := shot.OriginY + ind.Y - ind.Radius
	rad := pxToMm(ind.Radius)

	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(canvas.RGBA(0, 0, 0, shadowAlpha))
	ctx.DrawPath(pxToMm(cx), pxToMm(cy+ind.Radius*0.3), canvas.Circle(rad))
	ctx.SetFillColor(col)
	ctx.DrawPath(pxToMm(cx), pxToMm(cy), canvas.Circle(rad))
}

func (r *Renderer) drawCaption(ctx *canvas.Context, shot renderer.Shot) error {
	fam, err := r.captionFamily()
	if err != nil {
		return err
	}
	face := fam.Face(pxToPt(captionSize), canvas.Gray, canvas.FontRegular, canvas.FontNormal)
	f := shot.Frame
	text := fmt.Sprintf("%s · %s · %dms · gen %d", f.Class, f.Phase, f.Elapsed.Milliseconds(), f.Generation)
	ctx.DrawText(pxToMm(captionInset), pxToMm(captionInset+captionSize), canvas.NewTextLine(face, text, canvas.Left))
	return nil
}

func (r *Renderer) captionFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	return r.fallback("")
}

func (r *Renderer) fontFor(name string) scene.FontResource {
	if f, ok := r.fonts[name]; ok {
		return f
	}
	return scene.FontResource{Name: scene.DefaultFontName, Src: "builtin:gobold"}
}

// baselineOffset 返回行顶到基线的距离（px）：半行距加上字体上升部。
func baselineOffset(face *canvas.FontFace, lineHeight float64) float64 {
	m := face.Metrics()
	ascent, descent := mmToPx(m.Ascent), mmToPx(math.Abs(m.Descent))
	return math.Max(lineHeight-ascent-descent, 0)/2 + ascent
}

func resolveIndicatorColor(value string, text scene.Color) color.Color {
	if value == "" || value == engine.CurrentColor {
		return colorOf(text, 1)
	}
	c, err := scene.ParseColor(value)
	if err != nil {
		return colorOf(text, 1)
	}
	return colorOf(c, 1)
}

func pageSize(vp scene.Viewport) (float64, float64) {
	return pxToMm(vp.Width.PX()), pxToMm(vp.Height.PX())
}

func colorOf(c scene.Color, alpha float64) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, alpha)
}

func pxToMm(px float64) float64 { return px * layout.PxToMm }
func mmToPx(mm float64) float64 { return mm * layout.MmToPx }
func pxToPt(px float64) float64 { return px * layout.PxToPt }
