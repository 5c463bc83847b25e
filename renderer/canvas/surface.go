package canvasrenderer

import (
	"errors"
	"fmt"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/rollingdot/engine"
	"github.com/ByLCY/rollingdot/layout"
	"github.com/ByLCY/rollingdot/renderer"
	"github.com/ByLCY/rollingdot/scene"
	"github.com/ByLCY/rollingdot/segment"
)

// ErrDetached 表示 Surface 尚未挂载，无法排版。
var ErrDetached = errors.New("canvasrenderer: surface is detached")

// Surface 是用真实字体度量排版标题的容器，实现 layout.Container。
// 所有长度以 px 表示；空白单元额外加 0.25ch 的间距。
type Surface struct {
	headline scene.Headline
	face     *canvas.FontFace

	width    float64
	attached bool
	ox, oy   float64

	boxes   []layout.Box
	term    layout.Box
	hasTerm bool
}

var _ layout.Container = (*Surface)(nil)

// NewSurface 为标题创建一个宽度为 width（px）的已挂载容器。
func (r *Renderer) NewSurface(h scene.Headline, width float64) (*Surface, error) {
	face, err := r.face(r.fontFor(h.Font), h.FontSize.PX(), h.Color, 1)
	if err != nil {
		return nil, fmt.Errorf("创建标题字体失败: %w", err)
	}
	return &Surface{headline: h, face: face, width: width, attached: true}, nil
}

// Attached implements layout.Container.
func (s *Surface) Attached() bool { return s.attached && s.width > 0 }

// Width implements layout.Container.
func (s *Surface) Width() float64 { return s.width }

// SetWidth 改变容器宽度；调用方随后应通知引擎 Resize。
func (s *Surface) SetWidth(w float64) { s.width = w }

// SetAttached 挂载或卸下容器。卸下后测量返回空结果。
func (s *Surface) SetAttached(v bool) { s.attached = v }

// SetOrigin 设置容器在视口中的位置（px）。
func (s *Surface) SetOrigin(x, y float64) { s.ox, s.oy = x, y }

// Origin implements layout.Container.
func (s *Surface) Origin() (float64, float64) { return s.ox, s.oy }

// LineHeight 返回解析后的行高（px）。
func (s *Surface) LineHeight() float64 {
	return s.headline.LineHeight.Resolve(s.headline.FontSize.PX())
}

// Render implements layout.Container.
func (s *Surface) Render(units []segment.Unit, plan layout.Plan, terminator bool) error {
	if !s.Attached() {
		return ErrDetached
	}
	ch := s.textWidth("0")
	advance := make([]float64, len(units))
	for i, u := range units {
		advance[i] = s.textWidth(u.Char)
		if u.IsSpace() {
			advance[i] += 0.25 * ch
		}
	}
	opts := layout.FlowOptions{Width: s.width, LineHeight: s.LineHeight()}
	if terminator {
		opts.TerminatorWidth = s.textWidth(segment.Terminator)
	}
	s.boxes, s.term = layout.Flow(units, advance, plan, opts)
	s.hasTerm = terminator
	return nil
}

// Boxes implements layout.Container; coordinates include the origin.
func (s *Surface) Boxes() []layout.Box {
	out := make([]layout.Box, len(s.boxes))
	for i, b := range s.boxes {
		b.X += s.ox
		b.Y += s.oy
		out[i] = b
	}
	return out
}

// TerminatorBox implements layout.Container.
func (s *Surface) TerminatorBox() (layout.Box, bool) {
	if !s.hasTerm {
		return layout.Box{}, false
	}
	b := s.term
	b.X += s.ox
	b.Y += s.oy
	return b, true
}

// Height 返回当前排版占用的高度（px）。
func (s *Surface) Height() float64 {
	h := 0.0
	for _, b := range s.boxes {
		if b.Y+b.Height > h {
			h = b.Y + b.Height
		}
	}
	return h
}

// Shot 把当前排版与引擎帧组合为可绘制的画面。句点位置取引擎帧中测得的值。
func (s *Surface) Shot(vp scene.Viewport, f engine.Frame) renderer.Shot {
	boxes := make([]layout.Box, len(s.boxes))
	copy(boxes, s.boxes)
	return renderer.Shot{
		Viewport:   vp,
		Headline:   s.headline,
		Boxes:      boxes,
		Terminator: f.Terminator.Box,
		OriginX:    s.ox,
		OriginY:    s.oy,
		Frame:      f,
	}
}

func (s *Surface) textWidth(text string) float64 {
	return mmToPx(s.face.TextWidth(text))
}
