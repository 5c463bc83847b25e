package engine

import (
	"time"

	"github.com/ByLCY/rollingdot/layout"
	"github.com/ByLCY/rollingdot/segment"
)

// UnitState 是单个显示单元在某一时刻的视觉状态。
type UnitState struct {
	segment.Unit
	// OffsetY 为跳动产生的垂直位移（px，向上为负）。
	OffsetY float64 `json:"offsetY"`
}

// Indicator 是圆点的视觉状态，坐标相对容器左上角。
type Indicator struct {
	Visible  bool    `json:"visible"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
	Rotation float64 `json:"rotation"` // 度
	Color    string  `json:"color"`
}

// Terminator 是末尾句点的视觉状态。
type Terminator struct {
	Present bool    `json:"present"` // 文本是否带终止符
	Visible bool    `json:"visible"`
	Scale   float64 `json:"scale"`
	Opacity float64 `json:"opacity"`
	// Box 为宿主预留的句点位置（容器坐标），测量之前为零值
	Box layout.Box `json:"box"`
}

// Frame 是引擎在某一时刻的全部可观察输出。
type Frame struct {
	Generation uint64               `json:"generation"`
	Phase      Phase                `json:"phase"`
	Label      string               `json:"label"` // 无障碍标签：完整原文
	Class      layout.ViewportClass `json:"class"`
	Elapsed    time.Duration        `json:"elapsed"` // 自 Running 开始
	Units      []UnitState          `json:"units"`
	Indicator  Indicator            `json:"indicator"`
	Terminator Terminator           `json:"terminator"`
}

// Frame 计算 now 时刻的视觉状态。它只读状态，不触发定时器；宿主应先调用 Advance。
func (e *Engine) Frame(now time.Time) Frame {
	f := Frame{
		Generation: e.gen,
		Phase:      e.phase,
		Label:      e.cfg.Text,
		Class:      e.class,
		Units:      make([]UnitState, len(e.units)),
		Terminator: Terminator{Present: e.hasTerm, Box: e.termBox},
	}
	for i, u := range e.units {
		f.Units[i] = UnitState{Unit: u}
	}

	if e.phase == Running {
		f.Elapsed = now.Sub(e.runStart)
		if f.Elapsed < 0 {
			f.Elapsed = 0
		}
		for i := range f.Units {
			f.Units[i].OffsetY = e.hopOffset(i, f.Elapsed)
		}
		if e.showDot {
			f.Indicator = e.indicatorAt(f.Elapsed)
		}
	}

	if e.showPeriod {
		f.Terminator.Visible = true
		f.Terminator.Scale, f.Terminator.Opacity = 1, 1
		if !e.revealStart.IsZero() {
			d := now.Sub(e.revealStart)
			f.Terminator.Scale = revealScale(d)
			f.Terminator.Opacity = easeOut.At(float64(d) / float64(RevealDuration))
		}
	}
	return f
}

// hopOffset：第 i 个单元在 i×stagger 之后执行 0 → -h → 0 的跳动，两段各自缓出。
func (e *Engine) hopOffset(i int, elapsed time.Duration) float64 {
	local := elapsed - time.Duration(i)*e.cfg.Stagger
	if local <= 0 || local >= HopDuration {
		return 0
	}
	p := float64(local) / float64(HopDuration)
	h := e.cfg.HopHeight
	if p < 0.5 {
		return -h * easeOut.At(p*2)
	}
	return -h * (1 - easeOut.At((p-0.5)*2))
}

func (e *Engine) indicatorAt(elapsed time.Duration) Indicator {
	if len(e.traj.Keyframes) == 0 {
		return Indicator{}
	}
	p := float64(elapsed) / float64(e.TraversalDuration())
	if p > 1 {
		p = 1
	}
	eased := easeInOut.At(p)
	x, y := e.traj.At(eased)
	return Indicator{
		Visible:  true,
		X:        x,
		Y:        y,
		Radius:   e.indicatorRadius(),
		Rotation: IndicatorRotation * eased,
		Color:    e.cfg.IndicatorColor,
	}
}

// indicatorRadius：圆点直径为 0.5em。未给出字号时按字形高度与默认行高估算。
func (e *Engine) indicatorRadius() float64 {
	size := e.opts.FontSize
	if size <= 0 && len(e.glyphs) > 0 {
		size = e.glyphs[0].Height / layout.DefaultLineHeight
	}
	return size * 0.25
}
