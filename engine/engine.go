// Package engine 编排标题动画：逐字跳动、圆点沿轨迹移动并最终化为句点，
// 以及可见性触发的重播。
//
// 引擎是单线程、事件驱动的：所有方法必须在同一控制路径上串行调用
// （宿主的事件循环，或 Run 提供的循环）。每次重建递增代号，
// 挂起的定时器随之失效，过期代号的回调不会产生任何可观察效果。
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ByLCY/rollingdot/layout"
	"github.com/ByLCY/rollingdot/segment"
	"github.com/ByLCY/rollingdot/trajectory"
)

// Timing constants.
const (
	HopDuration       = 500 * time.Millisecond
	RevealDuration    = 250 * time.Millisecond
	MinTraversal      = 600 * time.Millisecond
	TraversalTail     = 400 * time.Millisecond
	IndicatorRotation = 720.0
)

// Engine 是单个标题实例的动画状态机。
type Engine struct {
	cfg    Config
	opts   Options
	log    *slog.Logger
	policy layout.Policy

	units   []segment.Unit
	hasTerm bool

	phase  Phase
	gen    uint64
	timers timerQueue
	seq    uint64

	mounted bool
	width   float64
	class   layout.ViewportClass
	plan    layout.Plan

	glyphs   []layout.Glyph
	lines    []layout.Line
	traj     trajectory.Trajectory
	termBox  layout.Box
	measured bool

	inView bool
	// leftView 记录进入 Settled 之后元素是否离开过视口
	leftView bool

	runStart    time.Time
	revealStart time.Time
	showDot     bool
	showPeriod  bool
}

// New 校验配置并创建引擎。配置非法时立即返回包装了 ErrInvalidConfig 的错误。
func New(cfg Config, opts Options) (*Engine, error) {
	if cfg.IndicatorColor == "" {
		cfg.IndicatorColor = CurrentColor
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	e := &Engine{
		cfg:    cfg,
		opts:   opts,
		log:    opts.Logger,
		policy: opts.Policy,
	}
	e.units, e.hasTerm = segment.Segment(cfg.Text)
	e.resetVisuals()
	return e, nil
}

// Phase returns the active phase.
func (e *Engine) Phase() Phase { return e.phase }

// Generation returns the current render generation.
func (e *Engine) Generation() uint64 { return e.gen }

// Units returns the display units of the current text.
func (e *Engine) Units() []segment.Unit { return e.units }

// HasTerminator reports whether the text ends in a terminator.
func (e *Engine) HasTerminator() bool { return e.hasTerm }

// Plan returns the layout plan of the current generation.
func (e *Engine) Plan() layout.Plan { return e.plan }

// Lines returns the grouped lines of the last successful measurement.
func (e *Engine) Lines() []layout.Line { return e.lines }

// Trajectory returns the indicator path; ok is false until one has been built.
func (e *Engine) Trajectory() (trajectory.Trajectory, bool) {
	return e.traj, len(e.traj.Keyframes) > 0
}

// Config returns the validated configuration.
func (e *Engine) Config() Config { return e.cfg }

// NextDeadline 返回最近一个挂起定时器的触发时间。
func (e *Engine) NextDeadline() (time.Time, bool) { return e.timers.next() }

// TraversalDuration 是圆点走完全程的时长：max(600ms, n×stagger + 400ms)。
func (e *Engine) TraversalDuration() time.Duration {
	d := time.Duration(len(e.units))*e.cfg.Stagger + TraversalTail
	if d < MinTraversal {
		return MinTraversal
	}
	return d
}

// hopSpan 是最后一个字落地的时刻（相对 Running 开始）。
func (e *Engine) hopSpan() time.Duration {
	if len(e.units) == 0 {
		return 0
	}
	return time.Duration(len(e.units)-1)*e.cfg.Stagger + HopDuration
}

// Mount 在宿主挂载组件时调用。
func (e *Engine) Mount(now time.Time, width float64) {
	if e.mounted {
		return
	}
	e.mounted = true
	e.width = width
	if e.opts.ReducedMotion {
		e.settleImmediately()
		return
	}
	e.rebuild(now, "mount")
}

// Unmount 使当前代号失效并丢弃所有挂起的定时器。
func (e *Engine) Unmount() {
	if !e.mounted {
		return
	}
	e.mounted = false
	e.gen++
	e.timers.detach()
	e.phase = Idle
	e.resetVisuals()
	e.log.Debug("engine unmounted", "gen", e.gen)
}

// SetText 替换文本并完整重建。
func (e *Engine) SetText(now time.Time, text string) error {
	cfg := e.cfg
	cfg.Text = text
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.units, e.hasTerm = segment.Segment(text)
	if !e.mounted {
		e.resetVisuals()
		return nil
	}
	if e.opts.ReducedMotion {
		e.settleImmediately()
		return nil
	}
	e.rebuild(now, "text")
	return nil
}

// Resize 是宿主的布局变化信号（容器尺寸变化）。
// 视口类别变化时完整重建；动画进行中或尚未测量时同样重建，
// Settled 阶段同类别的尺寸变化只刷新几何，不重播。
func (e *Engine) Resize(now time.Time, width float64) {
	prev := e.width
	e.width = width
	if !e.mounted {
		return
	}
	if e.opts.ReducedMotion {
		e.settleImmediately()
		return
	}
	class := e.policy.Classify(width)
	if class != e.class {
		e.log.Info("viewport class changed", "from", e.class, "to", class, "width", width)
		e.rebuild(now, "viewport")
		return
	}
	if e.phase == Settled {
		e.refreshSettled()
		return
	}
	e.log.Debug("layout changed", "from", prev, "to", width, "phase", e.phase)
	e.rebuild(now, "resize")
}

// SetVisibility 是宿主的视口相交信号，ratio 为元素可见部分所占比例。
func (e *Engine) SetVisibility(now time.Time, ratio float64) {
	visible := ratio > 0 && ratio >= e.cfg.VisibleFraction
	was := e.inView
	e.inView = visible
	if !e.mounted || e.opts.ReducedMotion {
		return
	}
	if !visible {
		if was && e.phase == Settled {
			e.leftView = true
		}
		return
	}
	if was {
		return
	}
	switch e.phase {
	case Measuring:
		e.tryStart(now)
	case Settled:
		if e.cfg.ReplayOnView && e.hasTerm && e.leftView {
			e.rebuild(now, "replay")
		}
	}
}

// Advance 触发所有到期的定时器。代号已过期的定时器静默丢弃。
func (e *Engine) Advance(now time.Time) {
	for {
		t, ok := e.timers.popDue(now)
		if !ok {
			return
		}
		if t.gen != e.gen {
			e.log.Debug("stale timer discarded", "kind", t.kind, "timerGen", t.gen, "gen", e.gen)
			continue
		}
		switch t.kind {
		case timerMeasure:
			e.measure(t.at)
		case timerTraversal, timerHops:
			e.complete(t.at)
		}
	}
}

func (e *Engine) schedule(at time.Time, kind timerKind) {
	e.seq++
	e.timers.schedule(timer{at: at, gen: e.gen, kind: kind, seq: e.seq})
	e.log.Debug("timer scheduled", "kind", kind, "gen", e.gen, "at", at)
}

func (e *Engine) setPhase(p Phase) {
	if e.phase == p {
		return
	}
	e.log.Info("phase transition", "from", e.phase, "to", p, "gen", e.gen)
	e.phase = p
}

func (e *Engine) resetVisuals() {
	e.showDot = false
	e.showPeriod = false
	e.revealStart = time.Time{}
	e.runStart = time.Time{}
}

// rebuild 开启新一代：丢弃旧定时器与几何，重新规划、排版，并延迟测量。
func (e *Engine) rebuild(now time.Time, reason string) {
	e.gen++
	e.timers.detach()
	e.glyphs, e.lines = nil, nil
	e.traj = trajectory.Trajectory{}
	e.termBox = layout.Box{}
	e.measured = false
	e.leftView = false
	e.resetVisuals()

	e.class = e.policy.Classify(e.width)
	e.plan = e.policy.Plan(e.units, e.class)
	e.setPhase(Measuring)
	e.log.Debug("rebuild", "reason", reason, "gen", e.gen, "class", e.class, "mode", e.plan.Mode)

	if err := e.opts.Container.Render(e.units, e.plan, e.hasTerm); err != nil {
		// 宿主尚不能排版时等待下一次布局变化
		e.log.Warn("host render failed", "gen", e.gen, "err", err)
		return
	}
	e.schedule(now.Add(e.opts.SettleDelay), timerMeasure)
}

// readGeometry 测量、分行并（有终止符时）构造轨迹。
func (e *Engine) readGeometry() error {
	glyphs := layout.Measure(e.opts.Container, len(e.units))
	if len(glyphs) == 0 {
		return layout.ErrNotAttached
	}
	lines := layout.GroupLines(glyphs, e.opts.LineTolerance)
	var traj trajectory.Trajectory
	if e.hasTerm {
		var err error
		traj, err = trajectory.Build(lines, e.plan.Mode, *e.opts.Trajectory)
		if err != nil {
			return fmt.Errorf("build trajectory: %w", err)
		}
	}
	e.glyphs, e.lines, e.traj = glyphs, lines, traj
	e.readTerminator()
	return nil
}

// readTerminator 读取宿主为句点预留的位置，换算为容器坐标。
func (e *Engine) readTerminator() {
	e.termBox = layout.Box{}
	if !e.hasTerm {
		return
	}
	b, ok := e.opts.Container.TerminatorBox()
	if !ok {
		return
	}
	ox, oy := e.opts.Container.Origin()
	b.X -= ox
	b.Y -= oy
	e.termBox = b
}

func (e *Engine) measure(now time.Time) {
	if err := e.readGeometry(); err != nil {
		e.log.Debug("geometry not measurable yet", "gen", e.gen, "err", err)
		return
	}
	e.measured = true
	e.log.Debug("measured", "gen", e.gen, "glyphs", len(e.glyphs), "lines", len(e.lines), "path", e.traj.Length())
	e.tryStart(now)
}

func (e *Engine) refreshSettled() {
	e.class = e.policy.Classify(e.width)
	if err := e.opts.Container.Render(e.units, e.plan, e.hasTerm); err != nil {
		e.log.Warn("host render failed", "gen", e.gen, "err", err)
		return
	}
	if err := e.readGeometry(); err != nil {
		e.log.Debug("settled geometry not measurable", "gen", e.gen, "err", err)
	}
}

// tryStart 在几何就绪且（需要时）元素可见后进入 Running。
func (e *Engine) tryStart(now time.Time) {
	if e.phase != Measuring || !e.measured {
		return
	}
	if e.cfg.ReplayOnView && !e.inView {
		return
	}
	e.runStart = now
	e.showDot = e.hasTerm
	e.showPeriod = false
	e.setPhase(Running)
	if e.hasTerm {
		e.schedule(now.Add(e.TraversalDuration()), timerTraversal)
	} else {
		e.schedule(now.Add(e.hopSpan()), timerHops)
	}
}

func (e *Engine) complete(now time.Time) {
	if e.phase != Running {
		return
	}
	e.showDot = false
	if e.hasTerm {
		e.showPeriod = true
		e.revealStart = now
	}
	e.leftView = !e.inView
	e.setPhase(Settled)
}

// settleImmediately 用于减少动态效果：直接呈现最终文本，不经过 Measuring/Running。
func (e *Engine) settleImmediately() {
	e.gen++
	e.timers.detach()
	e.class = e.policy.Classify(e.width)
	e.plan = e.policy.Plan(e.units, e.class)
	if err := e.opts.Container.Render(e.units, e.plan, e.hasTerm); err != nil {
		e.log.Warn("host render failed", "gen", e.gen, "err", err)
	} else {
		e.readTerminator()
	}
	e.resetVisuals()
	e.showPeriod = e.hasTerm
	e.phase = Settled
	e.log.Debug("reduced motion: settled", "gen", e.gen)
}
