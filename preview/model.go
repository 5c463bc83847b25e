// Package preview 是一个交互式终端预览器：在字符格上实时播放标题动画。
//
// 按键：
//
//	v  切换元素是否在视口内（触发重播）
//	m  在移动端与桌面端宽度之间切换
//	r  重新播放
//	q  退出
package preview

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/rollingdot/engine"
	"github.com/ByLCY/rollingdot/layout"
	termrenderer "github.com/ByLCY/rollingdot/renderer/term"
	"github.com/ByLCY/rollingdot/scene"
	"github.com/ByLCY/rollingdot/trajectory"
)

// Terminal defaults, in cells.
const (
	DefaultWidth       = 80
	DefaultBreakpoint  = 60
	DefaultMobileWidth = 32
	// 每行文本占三行字符格，行内差异不超过半格才视为同一行
	cellLineTolerance = 0.5
	cellHopHeight     = 1.0
	cellLeadIn        = 1.0
	padding           = 2
)

// Options 配置预览器。
type Options struct {
	Headline      scene.Headline
	Width         int // 初始终端宽度（列），0 取 DefaultWidth
	Breakpoint    int // 移动端断点（列），0 取 DefaultBreakpoint
	MobileLines   int
	ReducedMotion bool
	FrameInterval time.Duration
	Logger        *slog.Logger
	// Clock 为空时使用 time.Now
	Clock func() time.Time
}

type tickMsg time.Time

// Model 是 bubbletea 模型，持有单个标题的引擎与字符格容器。
type Model struct {
	headline scene.Headline
	eng      *engine.Engine
	surface  *termrenderer.Surface
	interval time.Duration
	clock    func() time.Time
	log      *slog.Logger

	termWidth int
	mobile    bool
	visible   bool
	frame     engine.Frame
	err       error

	title, text, dot, help lipgloss.Style
}

// New 创建预览模型并挂载引擎。元素初始处于视口内。
func New(opts Options) (*Model, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Breakpoint <= 0 {
		opts.Breakpoint = DefaultBreakpoint
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = engine.DefaultFrameInterval
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = engine.Logger()
	}

	cfg := opts.Headline.Config()
	cfg.HopHeight = cellHopHeight
	surface := termrenderer.NewSurface(opts.Width - 2*padding)
	surface.SetOrigin(padding, 0)
	eng, err := engine.New(cfg, engine.Options{
		Container:     surface,
		Policy:        layout.Policy{Breakpoint: float64(opts.Breakpoint), MobileLines: opts.MobileLines},
		LineTolerance: cellLineTolerance,
		FontSize:      1,
		Trajectory:    &trajectory.Options{LeadIn: cellLeadIn},
		ReducedMotion: opts.ReducedMotion,
		Logger:        opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("创建预览引擎失败: %w", err)
	}

	textColor := lipgloss.Color(opts.Headline.Color.Hex())
	dotColor := textColor
	if c := opts.Headline.IndicatorColor; c != "" && c != engine.CurrentColor {
		dotColor = lipgloss.Color(c)
	}
	m := &Model{
		headline:  opts.Headline,
		eng:       eng,
		surface:   surface,
		interval:  opts.FrameInterval,
		clock:     opts.Clock,
		log:       opts.Logger,
		termWidth: opts.Width,
		visible:   true,
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		text:      lipgloss.NewStyle().Bold(true).Foreground(textColor),
		dot:       lipgloss.NewStyle().Foreground(dotColor),
		help:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
	now := m.clock()
	eng.Mount(now, float64(m.surfaceWidth()))
	eng.SetVisibility(now, 1)
	m.frame = eng.Frame(now)
	return m, nil
}

// Engine exposes the hosted engine.
func (m *Model) Engine() *engine.Engine { return m.eng }

func (m *Model) Init() tea.Cmd { return m.tick() }

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	now := m.clock()
	switch msg := msg.(type) {
	case tickMsg:
		m.eng.Advance(now)
		m.frame = m.eng.Frame(now)
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.resize(now)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.eng.Unmount()
			return m, tea.Quit
		case "v":
			m.visible = !m.visible
			ratio := 0.0
			if m.visible {
				ratio = 1
			}
			m.eng.SetVisibility(now, ratio)
		case "m":
			m.mobile = !m.mobile
			m.resize(now)
		case "r":
			if err := m.eng.SetText(now, m.headline.Text); err != nil {
				m.err = err
				m.log.Warn("replay failed", "err", err)
			}
		}
	}
	m.frame = m.eng.Frame(now)
	return m, nil
}

func (m *Model) surfaceWidth() int {
	w := m.termWidth - 2*padding
	if m.mobile {
		w = min(w, DefaultMobileWidth)
	}
	return max(w, 1)
}

func (m *Model) resize(now time.Time) {
	w := m.surfaceWidth()
	m.surface.SetWidth(w)
	m.eng.Resize(now, float64(w))
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.title.Render("rollingdot preview"))
	b.WriteString("\n\n")

	indent := strings.Repeat(" ", padding)
	for _, row := range m.surface.Draw(m.frame, cellHopHeight) {
		b.WriteString(indent)
		b.WriteString(strings.TrimRight(m.renderRow(row), " "))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.Render(m.status()))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(m.help.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.Render("v visibility · m mobile/desktop · r replay · q quit"))
	return b.String()
}

func (m *Model) status() string {
	return fmt.Sprintf("%s · %s · gen %d · visible %v", m.frame.Phase, m.frame.Class, m.frame.Generation, m.visible)
}

// renderRow 把同类字符格合并成段后着色。
func (m *Model) renderRow(row []termrenderer.Cell) string {
	var out, run strings.Builder
	kind := termrenderer.CellEmpty
	flush := func() {
		if run.Len() == 0 {
			return
		}
		switch kind {
		case termrenderer.CellText, termrenderer.CellTerminator:
			out.WriteString(m.text.Render(run.String()))
		case termrenderer.CellIndicator:
			out.WriteString(m.dot.Render(run.String()))
		default:
			out.WriteString(run.String())
		}
		run.Reset()
	}
	for _, c := range row {
		k := c.Kind
		if k == termrenderer.CellTerminator {
			k = termrenderer.CellText
		}
		if k != kind {
			flush()
			kind = k
		}
		run.WriteString(c.Char)
	}
	flush()
	return out.String()
}

// Run 启动全屏预览，直到用户退出。
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
