package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/ByLCY/rollingdot/layout"
	"github.com/ByLCY/rollingdot/trajectory"
)

// ErrInvalidConfig 是所有配置校验错误的哨兵，可用 errors.Is 判断。
var ErrInvalidConfig = errors.New("engine: invalid configuration")

// CurrentColor 表示圆点沿用文字颜色。
const CurrentColor = "currentColor"

// Config 是单个标题动画的配置。
type Config struct {
	// Text 为要动画的文本；末尾句点作为终止符，不参与逐字动画。
	Text string `json:"text"`
	// IndicatorColor 为圆点颜色，默认 currentColor。
	IndicatorColor string `json:"indicatorColor"`
	// HopHeight 为单字跳起的高度（px）。
	HopHeight float64 `json:"hopHeight"`
	// Stagger 为相邻字之间的起跳间隔。
	Stagger time.Duration `json:"stagger"`
	// ReplayOnView 为 true 时，进入视口才开始播放，离开再进入会重播。
	ReplayOnView bool `json:"replayOnView"`
	// VisibleFraction 为判定“可见”所需的最小可见比例，取值 (0,1]。
	VisibleFraction float64 `json:"visibleFraction"`
}

// DefaultConfig returns the default configuration for text.
func DefaultConfig(text string) Config {
	return Config{
		Text:            text,
		IndicatorColor:  CurrentColor,
		HopHeight:       14,
		Stagger:         80 * time.Millisecond,
		ReplayOnView:    true,
		VisibleFraction: 0.6,
	}
}

// Validate 检查调用方提供的取值，不做静默修正。
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Text) == "" {
		errs = append(errs, fmt.Errorf("%w: text is required", ErrInvalidConfig))
	}
	if math.IsNaN(c.HopHeight) || math.IsInf(c.HopHeight, 0) || c.HopHeight < 0 {
		errs = append(errs, fmt.Errorf("%w: hopHeight must be a non-negative number, got %g", ErrInvalidConfig, c.HopHeight))
	}
	if c.Stagger < 0 {
		errs = append(errs, fmt.Errorf("%w: stagger must not be negative, got %s", ErrInvalidConfig, c.Stagger))
	}
	if math.IsNaN(c.VisibleFraction) || c.VisibleFraction <= 0 || c.VisibleFraction > 1 {
		errs = append(errs, fmt.Errorf("%w: visibleFraction must be in (0,1], got %g", ErrInvalidConfig, c.VisibleFraction))
	}
	return errors.Join(errs...)
}

// Options 描述宿主协作方与内部调参。零值字段取默认值。
type Options struct {
	// Container 为宿主提供的渲染区域，必填。
	Container layout.Container
	// Policy 为响应式排版策略。
	Policy layout.Policy
	// LineTolerance 为分行时的垂直容差（px）。
	LineTolerance float64
	// SettleDelay 为布局变化后延迟测量的时间，避免读到重排中的几何。
	SettleDelay time.Duration
	// FontSize 用于推导圆点尺寸（0.5em）；为零时由字形高度估算。
	FontSize float64
	// Trajectory 覆盖圆点轨迹参数（起点偏移、基线比例），nil 时取默认值。
	// 以字符格为单位的宿主需要更小的起点偏移。
	Trajectory *trajectory.Options
	// ReducedMotion 为宿主的“减少动态效果”偏好，开启时直接呈现最终状态。
	ReducedMotion bool
	// Logger 为空时使用包级 Logger()。
	Logger *slog.Logger
}

// DefaultSettleDelay 是布局变化到测量之间的等待时间。
const DefaultSettleDelay = 50 * time.Millisecond

func (o Options) validate() error {
	var errs []error
	if o.Container == nil {
		errs = append(errs, fmt.Errorf("%w: container is required", ErrInvalidConfig))
	}
	if o.LineTolerance < 0 {
		errs = append(errs, fmt.Errorf("%w: line tolerance must not be negative, got %g", ErrInvalidConfig, o.LineTolerance))
	}
	if o.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("%w: settle delay must not be negative, got %s", ErrInvalidConfig, o.SettleDelay))
	}
	if o.Policy.Breakpoint < 0 || o.Policy.MobileLines < 0 {
		errs = append(errs, fmt.Errorf("%w: breakpoint and mobile lines must not be negative", ErrInvalidConfig))
	}
	if o.FontSize < 0 {
		errs = append(errs, fmt.Errorf("%w: font size must not be negative, got %g", ErrInvalidConfig, o.FontSize))
	}
	return errors.Join(errs...)
}

func (o Options) withDefaults() Options {
	if o.Policy.Breakpoint == 0 {
		o.Policy.Breakpoint = layout.DefaultBreakpoint
	}
	if o.Policy.MobileLines == 0 {
		o.Policy.MobileLines = layout.DefaultMobileLines
	}
	if o.LineTolerance == 0 {
		o.LineTolerance = layout.DefaultLineTolerance
	}
	if o.SettleDelay == 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.Logger == nil {
		o.Logger = Logger()
	}
	if o.Trajectory == nil {
		def := trajectory.DefaultOptions()
		o.Trajectory = &def
	}
	return o
}
