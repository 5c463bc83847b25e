// Package trajectory 把测量得到的行几何转换为圆点沿文字下方移动的关键帧路径。
package trajectory

import (
	"errors"
	"math"

	"github.com/ByLCY/rollingdot/layout"
)

// ErrEmpty 表示没有可用的行，轨迹无法构造。
var ErrEmpty = errors.New("trajectory: no lines to follow")

const (
	// DefaultLeadIn 圆点起点位于首字左侧的偏移（px）。
	DefaultLeadIn = 12.0
	// DefaultBaselineRatio 圆点相对字形包围盒高度的落点比例，近似滚动圆点贴合的基线位置。
	DefaultBaselineRatio = 0.82
	// DefaultJumpFraction 行与行之间垂直跳跃所占的总时长比例。
	DefaultJumpFraction = 0.02
)

// Options 控制轨迹构造。
type Options struct {
	LeadIn        float64
	BaselineRatio float64
	JumpFraction  float64
}

// DefaultOptions returns the standard lead-in, baseline ratio and jump fraction.
func DefaultOptions() Options {
	return Options{
		LeadIn:        DefaultLeadIn,
		BaselineRatio: DefaultBaselineRatio,
		JumpFraction:  DefaultJumpFraction,
	}
}

// Keyframe 是轨迹上的一个点，Time 为 [0,1] 内的时间比例。
type Keyframe struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Time float64 `json:"time"`
}

// Trajectory 是按时间严格递增的关键帧序列。
type Trajectory struct {
	Mode      layout.Mode `json:"mode"`
	Keyframes []Keyframe  `json:"keyframes"`
}

// Baseline 返回字形的圆点落点 y。
func Baseline(g layout.Glyph, ratio float64) float64 {
	return g.Y + g.Height*ratio
}

// Build 根据行几何构造轨迹。
// 单行时总是两帧的流式轨迹；多行时构造阶梯轨迹，即便 mode 为流式（流式文本在窄宽度下同样会折行）。
func Build(lines []layout.Line, mode layout.Mode, opts Options) (Trajectory, error) {
	if len(lines) == 0 || len(lines[0].Glyphs) == 0 {
		return Trajectory{}, ErrEmpty
	}
	if opts.BaselineRatio <= 0 {
		opts.BaselineRatio = DefaultBaselineRatio
	}
	if len(lines) == 1 {
		return fluid(lines[0], opts), nil
	}
	return staircase(lines, opts), nil
}

func fluid(line layout.Line, opts Options) Trajectory {
	first, last := line.First(), line.Last()
	return Trajectory{
		Mode: layout.ModeFluid,
		Keyframes: []Keyframe{
			{X: first.X - opts.LeadIn, Y: Baseline(first, opts.BaselineRatio), Time: 0},
			{X: last.Right(), Y: Baseline(last, opts.BaselineRatio), Time: 1},
		},
	}
}

// staircase 每行一段水平扫过，段间留出极短的垂直跳跃，使水平移动主导观感时长。
func staircase(lines []layout.Line, opts Options) Trajectory {
	n := float64(len(lines))
	// 跳跃时长必须为正，否则相邻关键帧时间相同
	jump := opts.JumpFraction
	if jump <= 0 {
		jump = DefaultJumpFraction
	}
	jump = math.Min(jump, 0.25/n)

	kfs := make([]Keyframe, 0, 2*len(lines))
	for i, line := range lines {
		first, last := line.First(), line.Last()
		startX := first.X
		if i == 0 {
			startX -= opts.LeadIn
		}
		start := float64(i) / n
		end := float64(i+1)/n - jump
		if i == len(lines)-1 {
			end = 1
		}
		kfs = append(kfs,
			Keyframe{X: startX, Y: Baseline(first, opts.BaselineRatio), Time: start},
			Keyframe{X: last.Right(), Y: Baseline(last, opts.BaselineRatio), Time: end},
		)
	}
	return Trajectory{Mode: layout.ModeStaircase, Keyframes: kfs}
}

// End returns the final keyframe.
func (t Trajectory) End() Keyframe {
	return t.Keyframes[len(t.Keyframes)-1]
}

// At 按时间比例 f 在关键帧之间线性插值。
func (t Trajectory) At(f float64) (x, y float64) {
	kfs := t.Keyframes
	if len(kfs) == 0 {
		return 0, 0
	}
	if f <= kfs[0].Time {
		return kfs[0].X, kfs[0].Y
	}
	for i := 1; i < len(kfs); i++ {
		a, b := kfs[i-1], kfs[i]
		if f <= b.Time {
			span := b.Time - a.Time
			if span <= 0 {
				return b.X, b.Y
			}
			p := (f - a.Time) / span
			return a.X + (b.X-a.X)*p, a.Y + (b.Y-a.Y)*p
		}
	}
	end := kfs[len(kfs)-1]
	return end.X, end.Y
}

// Length 返回路径总长度。
func (t Trajectory) Length() float64 {
	total := 0.0
	for i := 1; i < len(t.Keyframes); i++ {
		a, b := t.Keyframes[i-1], t.Keyframes[i]
		total += math.Hypot(b.X-a.X, b.Y-a.Y)
	}
	return total
}
