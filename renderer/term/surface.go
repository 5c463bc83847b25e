// Package termrenderer 在终端字符格上排版并绘制标题。
//
// 每一行文本占三行字符格：跳动行、文字行，以及圆点滚过的底行。
// 所有长度以字符格为单位，宽字符（CJK、emoji）按 go-runewidth 计为两格。
package termrenderer

import (
	"errors"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/rollingdot/engine"
	"github.com/ByLCY/rollingdot/layout"
	"github.com/ByLCY/rollingdot/segment"
)

// ErrDetached 表示 Surface 尚未挂载，无法排版。
var ErrDetached = errors.New("termrenderer: surface is detached")

// RowsPerLine 是每行文本占用的字符格行数。
const RowsPerLine = 3

// 行内各子行的偏移
const (
	hopRow = iota
	textRow
	dotRow
)

// Glyphs used when drawing.
const (
	IndicatorGlyph   = "●"
	FaintTerminator  = "·"
	TerminatorGlyph  = segment.Terminator
	hopThresholdRate = 0.5
)

// CellKind 标记字符格的内容来源，供上层着色。
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellIndicator
	CellTerminator
)

// Cell 是绘制结果中的一个字符格。宽字符的第二格 Char 为空串。
type Cell struct {
	Char string
	Kind CellKind
}

// Surface 是以字符格排版的容器，实现 layout.Container。
type Surface struct {
	width    float64
	attached bool
	ox, oy   float64

	units   []segment.Unit
	boxes   []layout.Box
	term    layout.Box
	hasTerm bool
}

var _ layout.Container = (*Surface)(nil)

// NewSurface 创建一个宽度为 width 列的已挂载容器。
func NewSurface(width int) *Surface {
	return &Surface{width: float64(width), attached: true}
}

func (s *Surface) Attached() bool { return s.attached && s.width > 0 }
func (s *Surface) Width() float64 { return s.width }

// SetWidth 改变容器宽度（列）；调用方随后应通知引擎 Resize。
func (s *Surface) SetWidth(w int) { s.width = float64(w) }

// SetAttached 挂载或卸下容器。
func (s *Surface) SetAttached(v bool) { s.attached = v }

// SetOrigin 设置容器在终端中的位置（列，行）。
func (s *Surface) SetOrigin(x, y int) { s.ox, s.oy = float64(x), float64(y) }

func (s *Surface) Origin() (float64, float64) { return s.ox, s.oy }

// Render implements layout.Container.
func (s *Surface) Render(units []segment.Unit, plan layout.Plan, terminator bool) error {
	if !s.Attached() {
		return ErrDetached
	}
	advance := make([]float64, len(units))
	for i, u := range units {
		w := runewidth.StringWidth(u.Char)
		if w == 0 {
			// 控制字符等不可见单元仍占一格，保证每个单元都有包围盒
			w = 1
		}
		advance[i] = float64(w)
	}
	opts := layout.FlowOptions{Width: s.width, LineHeight: RowsPerLine}
	if terminator {
		opts.TerminatorWidth = float64(runewidth.StringWidth(segment.Terminator))
	}
	s.units = append(s.units[:0], units...)
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

// Rows 返回当前排版占用的字符格行数。
func (s *Surface) Rows() int {
	h := 0.0
	for _, b := range s.boxes {
		h = math.Max(h, b.Y+b.Height)
	}
	if s.hasTerm {
		h = math.Max(h, s.term.Y+s.term.Height)
	}
	return int(math.Ceil(h))
}

// Draw 把帧绘制为字符格网格，坐标相对容器左上角。
// 单元的跳动位移超过 hopHeight 的一半时画在跳动行上；句点取帧中测得的位置。
func (s *Surface) Draw(f engine.Frame, hopHeight float64) [][]Cell {
	rows := s.Rows()
	cols := int(s.width)
	for _, b := range s.boxes {
		cols = max(cols, int(math.Ceil(b.Right())))
	}
	if s.hasTerm {
		cols = max(cols, int(math.Ceil(s.term.Right())))
	}
	grid := make([][]Cell, rows)
	for r := range grid {
		grid[r] = make([]Cell, cols)
		for c := range grid[r] {
			grid[r][c] = Cell{Char: " "}
		}
	}

	put := func(row, col int, char string, kind CellKind) {
		if row < 0 || row >= rows || col < 0 || col >= cols {
			return
		}
		grid[row][col] = Cell{Char: char, Kind: kind}
		for i := 1; i < runewidth.StringWidth(char) && col+i < cols; i++ {
			grid[row][col+i] = Cell{Kind: kind}
		}
	}

	for i, b := range s.boxes {
		if i >= len(s.units) || s.units[i].IsSpace() || b.Width == 0 {
			continue
		}
		row := int(b.Y) + textRow
		if i < len(f.Units) && hopHeight > 0 && f.Units[i].OffsetY < -hopHeight*hopThresholdRate {
			row = int(b.Y) + hopRow
		}
		put(row, int(b.X), s.units[i].Char, CellText)
	}

	if t := f.Terminator; t.Present && t.Visible {
		glyph := TerminatorGlyph
		if t.Opacity < hopThresholdRate {
			glyph = FaintTerminator
		}
		put(int(t.Box.Y)+textRow, int(t.Box.X), glyph, CellTerminator)
	}

	// 圆点在文字下方滚动，不覆盖任何字形
	if f.Indicator.Visible {
		line := int(math.Floor(f.Indicator.Y/RowsPerLine)) * RowsPerLine
		col := int(math.Round(f.Indicator.X))
		put(line+dotRow, max(col, 0), IndicatorGlyph, CellIndicator)
	}
	return grid
}

// Lines 把网格拼接为纯文本行，行尾空白去除。
func Lines(grid [][]Cell) []string {
	out := make([]string, len(grid))
	for r, row := range grid {
		var b strings.Builder
		for _, c := range row {
			b.WriteString(c.Char)
		}
		out[r] = strings.TrimRight(b.String(), " ")
	}
	return out
}
