package layout

import (
	"math"
	"sort"
)

// DefaultLineTolerance 是同一行内允许的基线抖动（px）。
const DefaultLineTolerance = 8.0

// GroupLines 按垂直距离把字形聚成视觉行。
// 字形先按 (y, x) 排序；与当前行首个字形的 y 相差超过 tolerance 时开启新行。
// 以行首为参照而非滑动平均，避免长行上的细小抖动逐步累积漂移。
// 输入为空时返回 nil，调用方应视为“暂不可测量”。
func GroupLines(glyphs []Glyph, tolerance float64) []Line {
	if len(glyphs) == 0 {
		return nil
	}
	if tolerance < 0 {
		tolerance = 0
	}
	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Index < sorted[j].Index
	})

	var lines []Line
	var current []Glyph
	for _, g := range sorted {
		if len(current) > 0 && math.Abs(g.Y-current[0].Y) > tolerance {
			lines = append(lines, finishLine(current))
			current = nil
		}
		current = append(current, g)
	}
	lines = append(lines, finishLine(current))
	return lines
}

// finishLine 在行内按 X 重新排序：同一行的字形可能因抖动在 y 排序中交错。
func finishLine(glyphs []Glyph) Line {
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].X != glyphs[j].X {
			return glyphs[i].X < glyphs[j].X
		}
		return glyphs[i].Index < glyphs[j].Index
	})
	return Line{Glyphs: glyphs}
}
