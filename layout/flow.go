package layout

import "github.com/ByLCY/rollingdot/segment"

// FlowOptions 是宿主排版时的约束。长度单位由宿主决定（canvas 为 px，终端为字符格）。
type FlowOptions struct {
	// Width 为可用宽度，<=0 表示不折行。
	Width float64
	// LineHeight 为行高，也是每个单元包围盒的高度。
	LineHeight float64
	// TerminatorWidth 为句点宽度；最后一个词连同句点一起折行。
	TerminatorWidth float64
}

// Flow 是宿主共用的贪心排版：优先在空白处折行，plan 中的强制换行在词首生效，
// 单个词超过可用宽度时在词内按单元拆分。折行处行尾的空白折叠为零宽。
// advance[i] 为第 i 个单元的前进宽度。返回每个单元的包围盒与句点包围盒。
func Flow(units []segment.Unit, advance []float64, plan Plan, opts FlowOptions) ([]Box, Box) {
	boxes := make([]Box, len(units))
	limit := opts.Width
	x, y := 0.0, 0.0
	hasContent := false
	// pending 为当前行已放置、但后面还没有词的空白单元
	var pending []int

	newline := func() {
		for _, i := range pending {
			boxes[i].Width = 0
		}
		pending = pending[:0]
		x = 0
		y += opts.LineHeight
		hasContent = false
	}
	place := func(i int) {
		boxes[i] = Box{X: x, Y: y, Width: advance[i], Height: opts.LineHeight}
		x += advance[i]
	}

	words := segment.Words(units)
	next := 0
	for wi, w := range words {
		for ; next < w[0]; next++ {
			place(next)
			if hasContent {
				pending = append(pending, next)
			}
		}

		width := 0.0
		for i := w[0]; i < w[1]; i++ {
			width += advance[i]
		}
		if wi == len(words)-1 && w[1] == len(units) {
			width += opts.TerminatorWidth
		}
		if hasContent && (plan.BreakBefore(w[0]) || (limit > 0 && x+width > limit)) {
			newline()
		}
		pending = pending[:0]

		for i := w[0]; i < w[1]; i++ {
			if limit > 0 && x > 0 && x+advance[i] > limit {
				newline()
			}
			place(i)
			hasContent = true
		}
		next = w[1]
	}
	for ; next < len(units); next++ {
		place(next)
	}

	return boxes, Box{X: x, Y: y, Width: opts.TerminatorWidth, Height: opts.LineHeight}
}
