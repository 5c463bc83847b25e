package layout

import "github.com/ByLCY/rollingdot/segment"

// Breakpoints
const (
	// DefaultBreakpoint 低于该宽度视为移动端（md = 48em）。
	DefaultBreakpoint = 768.0
	// DefaultMobileLines 是移动端固定的行数。
	DefaultMobileLines = 3
)

// Policy 在分段和测量之前决定排版结构：桌面端单块流式，移动端固定多行。
type Policy struct {
	Breakpoint  float64
	MobileLines int
}

// DefaultPolicy returns the policy with the default breakpoint and line count.
func DefaultPolicy() Policy {
	return Policy{Breakpoint: DefaultBreakpoint, MobileLines: DefaultMobileLines}
}

// Classify 根据宽度返回视口类别。
func (p Policy) Classify(width float64) ViewportClass {
	bp := p.Breakpoint
	if bp <= 0 {
		bp = DefaultBreakpoint
	}
	if width < bp {
		return Mobile
	}
	return Desktop
}

// Plan 为给定单元序列与视口类别生成排版结构。
// 移动端的分行总是从实际文本推导：按词把单元均衡地分到 MobileLines 行，
// 词数少于行数时每词一行。
func (p Policy) Plan(units []segment.Unit, class ViewportClass) Plan {
	if class != Mobile {
		return Plan{Class: class, Mode: ModeFluid}
	}
	n := p.MobileLines
	if n <= 0 {
		n = DefaultMobileLines
	}
	return Plan{Class: Mobile, Mode: ModeStaircase, Breaks: balancedBreaks(segment.Words(units), n)}
}

// balancedBreaks 贪心地把词分配到 n 行，使每行的单元数接近平均值。
// 返回除第一行外每行首词的起始下标。
func balancedBreaks(words [][2]int, n int) []int {
	if len(words) <= 1 || n <= 1 {
		return nil
	}
	if len(words) <= n {
		breaks := make([]int, 0, len(words)-1)
		for _, w := range words[1:] {
			breaks = append(breaks, w[0])
		}
		return breaks
	}

	total := 0
	for _, w := range words {
		total += w[1] - w[0]
	}

	var breaks []int
	filled := 0
	line := 1
	for i, w := range words {
		remainingWords := len(words) - i
		remainingLines := n - line + 1
		// 剩余词数恰好等于剩余行数时必须每词一行
		mustBreak := i > 0 && remainingWords == remainingLines
		target := float64(total) * float64(line) / float64(n)
		size := w[1] - w[0]
		overTarget := i > 0 && float64(filled)+float64(size)/2 > target
		if line < n && (mustBreak || overTarget) {
			breaks = append(breaks, w[0])
			line++
		}
		filled += size
	}
	return breaks
}
