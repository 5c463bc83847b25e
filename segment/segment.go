// Package segment 将标题文本拆分为逐字动画所用的显示单元。
package segment

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Terminator 是标题末尾被特殊处理的句点，动画结束前由圆点代替。
const Terminator = "."

// Unit 是一个用户感知意义上的字符（扩展字形簇），作为独立的动画与测量单元。
type Unit struct {
	Char  string `json:"char"`
	Index int    `json:"index"`
}

// IsSpace 报告该单元是否为空白。
func (u Unit) IsSpace() bool {
	return strings.TrimSpace(u.Char) == ""
}

// Segment 按字形簇拆分 text。
// 去掉首尾空白后若以句点结尾，则句点不进入单元序列，hasTerminator 为 true；
// 否则原文（不裁剪）整体参与拆分。
func Segment(text string) (units []Unit, hasTerminator bool) {
	base := text
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, Terminator) {
		hasTerminator = true
		base = strings.TrimSuffix(trimmed, Terminator)
	}

	gr := uniseg.NewGraphemes(base)
	for gr.Next() {
		units = append(units, Unit{Char: gr.Str(), Index: len(units)})
	}
	return units, hasTerminator
}

// Join 按顺序拼接单元内容。
func Join(units []Unit) string {
	var b strings.Builder
	for _, u := range units {
		b.WriteString(u.Char)
	}
	return b.String()
}

// Words 返回按空白切分的词区间，每项为 [start, end) 的单元下标，空白单元不计入任何词。
func Words(units []Unit) [][2]int {
	var out [][2]int
	start := -1
	for i, u := range units {
		if u.IsSpace() {
			if start >= 0 {
				out = append(out, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, [2]int{start, len(units)})
	}
	return out
}
