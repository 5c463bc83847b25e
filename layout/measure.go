package layout

import "errors"

// ErrNotAttached 表示容器尚未挂载或没有尺寸，此时不应构造轨迹。
var ErrNotAttached = errors.New("layout: container not attached")

// Measure 读取容器中 n 个单元的包围盒并换算到容器局部坐标。
// 容器未挂载、宽度为零、没有单元或数量不一致时返回空结果，调用方应等待下一次布局变化后重试。
// Measure 只读取几何信息，不触发排版。
func Measure(c Container, n int) []Glyph {
	if c == nil || n == 0 || !c.Attached() || c.Width() <= 0 {
		return nil
	}
	boxes := c.Boxes()
	if len(boxes) != n {
		return nil
	}
	ox, oy := c.Origin()
	out := make([]Glyph, n)
	for i, b := range boxes {
		out[i] = Glyph{
			Box:   Box{X: b.X - ox, Y: b.Y - oy, Width: b.Width, Height: b.Height},
			Index: i,
		}
	}
	return out
}
