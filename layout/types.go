package layout

// 该文件定义测量、分行与排版策略共用的几何类型。坐标均以 px 表示。

// Box 是一个轴对齐包围盒。
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the trailing edge.
func (b Box) Right() float64 { return b.X + b.Width }

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.Width <= 0 && b.Height <= 0 }

// Glyph 是一次测量得到的单元几何，坐标相对容器左上角。
type Glyph struct {
	Box
	Index int `json:"index"` // 对应 segment.Unit.Index
}

// Line 是共享同一垂直带的一组字形，按 X 升序。
type Line struct {
	Glyphs []Glyph `json:"glyphs"`
}

// First returns the leftmost glyph of the line.
func (l Line) First() Glyph { return l.Glyphs[0] }

// Last returns the rightmost glyph of the line.
func (l Line) Last() Glyph { return l.Glyphs[len(l.Glyphs)-1] }

// ViewportClass 是可用宽度的粗粒度分类。
type ViewportClass int

const (
	Desktop ViewportClass = iota
	Mobile
)

func (c ViewportClass) String() string {
	switch c {
	case Mobile:
		return "mobile"
	default:
		return "desktop"
	}
}

// Mode 决定圆点轨迹的构造方式。
type Mode int

const (
	// ModeFluid 单块流式排版，两帧轨迹。
	ModeFluid Mode = iota
	// ModeStaircase 固定多段排版，逐行扫过再垂直跳到下一行。
	ModeStaircase
)

func (m Mode) String() string {
	if m == ModeStaircase {
		return "staircase"
	}
	return "fluid"
}

// Plan 是排版策略在测量之前给出的结构决定。
type Plan struct {
	Class ViewportClass `json:"class"`
	Mode  Mode          `json:"mode"`
	// Breaks 为强制换行的单元下标（新行从该单元开始），升序；流式排版为空。
	Breaks []int `json:"breaks,omitempty"`
}

// BreakBefore reports whether a forced line starts at unit index i.
func (p Plan) BreakBefore(i int) bool {
	for _, b := range p.Breaks {
		if b == i {
			return true
		}
		if b > i {
			return false
		}
	}
	return false
}
