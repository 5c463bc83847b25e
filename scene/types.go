package scene

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/rollingdot/layout"
)

// 该文件定义场景构建结果，供引擎配置、渲染与调试 JSON 共用。

// Scene 是一个 .dot 文件构建后的结果。
type Scene struct {
	Name      string      `json:"name"`
	Version   string      `json:"version"`
	Meta      Meta        `json:"meta"`
	Resources ResourceSet `json:"resources"`
	Viewports []Viewport  `json:"viewports"`
}

// Meta 对应 meta 段，导出 PDF 分镜时写入文档信息。
type Meta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// ResourceSet 记录字体与命名颜色。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Colors map[string]Color        `json:"colors"`
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name      string `json:"name"`
	Src       string `json:"src"`
	Style     string `json:"style"`
	IsBuiltin bool   `json:"isBuiltin"`
	Fallback  string `json:"fallback,omitempty"`
}

// Viewport 是一个预览视口。宽度决定视口类别。
type Viewport struct {
	Width       layout.Length `json:"width"`
	Height      layout.Length `json:"height"`
	Breakpoint  layout.Length `json:"breakpoint"`
	MobileLines int           `json:"mobileLines"`
	Background  Color         `json:"background"`
	Headlines   []Headline    `json:"headlines"`
}

// Policy 返回该视口使用的响应式排版策略。
func (v Viewport) Policy() layout.Policy {
	p := layout.DefaultPolicy()
	if bp := v.Breakpoint.PX(); bp > 0 {
		p.Breakpoint = bp
	}
	if v.MobileLines > 0 {
		p.MobileLines = v.MobileLines
	}
	return p
}

// Headline 是一条带动画的标题。
type Headline struct {
	Text       string                `json:"text"`
	Font       string                `json:"font"`
	FontSize   layout.Length         `json:"fontSize"`
	LineHeight layout.LineHeightSpec `json:"lineHeight"`
	Color      Color                 `json:"color"`

	// IndicatorColor 为 "#rrggbb" 或 currentColor
	IndicatorColor  string        `json:"indicatorColor"`
	HopHeight       layout.Length `json:"hopHeight"`
	Stagger         time.Duration `json:"stagger"`
	ReplayOnView    bool          `json:"replayOnView"`
	VisibleFraction float64       `json:"visibleFraction"`

	// Missing 列出文本中未能绑定的数据路径
	Missing []string `json:"missing,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor 解析 #rgb、#rrggbb 与 #rrggbbaa（忽略透明度）。
func ParseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}
