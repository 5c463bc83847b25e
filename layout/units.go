package layout

import (
	"strconv"
	"strings"
)

// 引擎内部的几何量统一以 px（CSS 像素，1in = 96px）表示；
// 场景文件允许书写 px/pt/mm/in，解析时保留原始单位，使用时再换算。

// Unit represents the original unit of a length value as written in a scene file.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitPX               // CSS pixels
	UnitPT               // points
	UnitMM               // millimeters
	UnitIN               // inches
)

// Conversion constants. canvas works in mm, fonts are sized in pt.
const (
	PxPerIn = 96.0
	PtPerIn = 72.0
	MmPerIn = 25.4

	PxToMm = MmPerIn / PxPerIn
	MmToPx = 1.0 / PxToMm
	PxToPt = PtPerIn / PxPerIn
	PtToPx = 1.0 / PxToPt
)

// String returns the short suffix of the unit.
func (u Unit) String() string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// PX converts the length to CSS pixels. Unit-less values are taken as px.
func (l Length) PX() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitMM:
		return l.Value * MmToPx
	case UnitIN:
		return l.Value * PxPerIn
	default:
		return l.Value
	}
}

// ParseLength parses "48px", "12pt", "3.5mm", "1in" or a bare number.
// ok 为 false 表示数值无法解析。
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"in", UnitIN}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			v = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves author intent: either a factor (1.15x) or an absolute length (56px).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight 解析行高：带长度单位（px/pt/mm/in）时为绝对值，
// "1.15x" 或不带单位的数值为字号倍数。ok 为 false 时返回默认 1.15 倍。
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if l, ok := ParseLength(v); ok && l.Value > 0 {
		if l.Unit == UnitNone {
			return LineHeightSpec{Kind: LineHeightFactor, Factor: l.Value}, true
		}
		return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
	}
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil && f > 0 && strings.HasSuffix(v, "x") {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	return LineHeightSpec{Kind: LineHeightFactor, Factor: DefaultLineHeight}, false
}

// DefaultLineHeight matches the display headline setting (text-4xl, 1.15).
const DefaultLineHeight = 1.15

// Resolve computes the absolute line height in px for the given font size in px.
func (s LineHeightSpec) Resolve(fontSizePX float64) float64 {
	switch s.Kind {
	case LineHeightAbsolute:
		return s.Len.PX()
	default:
		f := s.Factor
		if f <= 0 {
			f = DefaultLineHeight
		}
		return fontSizePX * f
	}
}
