// Package scene 将 .dot 场景的语法树与绑定数据构建为可直接驱动引擎与渲染器的结构。
package scene

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/rollingdot/binding"
	"github.com/ByLCY/rollingdot/dsl"
	"github.com/ByLCY/rollingdot/engine"
	"github.com/ByLCY/rollingdot/fonts"
	"github.com/ByLCY/rollingdot/layout"
)

// 未声明时的默认值（对应 text-4xl font-bold 的展示标题）。
const (
	DefaultFontName   = "Body"
	DefaultFontSizePX = 36.0
	DefaultHeightPX   = 480.0
)

var (
	defaultTextColor  = Color{R: 17, G: 17, B: 17}
	defaultBackground = Color{R: 255, G: 255, B: 255}
)

// BuildOptions 配置构建阶段的可选依赖。
type BuildOptions struct {
	// Logger 接收数据绑定缺失等警告，nil 时不输出
	Logger *slog.Logger
}

// Build 根据 DSL AST 与绑定数据生成场景。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Scene, error) {
	if doc == nil {
		return nil, fmt.Errorf("场景为空")
	}
	log := opts.Logger
	if log == nil {
		log = engine.Logger()
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	sc := &Scene{
		Name:      doc.Name,
		Version:   doc.Version,
		Meta:      collectMeta(doc, data),
		Resources: res,
	}
	for _, section := range doc.Sections {
		if section.Viewport == nil {
			continue
		}
		vp, err := buildViewport(section.Viewport, res, data, log)
		if err != nil {
			return nil, err
		}
		sc.Viewports = append(sc.Viewports, vp)
	}
	if len(sc.Viewports) == 0 {
		return nil, fmt.Errorf("场景中缺少 viewport 段落")
	}
	return sc, nil
}

func buildViewport(section *dsl.ViewportSection, res ResourceSet, data any, log *slog.Logger) (Viewport, error) {
	width, ok := layout.ParseLength(section.Width)
	if !ok || width.PX() <= 0 {
		return Viewport{}, fmt.Errorf("%s: viewport 宽度 %q 无效", section.Pos, section.Width)
	}
	vp := Viewport{
		Width:       width,
		Height:      layout.Length{Value: DefaultHeightPX, Unit: layout.UnitPX},
		Breakpoint:  layout.Length{Value: layout.DefaultBreakpoint, Unit: layout.UnitPX},
		MobileLines: layout.DefaultMobileLines,
		Background:  defaultBackground,
	}
	_, attrs := parseArgs(section.Params, false)
	if v, ok := attrs["breakpoint"]; ok {
		l, ok := layout.ParseLength(v)
		if !ok || l.PX() <= 0 {
			return Viewport{}, fmt.Errorf("%s: breakpoint %q 无效", section.Pos, v)
		}
		vp.Breakpoint = l
	}
	if v, ok := attrs["height"]; ok {
		if l, ok := layout.ParseLength(v); ok && l.PX() > 0 {
			vp.Height = l
		}
	}
	if v, ok := attrs["mobile-lines"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Viewport{}, fmt.Errorf("%s: mobile-lines %q 无效", section.Pos, v)
		}
		vp.MobileLines = n
	}
	if v, ok := attrs["background"]; ok {
		vp.Background = resolveColor(v, res, defaultBackground)
	}

	if section.Block == nil {
		return vp, nil
	}
	for _, st := range section.Block.Statements {
		if st.Command == nil || st.Command.Name != "headline" {
			continue
		}
		h, err := buildHeadline(st.Command, res, data)
		if err != nil {
			return Viewport{}, err
		}
		if len(h.Missing) > 0 {
			log.Warn("headline data binding incomplete", "pos", st.Command.Pos.String(), "missing", h.Missing)
		}
		vp.Headlines = append(vp.Headlines, h)
	}
	return vp, nil
}

// buildHeadline 合并命令参数与块内属性（块内优先），再绑定数据并校验引擎配置。
func buildHeadline(cmd *dsl.Command, res ResourceSet, data any) (Headline, error) {
	fontName, attrs := parseArgs(cmd.Args, true)
	def := engine.DefaultConfig("")
	h := Headline{
		Font:            fontName,
		FontSize:        layout.Length{Value: DefaultFontSizePX, Unit: layout.UnitPX},
		LineHeight:      layout.LineHeightSpec{Kind: layout.LineHeightFactor, Factor: layout.DefaultLineHeight},
		Color:           defaultTextColor,
		IndicatorColor:  engine.CurrentColor,
		HopHeight:       layout.Length{Value: def.HopHeight, Unit: layout.UnitPX},
		Stagger:         def.Stagger,
		ReplayOnView:    def.ReplayOnView,
		VisibleFraction: def.VisibleFraction,
	}

	var text strings.Builder
	if cmd.Block != nil {
		for _, st := range cmd.Block.Statements {
			switch {
			case st.Text != nil:
				text.WriteString(string(st.Text.Value))
			case st.Assignment != nil:
				a := st.Assignment
				if a.Key == "text" {
					s, err := textValue(a.Value, data)
					if err != nil {
						return Headline{}, fmt.Errorf("%s: %w", a.Pos, err)
					}
					text.WriteString(s)
					continue
				}
				if a.Value.Bool != nil {
					attrs[a.Key] = strconv.FormatBool(bool(*a.Value.Bool))
					continue
				}
				attrs[a.Key] = valueToString(a.Value)
			}
		}
	}

	if err := applyAttrs(&h, attrs, res); err != nil {
		return Headline{}, fmt.Errorf("%s: %w", cmd.Pos, err)
	}
	if h.Font == "" {
		h.Font = DefaultFontName
		if _, ok := res.Fonts[h.Font]; !ok {
			for name := range res.Fonts {
				h.Font = name
				break
			}
		}
	}
	if _, ok := res.Fonts[h.Font]; !ok {
		return Headline{}, fmt.Errorf("%s: 未定义的字体 %s", cmd.Pos, h.Font)
	}

	bound := binding.Resolve(text.String(), data)
	h.Text, h.Missing = bound.Text, bound.Missing
	if err := h.Config().Validate(); err != nil {
		return Headline{}, fmt.Errorf("%s: headline 配置无效: %w", cmd.Pos, err)
	}
	return h, nil
}

func applyAttrs(h *Headline, attrs map[string]string, res ResourceSet) error {
	for key, v := range attrs {
		switch key {
		case "font":
			h.Font = v
		case "size", "font-size":
			l, ok := layout.ParseLength(v)
			if !ok || l.PX() <= 0 {
				return fmt.Errorf("字号 %q 无效", v)
			}
			h.FontSize = l
		case "line-height":
			lh, ok := layout.ParseLineHeight(v)
			if !ok {
				return fmt.Errorf("行高 %q 无效", v)
			}
			h.LineHeight = lh
		case "color":
			h.Color = resolveColor(v, res, defaultTextColor)
		case "indicator-color":
			if strings.EqualFold(v, engine.CurrentColor) {
				h.IndicatorColor = engine.CurrentColor
				continue
			}
			c, ok := res.Colors[v]
			if !ok {
				var err error
				if c, err = ParseColor(v); err != nil {
					return err
				}
			}
			h.IndicatorColor = c.Hex()
		case "hop-height":
			l, ok := layout.ParseLength(v)
			if !ok {
				return fmt.Errorf("hop-height %q 无效", v)
			}
			h.HopHeight = l
		case "stagger":
			d, err := parseDuration(v)
			if err != nil {
				return err
			}
			h.Stagger = d
		case "replay-on-view":
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("replay-on-view %q 无效", v)
			}
			h.ReplayOnView = b
		case "visible-fraction":
			f, err := parseFraction(v)
			if err != nil {
				return err
			}
			h.VisibleFraction = f
		}
	}
	return nil
}

// Config 将标题转换为引擎配置；长度统一换算为 px。
func (h Headline) Config() engine.Config {
	return engine.Config{
		Text:            h.Text,
		IndicatorColor:  h.IndicatorColor,
		HopHeight:       h.HopHeight.PX(),
		Stagger:         h.Stagger,
		ReplayOnView:    h.ReplayOnView,
		VisibleFraction: h.VisibleFraction,
	}
}

// textValue 支持 text: "..." 与 text: data.path 两种写法。
func textValue(val *dsl.Value, data any) (string, error) {
	if val.String != nil {
		return string(*val.String), nil
	}
	if val.Expr == nil {
		return valueToString(val), nil
	}
	ref := val.Expr.String()
	path := strings.TrimPrefix(ref, "data.")
	v, ok := binding.Lookup(data, path)
	if !ok {
		return "", fmt.Errorf("绑定数据中找不到 %s", ref)
	}
	return fmt.Sprint(v), nil
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
	}
	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, st := range section.Resources.Block.Statements {
			if st.Command == nil {
				continue
			}
			switch st.Command.Name {
			case "font":
				font := parseFontResource(st.Command)
				if font.Name == "" {
					return res, fmt.Errorf("%s: font 缺少名称", st.Command.Pos)
				}
				res.Fonts[font.Name] = font
			case "color":
				name, value := parseColorResource(st.Command)
				if name == "" || value == "" {
					return res, fmt.Errorf("%s: color 需要写成 color <名称> = #rrggbb", st.Command.Pos)
				}
				c, err := ParseColor(value)
				if err != nil {
					return res, fmt.Errorf("%s: %w", st.Command.Pos, err)
				}
				res.Colors[name] = c
			}
		}
	}
	if len(res.Fonts) == 0 {
		res.Fonts[DefaultFontName] = FontResource{
			Name:      DefaultFontName,
			Src:       "builtin:gobold",
			IsBuiltin: true,
			Fallback:  "builtin:" + fonts.Default,
		}
	}
	return res, nil
}

// collectMeta 收集分镜元数据，标题与主题中的占位符同样按绑定数据替换。
func collectMeta(doc *dsl.Document, data any) Meta {
	meta := Meta{Creator: "rollingdot"}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, st := range section.Meta.Block.Statements {
			if st.Assignment == nil {
				continue
			}
			val := st.Assignment.Value
			switch strings.ToLower(st.Assignment.Key) {
			case "title":
				meta.Title = binding.Interpolate(valueToString(val), data)
			case "author":
				meta.Author = valueToString(val)
			case "subject":
				meta.Subject = binding.Interpolate(valueToString(val), data)
			case "creator":
				meta.Creator = valueToString(val)
			case "keywords":
				meta.Keywords = valueToStrings(val)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{Name: cmd.Args[0].Value}
	if cmd.Block != nil {
		for _, st := range cmd.Block.Statements {
			if st.Assignment == nil || st.Assignment.Value.String == nil {
				continue
			}
			v := string(*st.Assignment.Value.String)
			switch st.Assignment.Key {
			case "src":
				font.Src = v
			case "style":
				font.Style = v
			case "fallback":
				font.Fallback = v
			}
		}
	}
	if font.Src == "" {
		font.Src = "builtin:" + fonts.Default
	}
	font.IsBuiltin = fonts.IsBuiltin(font.Src)
	return font
}

// parseColorResource 解析 `color Brand = #4F46E5`。
func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) < 3 || cmd.Args[1].Value != "=" {
		return "", ""
	}
	return cmd.Args[0].Value, cmd.Args[2].Value
}

// parseArgs 把 `Display size 48px color #111` 拆成首个标识符与键值对。
func parseArgs(args []*dsl.Lexeme, leadingName bool) (string, map[string]string) {
	attrs := map[string]string{}
	cursor := 0
	var name string
	if leadingName && len(args) > 0 && args[0].Type == "Ident" {
		name = args[0].Value
		cursor = 1
	}
	for ; cursor+1 < len(args); cursor += 2 {
		attrs[args[cursor].Value] = args[cursor+1].Value
	}
	return name, attrs
}

func resolveColor(value string, res ResourceSet, fallback Color) Color {
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if c, err := ParseColor(value); err == nil {
		return c
	}
	return fallback
}

// parseDuration 接受 80ms、0.08s 或裸数字（毫秒）。
func parseDuration(v string) (time.Duration, error) {
	s := strings.TrimSpace(v)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(f * float64(time.Millisecond)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("时长 %q 无效", v)
	}
	return d, nil
}

// parseFraction 接受 0.6 或 60%。
func parseFraction(v string) (float64, error) {
	s := strings.TrimSpace(v)
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s, scale = strings.TrimSuffix(s, "%"), 0.01
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("比例 %q 无效", v)
	}
	return f * scale, nil
}

func valueToString(val *dsl.Value) string {
	switch {
	case val == nil:
		return ""
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Bool != nil:
		return strconv.FormatBool(bool(*val.Bool))
	case val.Expr != nil:
		return val.Expr.String()
	}
	return ""
}

func valueToStrings(val *dsl.Value) []string {
	if val != nil && val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
