package canvasrenderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/rollingdot/fonts"
	"github.com/ByLCY/rollingdot/scene"
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// face 返回给定字体资源在 sizePX 字号下的字体面。canvas 以 pt 为字号单位。
func (r *Renderer) face(font scene.FontResource, sizePX float64, col scene.Color, alpha float64) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(pxToPt(sizePX), colorOf(col, alpha), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font scene.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := font.Name + "|" + font.Src + "|" + font.Style
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	name := font.Name
	if name == "" {
		name = scene.DefaultFontName
	}
	family := canvas.NewFontFamily(name)
	if err := r.loadInto(family, font.Src, style); err != nil {
		// 先尝试资源自身声明的 fallback，再退回内置字体
		fb, fbErr := r.fallback(font.Fallback)
		if fbErr != nil {
			return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", font.Name, err)
		}
		r.log.Warn("font load failed, using fallback", "font", font.Name, "src", font.Src, "err", err)
		r.fontFamilies[key] = &fontFamilyEntry{family: fb, style: canvas.FontRegular}
		return fb, canvas.FontRegular, nil
	}
	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

func (r *Renderer) loadInto(family *canvas.FontFamily, src string, style canvas.FontStyle) error {
	data, err := r.fontBytes(src)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) fontBytes(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体缺少 src")
	}
	if fonts.IsBuiltin(src) {
		return fonts.Load(src)
	}
	path := src
	if !filepath.IsAbs(path) {
		if r.baseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
		}
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

// fallback 加载兜底字体；src 为空时使用内置默认字体。
func (r *Renderer) fallback(src string) (*canvas.FontFamily, error) {
	if src == "" {
		src = "builtin:" + fonts.Default
	}
	if fam, ok := r.fallbacks[src]; ok {
		return fam, nil
	}
	family := canvas.NewFontFamily("rollingdot-fallback")
	if err := r.loadInto(family, src, canvas.FontRegular); err != nil {
		if src == "builtin:"+fonts.Default {
			return nil, err
		}
		return r.fallback("")
	}
	r.fallbacks[src] = family
	return family, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	var result canvas.FontStyle
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	default:
		result = canvas.FontRegular
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}
