package renderer

import (
	"io"

	"github.com/ByLCY/rollingdot/engine"
	"github.com/ByLCY/rollingdot/layout"
	"github.com/ByLCY/rollingdot/scene"
)

// Format 是单帧输出格式。
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Shot 是一帧可直接绘制的画面：视口、标题样式、宿主排版结果与引擎帧。
type Shot struct {
	Viewport scene.Viewport
	Headline scene.Headline
	// Boxes / Terminator 为宿主最近一次排版结果（容器坐标，px）
	Boxes      []layout.Box
	Terminator layout.Box
	// OriginX / OriginY 为标题容器在视口中的位置（px）
	OriginX, OriginY float64
	Frame            engine.Frame
}

// Renderer 将引擎帧输出为最终文件。
// RenderFrame 写出单帧图像；Storyboard 把一组帧排成多页 PDF 并返回其字节。
type Renderer interface {
	RenderFrame(w io.Writer, shot Shot, format Format) error
	Storyboard(meta scene.Meta, shots []Shot) ([]byte, error)
}
