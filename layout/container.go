package layout

import "github.com/ByLCY/rollingdot/segment"

// Container 是宿主提供的渲染区域。宿主负责真正的排版（相当于浏览器的布局引擎），
// 引擎只在排版稳定后读取几何信息。
type Container interface {
	// Attached 报告容器是否已挂载并具有尺寸。
	Attached() bool
	// Width 返回容器当前可用宽度（px）。
	Width() float64
	// Render 执行一次排版：按 plan 放置所有单元，terminator 为 true 时在末尾预留句点位置。
	Render(units []segment.Unit, plan Plan, terminator bool) error
	// Boxes 返回最近一次排版中每个单元的包围盒，坐标为宿主坐标系。
	Boxes() []Box
	// TerminatorBox 返回句点的包围盒；未预留时 ok 为 false。
	TerminatorBox() (Box, bool)
	// Origin 返回容器左上角在宿主坐标系中的位置。
	Origin() (x, y float64)
}
