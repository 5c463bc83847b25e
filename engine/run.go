package engine

import (
	"context"
	"time"
)

// Signals 是宿主提供的通知通道。nil 通道表示宿主不提供该信号。
type Signals struct {
	// Layout 在容器尺寸变化时送出新的宽度（px）。
	Layout <-chan float64
	// Visibility 在相交比例跨越阈值时送出元素的可见比例。
	Visibility <-chan float64
}

// DefaultFrameInterval 约为 60fps。
const DefaultFrameInterval = 16 * time.Millisecond

// Run 在调用方的 goroutine 上驱动引擎，直到 ctx 结束。
// 所有信号与帧时钟都在同一个 select 中串行处理，引擎状态只在这一条路径上被访问。
// sink 在每个时钟周期收到当前帧；返回时引擎已卸载，所有挂起的定时器都已丢弃。
func (e *Engine) Run(ctx context.Context, sig Signals, interval time.Duration, sink func(Frame)) error {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer e.Unmount()

	e.Mount(time.Now(), e.opts.Container.Width())

	layoutCh, visibilityCh := sig.Layout, sig.Visibility
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case w, ok := <-layoutCh:
			if !ok {
				layoutCh = nil
				continue
			}
			e.Resize(time.Now(), w)
		case r, ok := <-visibilityCh:
			if !ok {
				visibilityCh = nil
				continue
			}
			e.SetVisibility(time.Now(), r)
		case now := <-ticker.C:
			e.Advance(now)
			if sink != nil {
				sink(e.Frame(now))
			}
		}
	}
}
