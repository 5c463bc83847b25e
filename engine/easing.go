package engine

import (
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// curve 把 gween 的缓动函数包装为进度映射 [0,1] → [0,1]。
type curve struct {
	name string
	fn   ease.TweenFunc
}

var (
	easeOut   = curve{"outQuad", ease.OutQuad}
	easeInOut = curve{"inOutCubic", ease.InOutCubic}
)

// At 返回进度 x 对应的缓动值，区间外的进度夹到端点。
func (c curve) At(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	v, _ := gween.New(0, 1, 1, c.fn).Set(float32(x))
	return float64(v)
}

const (
	revealFPS       = 60
	revealFrequency = 18.0
	revealDamping   = 0.7
	revealFromScale = 0.6
)

// revealScale 以弹簧模拟句点从 0.6 倍放大到原尺寸的过程，动画时长结束后固定为 1。
func revealScale(elapsed time.Duration) float64 {
	if elapsed >= RevealDuration {
		return 1
	}
	if elapsed <= 0 {
		return revealFromScale
	}
	spring := harmonica.NewSpring(harmonica.FPS(revealFPS), revealFrequency, revealDamping)
	pos, vel := revealFromScale, 0.0
	steps := int(elapsed.Seconds() * revealFPS)
	for i := 0; i < steps; i++ {
		pos, vel = spring.Update(pos, vel, 1)
	}
	return pos
}
