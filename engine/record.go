package engine

import "time"

// MaxRecording 限制离线录制的总时长，防止宿主始终不可测量时无限推进。
const MaxRecording = 30 * time.Second

// Record 离线驱动一次完整播放：挂载、进入视口、按 interval 推进，
// 直到 Settled 且句点展开完成。返回按时间顺序的帧，结束时卸载。
// 用于导出帧序列与分镜，调用方不得同时以其他方式驱动该引擎。
func (e *Engine) Record(start time.Time, width float64, interval time.Duration) []Frame {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	e.Mount(start, width)
	e.SetVisibility(start, 1)
	defer e.Unmount()

	var frames []Frame
	var settledAt time.Time
	for now := start; now.Sub(start) <= MaxRecording; now = now.Add(interval) {
		e.Advance(now)
		f := e.Frame(now)
		frames = append(frames, f)
		if f.Phase != Settled {
			continue
		}
		if settledAt.IsZero() {
			settledAt = now
		}
		if now.Sub(settledAt) >= RevealDuration {
			break
		}
	}
	if len(frames) > 0 && frames[len(frames)-1].Phase != Settled {
		e.log.Warn("recording ended before the headline settled", "frames", len(frames), "phase", e.Phase())
	}
	return frames
}
