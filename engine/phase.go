package engine

// Phase 是动画状态机的当前阶段，同一时刻只有一个阶段有效。
type Phase int

const (
	Idle Phase = iota
	Measuring
	Running
	Settled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Measuring:
		return "measuring"
	case Running:
		return "running"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name so debug JSON stays readable.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
