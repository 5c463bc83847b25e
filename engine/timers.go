package engine

import (
	"container/heap"
	"time"
)

type timerKind int

const (
	timerMeasure   timerKind = iota + 1 // 布局稳定后测量
	timerTraversal                      // 圆点走完轨迹
	timerHops                           // 无终止符时最后一个字落地
)

func (k timerKind) String() string {
	switch k {
	case timerMeasure:
		return "measure"
	case timerTraversal:
		return "traversal"
	case timerHops:
		return "hops"
	default:
		return "unknown"
	}
}

// timer 记录调度它的代号；代号过期的定时器触发时直接丢弃。
type timer struct {
	at   time.Time
	gen  uint64
	kind timerKind
	seq  uint64
}

// timerQueue 是按触发时间排序的小根堆，时间相同时按调度顺序。
type timerQueue []timer

func (q timerQueue) Len() int { return len(q) }
func (q timerQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}
func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *timerQueue) Push(x any)   { *q = append(*q, x.(timer)) }
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	*q = old[:n-1]
	return t
}

func (q *timerQueue) schedule(t timer) { heap.Push(q, t) }

// popDue 取出一个到期的定时器。
func (q *timerQueue) popDue(now time.Time) (timer, bool) {
	if q.Len() == 0 || (*q)[0].at.After(now) {
		return timer{}, false
	}
	return heap.Pop(q).(timer), true
}

func (q timerQueue) next() (time.Time, bool) {
	if len(q) == 0 {
		return time.Time{}, false
	}
	return q[0].at, true
}

// detach 丢弃全部挂起的定时器。
func (q *timerQueue) detach() { *q = (*q)[:0] }
