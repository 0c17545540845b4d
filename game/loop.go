package game

// FrameHandle 已登记回调的句柄，用于取消
type FrameHandle uint64

// Refresher 与显示刷新对齐的调度原语（类似 requestAnimationFrame）
type Refresher interface {
	RequestFrame(fn func()) FrameHandle
	CancelFrame(h FrameHandle)
}

type queued struct {
	h  FrameHandle
	fn func()
}

// FrameQueue 单线程 FIFO 帧队列：宿主每次刷新调用一次 Flush
// Flush 期间新登记的回调进入下一次 Flush
type FrameQueue struct {
	next     FrameHandle
	pending  []queued
	inflight []queued
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

func (q *FrameQueue) RequestFrame(fn func()) FrameHandle {
	q.next++
	q.pending = append(q.pending, queued{h: q.next, fn: fn})
	return q.next
}

func (q *FrameQueue) CancelFrame(h FrameHandle) {
	for _, list := range [][]queued{q.inflight, q.pending} {
		for i := range list {
			if list[i].h == h {
				list[i].fn = nil
				return
			}
		}
	}
}

// Flush 按登记顺序执行本轮回调，返回执行个数
func (q *FrameQueue) Flush() int {
	batch := q.pending
	q.pending = nil
	q.inflight = batch
	defer func() { q.inflight = nil }()
	n := 0
	for i := range batch {
		// 同一轮中前面的回调可能取消后面的
		fn := batch[i].fn
		if fn == nil {
			continue
		}
		fn()
		n++
	}
	return n
}

// Len 待执行回调数（含已取消的占位）
func (q *FrameQueue) Len() int {
	return len(q.pending)
}

// LoopState 调度器状态
type LoopState int

const (
	LoopStopped LoopState = iota
	LoopRunning
)

func (s LoopState) String() string {
	if s == LoopRunning {
		return "running"
	}
	return "stopped"
}

// Loop 游戏循环：每个 tick 先执行 step（运动解析 + 发布），
// 再把 render 登记到下一次刷新，最后登记下一个 tick
type Loop struct {
	r      Refresher
	step   func()
	render func()

	state LoopState
	tick  FrameHandle
	draw  FrameHandle
	ticks uint64
}

func NewLoop(r Refresher, step, render func()) *Loop {
	return &Loop{r: r, step: step, render: render}
}

// Start Stopped → Running；重复调用无效
func (l *Loop) Start() {
	if l.state == LoopRunning {
		return
	}
	l.state = LoopRunning
	l.tick = l.r.RequestFrame(l.onTick)
}

// Stop Running → Stopped，同步取消所有待执行的 tick 与渲染
func (l *Loop) Stop() {
	if l.state == LoopStopped {
		return
	}
	l.state = LoopStopped
	if l.tick != 0 {
		l.r.CancelFrame(l.tick)
		l.tick = 0
	}
	if l.draw != 0 {
		l.r.CancelFrame(l.draw)
		l.draw = 0
	}
}

func (l *Loop) State() LoopState { return l.state }

// Ticks 已执行的 tick 数
func (l *Loop) Ticks() uint64 { return l.ticks }

func (l *Loop) onTick() {
	l.tick = 0
	if l.state != LoopRunning {
		return
	}
	l.ticks++
	l.step()
	// step 中可能触发 Stop（例如宿主卸载）
	if l.state != LoopRunning {
		return
	}
	l.draw = l.r.RequestFrame(l.onDraw)
	l.tick = l.r.RequestFrame(l.onTick)
}

func (l *Loop) onDraw() {
	l.draw = 0
	if l.state != LoopRunning {
		return
	}
	l.render()
}
