package server

import "time"

const (
	// TicksPerSecond 默认广播频率（20 TPS）
	TicksPerSecond = 20
)

// StartTicker 启动房间的 Tick 循环（单线程推进房间状态）
func (r *Room) StartTicker() {
	if r.tickerStarted {
		return
	}
	r.tickerStarted = true
	go func() {
		ticker := time.NewTicker(r.tickInterval)
		defer func() {
			ticker.Stop()
			r.closeAll()
			close(r.done)
		}()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
			}
			// 核心循环：处理加入/离开/更新 → 广播增量
			start := time.Now()
			r.RunTick()
			r.metrics.AddTick(time.Since(start).Nanoseconds())
		}
	}()
}

// RunTick 推进一个 Tick；只能在 Tick 线程（或测试中无 ticker 的房间）上调用
func (r *Room) RunTick() {
	r.BeginTick()
	r.ProcessInputs()
	r.BroadcastDelta()
}

// Done 房间 Tick 循环退出后关闭
func (r *Room) Done() <-chan struct{} {
	return r.done
}
