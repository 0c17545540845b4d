package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount         int64 // 统计的 Tick 次数
	PresenceAccepted  int64 // 被接受的 presence 更新数
	RateLimited       int64 // 因同帧限流被推迟的更新数
	OldSeqIgnored     int64 // 因旧序列（乱序/重复）被忽略的更新数
	DropsSimulated    int64 // 因模拟丢包被丢弃的更新数
	ChanFullDiscarded int64 // 因通道满被丢弃的更新数
	Flooded           int64 // 因单连接消息过快被丢弃的消息数
	Malformed         int64 // 无法解析的入站消息数
	Joins             int64
	Leaves            int64
	DeltasSent        int64 // 发出的增量消息数
	SendDropped       int64 // 因下行队列满被丢弃的消息数
	Resyncs           int64 // 丢消息后补发的全量快照数
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
}

func (m *RoomMetrics) IncAccepted() { atomic.AddInt64(&m.PresenceAccepted, 1) }
func (m *RoomMetrics) IncRateLimited() { atomic.AddInt64(&m.RateLimited, 1) }
func (m *RoomMetrics) IncOldSeqIgnored() { atomic.AddInt64(&m.OldSeqIgnored, 1) }
func (m *RoomMetrics) IncDropsSimulated() { atomic.AddInt64(&m.DropsSimulated, 1) }
func (m *RoomMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *RoomMetrics) IncFlooded() { atomic.AddInt64(&m.Flooded, 1) }
func (m *RoomMetrics) IncMalformed() { atomic.AddInt64(&m.Malformed, 1) }
func (m *RoomMetrics) IncJoins() { atomic.AddInt64(&m.Joins, 1) }
func (m *RoomMetrics) IncLeaves() { atomic.AddInt64(&m.Leaves, 1) }
func (m *RoomMetrics) IncDeltasSent() { atomic.AddInt64(&m.DeltasSent, 1) }
func (m *RoomMetrics) IncSendDropped() { atomic.AddInt64(&m.SendDropped, 1) }
func (m *RoomMetrics) IncResyncs() { atomic.AddInt64(&m.Resyncs, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"presence_accepted":   atomic.LoadInt64(&m.PresenceAccepted),
		"rate_limited":        atomic.LoadInt64(&m.RateLimited),
		"old_seq_ignored":     atomic.LoadInt64(&m.OldSeqIgnored),
		"drops_simulated":     atomic.LoadInt64(&m.DropsSimulated),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"flooded":             atomic.LoadInt64(&m.Flooded),
		"malformed":           atomic.LoadInt64(&m.Malformed),
		"joins":               atomic.LoadInt64(&m.Joins),
		"leaves":              atomic.LoadInt64(&m.Leaves),
		"deltas_sent":         atomic.LoadInt64(&m.DeltasSent),
		"send_dropped":        atomic.LoadInt64(&m.SendDropped),
		"resyncs":             atomic.LoadInt64(&m.Resyncs),
		"avg_tick_ms":         avgMs,
	}
}
