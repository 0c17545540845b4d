package server

import (
	"encoding/json"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"spriteroom/applog"
)

// RoomConfig 可热更新的房间规则
type RoomConfig struct {
	MaxInputsPerTick   int     `json:"maxInputsPerTick"`
	SimulateDelayMinMs int     `json:"simulateDelayMinMs"`
	SimulateDelayMaxMs int     `json:"simulateDelayMaxMs"`
	SimulateDropProb   float64 `json:"simulateDropProb"`
}

// DefaultRoomConfig 默认规则：不模拟网络问题
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{MaxInputsPerTick: 8}
}

type joinRequest struct {
	id   PlayerID
	name string
	conn *ClientConn
}

type leaveRequest struct {
	id   PlayerID
	conn *ClientConn
}

// Room 房间：presence 最新值维护在内存，单线程 Tick 推进
type Room struct {
	ID string

	Players   map[PlayerID]*Player
	joinChan  chan joinRequest
	inputChan chan Input
	leaveChan chan leaveRequest
	left      []PlayerID // 本 Tick 离开的参与者，随增量广播

	cfgMu sync.RWMutex
	cfg   RoomConfig

	tickInterval  time.Duration
	tickSeq       atomic.Int64
	metrics       *RoomMetrics
	createdAt     time.Time
	tickerStarted bool
	stopOnce      sync.Once
	stop          chan struct{}
	done          chan struct{}
}

// NewRoom 创建房间，初始化数据结构
func NewRoom(id string, tps int, cfg RoomConfig) *Room {
	if tps <= 0 {
		tps = TicksPerSecond
	}
	return &Room{
		ID:           id,
		Players:      make(map[PlayerID]*Player),
		joinChan:     make(chan joinRequest, 64),
		inputChan:    make(chan Input, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		leaveChan:    make(chan leaveRequest, 64),
		cfg:          cfg,
		tickInterval: time.Second / time.Duration(tps),
		metrics:      &RoomMetrics{},
		createdAt:    time.Now(),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Config 当前规则的副本
func (r *Room) Config() RoomConfig {
	r.cfgMu.RLock()
	defer r.cfgMu.RUnlock()
	return r.cfg
}

// UpdateConfig 在锁内修改规则
func (r *Room) UpdateConfig(fn func(*RoomConfig)) RoomConfig {
	r.cfgMu.Lock()
	defer r.cfgMu.Unlock()
	fn(&r.cfg)
	return r.cfg
}

func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// Tick 当前 Tick 序号
func (r *Room) Tick() int64 { return r.tickSeq.Load() }

// RequestJoin 请求在 Tick 线程中加入参与者，欢迎消息随后由 Tick 线程发出
// 房间已停止时返回 false
func (r *Room) RequestJoin(id PlayerID, name string, conn *ClientConn) bool {
	// 停止后 joinChan 仍可写入，先单独检查 done
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.joinChan <- joinRequest{id: id, name: name, conn: conn}:
		return true
	case <-r.done:
		return false
	}
}

// RequestLeave 请求在 Tick 线程中移除参与者，避免并发改动房间状态
// conn 用于区分同 ID 重连后旧连接的迟到离开
func (r *Room) RequestLeave(pid PlayerID, conn *ClientConn) {
	// 为保证移除一定生效，这里采用阻塞式写入；房间已停止时直接返回
	select {
	case r.leaveChan <- leaveRequest{id: pid, conn: conn}:
	case <-r.done:
	}
}

// OnInput 入站更新（不立即生效），仅记录，等下一次 Tick 处理
func (r *Room) OnInput(in Input) {
	cfg := r.Config()
	if cfg.SimulateDropProb > 0 && rand.Float64() < cfg.SimulateDropProb {
		r.metrics.IncDropsSimulated()
		return
	}
	if cfg.SimulateDelayMaxMs > 0 {
		lo, hi := cfg.SimulateDelayMinMs, cfg.SimulateDelayMaxMs
		if lo > hi {
			lo = hi
		}
		d := time.Duration(lo+rand.Intn(hi-lo+1)) * time.Millisecond
		time.AfterFunc(d, func() { r.enqueue(in) })
		return
	}
	r.enqueue(in)
}

func (r *Room) enqueue(in Input) {
	// 不阻塞：拥塞时丢弃，保证 Tick 准时
	select {
	case r.inputChan <- in:
	default:
		r.metrics.IncChanFullDiscarded()
	}
}

// BeginTick 同一 Tick 时间线：重置帧内计数，先应用上一帧被限流保留的更新
func (r *Room) BeginTick() {
	r.tickSeq.Add(1)
	for _, p := range r.Players {
		p.inputsThisTick = 0
		if p.deferred != nil {
			in := *p.deferred
			p.deferred = nil
			r.applyInput(p, in)
		}
	}
}

// ProcessInputs 处理当前帧的所有加入/离开/更新（非阻塞 drain）
func (r *Room) ProcessInputs() {
	for {
		select {
		case req := <-r.joinChan:
			r.joinPlayer(req)
		case req := <-r.leaveChan:
			r.leavePlayer(req)
		case in := <-r.inputChan:
			if p, ok := r.Players[in.PlayerID]; ok {
				r.applyInput(p, in)
			}
		default:
			return
		}
	}
}

// applyInput 按序号去重；超出同帧上限则保留最新值到下一帧
func (r *Room) applyInput(p *Player, in Input) {
	if in.Seq <= p.LastSeq {
		r.metrics.IncOldSeqIgnored()
		return
	}
	if limit := r.Config().MaxInputsPerTick; limit > 0 && p.inputsThisTick >= limit {
		r.metrics.IncRateLimited()
		if p.deferred == nil || p.deferred.Seq < in.Seq {
			p.deferred = &in
		}
		return
	}
	p.inputsThisTick++
	p.LastSeq = in.Seq
	p.Fields = in.Fields
	p.dirty = true
	r.metrics.IncAccepted()
}

func (r *Room) joinPlayer(req joinRequest) {
	if old, ok := r.Players[req.id]; ok {
		// 同 ID 重连：关闭旧连接，沿用 presence
		applog.Log.Infof("player rejoined: room=%s player=%s", r.ID, req.id)
		if old.Conn != nil {
			old.Conn.Close()
		}
		old.Conn = req.conn
		// 新会话的序号从 1 重新开始
		old.LastSeq = 0
		old.deferred = nil
		old.resync = false
		r.sendWelcome(old)
		return
	}
	p := &Player{ID: req.id, Fields: spawnFields(req.name), JoinedAt: time.Now(), Conn: req.conn, dirty: true}
	r.Players[req.id] = p
	r.metrics.IncJoins()
	r.sendWelcome(p)
	applog.Log.Infof("player joined: room=%s player=%s name=%v online=%d", r.ID, p.ID, p.Fields["name"], len(r.Players))
}

func (r *Room) sendWelcome(p *Player) {
	msg := WelcomeMessage{
		Type:    MsgWelcome,
		Room:    r.ID,
		ID:      string(p.ID),
		Self:    p.Fields,
		Players: r.snapshot(p.ID),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		applog.Log.Errorf("marshal welcome: %v", err)
		return
	}
	if p.Conn != nil && !p.Conn.Enqueue(b) {
		r.metrics.IncSendDropped()
		p.resync = true
	}
}

// leavePlayer 将参与者移出房间，记录到本 Tick 的离开列表
func (r *Room) leavePlayer(req leaveRequest) {
	id := req.id
	p, ok := r.Players[id]
	if !ok || (req.conn != nil && p.Conn != req.conn) {
		return
	}
	if p.Conn != nil {
		p.Conn.Close()
	}
	delete(r.Players, id)
	r.left = append(r.left, id)
	r.metrics.IncLeaves()
	applog.Log.Infof("player left: room=%s player=%s online=%d", r.ID, id, len(r.Players))
}

// snapshot 除 except 以外所有参与者的 presence，按 ID 排序
func (r *Room) snapshot(except PlayerID) []PlayerPresence {
	out := make([]PlayerPresence, 0, len(r.Players))
	for id, p := range r.Players {
		if id == except {
			continue
		}
		out = append(out, p.presence())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BroadcastDelta 将本 Tick 变化的 presence 与离开者广播给其他参与者（文本 JSON）
// 每个接收者看不到自己的更新；没有变化时不发送
// 之前有消息被丢弃的接收者改收全量快照，保证最新值最终送达
func (r *Room) BroadcastDelta() {
	var changed []*Player
	for _, p := range r.Players {
		if p.dirty {
			changed = append(changed, p)
			p.dirty = false
		}
	}
	left := make([]string, 0, len(r.left))
	for _, id := range r.left {
		left = append(left, string(id))
	}
	r.left = r.left[:0]
	sort.Slice(changed, func(i, j int) bool { return changed[i].ID < changed[j].ID })
	sort.Strings(left)

	tick := r.tickSeq.Load()
	for _, rcpt := range r.Players {
		if rcpt.Conn == nil {
			continue
		}
		msg := DeltaMessage{Type: MsgDelta, Tick: tick}
		if rcpt.resync {
			msg.Full = true
			msg.Players = r.snapshot(rcpt.ID)
		} else {
			msg.Left = left
			for _, p := range changed {
				if p.ID != rcpt.ID {
					msg.Players = append(msg.Players, p.presence())
				}
			}
			if len(msg.Players) == 0 && len(msg.Left) == 0 {
				continue
			}
		}
		b, err := json.Marshal(msg)
		if err != nil {
			applog.Log.Errorf("marshal delta: %v", err)
			continue
		}
		if !rcpt.Conn.Enqueue(b) {
			r.metrics.IncSendDropped()
			rcpt.resync = true
			continue
		}
		if msg.Full {
			r.metrics.IncResyncs()
			rcpt.resync = false
		}
		r.metrics.IncDeltasSent()
	}
}

// Stop 停止 Tick 循环并关闭所有连接
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// closeAll 仅在 Tick 线程退出时调用
func (r *Room) closeAll() {
	for id, p := range r.Players {
		if p.Conn != nil {
			p.Conn.Close()
		}
		delete(r.Players, id)
	}
}
