package server

import "time"

// PlayerID 表示参与者唯一标识
type PlayerID string

// 新参与者的出生 presence
const (
	SpawnX         = 50
	SpawnY         = 50
	SpawnDirection = "front"
	DefaultName    = "Player"
)

// Player 房间内的参与者（presence 最新值由 Tick 线程维护）
type Player struct {
	ID       PlayerID
	Fields   Fields
	LastSeq  int64
	JoinedAt time.Time

	dirty          bool   // 本 Tick 内 presence 有变化，待广播
	inputsThisTick int    // 同帧已接受的更新数
	deferred       *Input // 超出同帧上限时保留的最新更新，下个 Tick 生效
	resync         bool   // 有下行消息被丢弃，下个 Tick 改发全量快照

	Conn *ClientConn // 网络连接的发送端（写协程）
}

// spawnFields 参与者加入时的初始 presence
func spawnFields(name string) Fields {
	if name == "" {
		name = DefaultName
	}
	return Fields{
		"name":      name,
		"x":         float64(SpawnX),
		"y":         float64(SpawnY),
		"direction": SpawnDirection,
	}
}

func (p *Player) presence() PlayerPresence {
	return PlayerPresence{ID: string(p.ID), Fields: p.Fields}
}
