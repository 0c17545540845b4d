package game

import "math"

// Fields presence 字段；传输层无 schema，值可能缺失或类型不对
type Fields map[string]any

const (
	FieldName      = "name"
	FieldX         = "x"
	FieldY         = "y"
	FieldDirection = "direction"
	FieldSize      = "size"
)

// RemotePresence 其他参与者最近一次送达的 presence
type RemotePresence struct {
	ID     string
	Fields Fields
}

// PresenceChannel 外部 presence 服务：发布尽力而为，远端视图每帧重新读取
type PresenceChannel interface {
	// PublishLocalPresence 异步发布，不等待确认，不重试
	PublishLocalPresence(f Fields)
	// CurrentRemoteParticipants 所有非本地参与者的最新字段快照
	CurrentRemoteParticipants() []RemotePresence
}

// RemoteAvatar 将远端字段防御性地解码为可渲染状态
// 缺失或类型错误的字段使用默认值：位置 (50,50)、朝向 front、名字 "Player"、尺寸取本地尺寸
func RemoteAvatar(f Fields, localSize float64) AvatarState {
	a := AvatarState{
		Name:      DefaultName,
		Position:  DefaultSpawn,
		Size:      localSize,
		Direction: DirFront,
	}
	if s, ok := f[FieldName].(string); ok && s != "" {
		a.Name = s
	}
	if x, ok := number(f[FieldX]); ok {
		a.Position.X = x
	}
	if y, ok := number(f[FieldY]); ok {
		a.Position.Y = y
	}
	if s, ok := f[FieldDirection].(string); ok {
		a.Direction, _ = ParseDirection(s)
	}
	if sz, ok := number(f[FieldSize]); ok && sz > 0 {
		a.Size = sz
	}
	return a
}

// number 接受 JSON 解码后的 float64 以及进程内直接放入的整数类型；NaN 与无穷视为无效
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, finite(n)
	case float32:
		return float64(n), finite(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Publisher 仅当 (x, y, direction) 变化时才推送，避免静止时每帧刷屏
type Publisher struct {
	ch   PresenceChannel
	last presenceKey
}

// NewPublisher 以加入时已发布的初始状态作为基线
func NewPublisher(ch PresenceChannel, joined AvatarState) *Publisher {
	return &Publisher{ch: ch, last: joined.key()}
}

// Publish 返回本次是否真正发出
func (p *Publisher) Publish(a AvatarState) bool {
	k := a.key()
	if k == p.last {
		return false
	}
	p.last = k
	p.ch.PublishLocalPresence(a.Fields())
	return true
}
