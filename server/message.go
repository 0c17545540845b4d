package server

// 消息类型（WebSocket 文本 JSON）
const (
	MsgPresence = "presence" // 客户端 → 中继：本地 presence
	MsgWelcome  = "welcome"  // 中继 → 客户端：加入成功、初始 presence 与房间快照
	MsgDelta    = "delta"    // 中继 → 客户端：本 Tick 内变化的 presence 与离开者
)

// Fields presence 字段，传输层不约束 schema，原样转发
type Fields map[string]any

// InboundMessage 入站消息
// 示例：{"type":"presence","seq":3,"fields":{"name":"alice","x":55,"y":50,"direction":"right"}}
type InboundMessage struct {
	Type   string `json:"type"`
	Seq    int64  `json:"seq"`
	Fields Fields `json:"fields"`
}

// PlayerPresence 某个参与者最近一次的 presence
type PlayerPresence struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// WelcomeMessage 加入房间后第一条下行消息
type WelcomeMessage struct {
	Type    string           `json:"type"`
	Room    string           `json:"room"`
	ID      string           `json:"id"`
	Self    Fields           `json:"self"`
	Players []PlayerPresence `json:"players"`
}

// DeltaMessage 每 Tick 的增量广播；不会包含接收者自己
// Full 为 true 时 Players 是除接收者外的全部参与者，接收者应整体替换远端视图
type DeltaMessage struct {
	Type    string           `json:"type"`
	Tick    int64            `json:"tick"`
	Full    bool             `json:"full,omitempty"`
	Players []PlayerPresence `json:"players,omitempty"`
	Left    []string         `json:"left,omitempty"`
}

// Input 入站 presence 更新，由房间在 Tick 中按序号去重后生效
type Input struct {
	PlayerID PlayerID
	Seq      int64 // 客户端本地序列号，用于去重与乱序丢弃
	Fields   Fields
}
