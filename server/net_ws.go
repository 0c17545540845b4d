package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"spriteroom/applog"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 单连接入站消息上限：客户端每帧最多发一次，60fps 时留出余量
	floodRate  = 120
	floodBurst = 60
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃并返回 false）
// 只在房间 Tick 线程调用，与 Close 不存在并发
func (c *ClientConn) Enqueue(b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		// 为了实时性，丢弃（防止阻塞 Tick）；调用方负责之后补发全量快照
		return false
	}
}

// Close 关闭底层连接与发送队列
func (c *ClientConn) Close() {
	if c.send != nil {
		// 关闭发送通道以结束写协程
		close(c.send)
		c.send = nil
	}
	if c.ws != nil {
		_ = c.ws.Close()
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期发送 ping
func (c *ClientConn) writePump(send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端 presence，转换为 Input 注入房间
func (c *ClientConn) readPump(room *Room, playerID PlayerID) {
	defer c.ws.Close()
	// 读泵退出时，通知房间在 Tick 线程中移除该参与者
	defer room.RequestLeave(playerID, c)
	c.ws.SetReadLimit(1 << 16) // 64KB，presence 很小
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	limiter := rate.NewLimiter(rate.Limit(floodRate), floodBurst)
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				applog.Log.Debugf("read error: room=%s player=%s err=%v", room.ID, playerID, err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		if !limiter.Allow() {
			room.metrics.IncFlooded()
			continue
		}
		var im InboundMessage
		if err := json.Unmarshal(payload, &im); err != nil {
			room.metrics.IncMalformed()
			continue
		}
		if strings.ToLower(im.Type) != MsgPresence || im.Fields == nil {
			room.metrics.IncMalformed()
			continue
		}
		room.OnInput(Input{PlayerID: playerID, Seq: im.Seq, Fields: im.Fields})
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?room=room-1&player=<id>&name=alice
// player 缺省时由中继分配 uuid
func (m *RoomManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roomID := q.Get("room")
	if roomID == "" {
		roomID = "room-1"
	}
	playerID := q.Get("player")
	if playerID == "" {
		playerID = uuid.New().String()
	}
	name := strings.TrimSpace(q.Get("name"))

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Log.Warnf("upgrade error: %v", err)
		return
	}

	room := m.GetOrCreateRoom(roomID)
	client := NewClientConn(ws)
	go client.writePump(client.send)
	if !room.RequestJoin(PlayerID(playerID), name, client) {
		// 房间已停止，连接从未交给 Tick 线程
		client.Close()
		return
	}
	go client.readPump(room, PlayerID(playerID))
}
