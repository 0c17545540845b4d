package presence

import (
	"context"
	"encoding/json"
	"net"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pingcap/errors"

	"spriteroom/applog"
	"spriteroom/game"
	"spriteroom/server"
)

// ErrJoinTimeout 在期限内没有收到 welcome
var ErrJoinTimeout = errors.New("timed out waiting for welcome")

const (
	writeWait          = 5 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	defaultJoinTimeout = 10 * time.Second
	sendBacklog        = 64
)

// Options 加入房间参数
type Options struct {
	URL         string // 例如 ws://localhost:8080/ws
	Room        string
	Name        string
	ID          string // 为空时本地生成 uuid
	JoinTimeout time.Duration
}

// Welcome 加入成功后中继返回的初始 presence
type Welcome struct {
	ID   string
	Room string
	Self game.AvatarState
}

// Client 基于 WebSocket 的 presence 通道
// 发布为非阻塞入队；远端视图由读协程维护，渲染时读取副本
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	seq  atomic.Int64

	mu      sync.RWMutex
	remotes map[string]game.Fields

	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
	dropped   atomic.Int64
}

// Join 连接中继并等待 welcome；ctx 约束拨号与等待时间
func Join(ctx context.Context, opts Options) (*Client, Welcome, error) {
	if opts.ID == "" {
		opts.ID = uuid.New().String()
	}
	if opts.Room == "" {
		opts.Room = "room-1"
	}
	if opts.JoinTimeout <= 0 {
		opts.JoinTimeout = defaultJoinTimeout
	}
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, Welcome{}, errors.Annotatef(err, "parse relay url %q", opts.URL)
	}
	q := u.Query()
	q.Set("room", opts.Room)
	q.Set("player", opts.ID)
	q.Set("name", opts.Name)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, Welcome{}, errors.Annotatef(err, "dial %s", opts.URL)
	}

	deadline := time.Now().Add(opts.JoinTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	c := &Client{
		id:      opts.ID,
		conn:    conn,
		send:    make(chan []byte, sendBacklog),
		remotes: make(map[string]game.Fields),
		closed:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	w, err := c.awaitWelcome()
	if err != nil {
		_ = conn.Close()
		return nil, Welcome{}, err
	}
	w.Room = opts.Room

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
	go c.readPump()
	go c.writePump()
	applog.Log.Infof("joined room=%s id=%s as %q with %d remote(s)", opts.Room, c.id, w.Self.Name, len(c.remotes))
	return c, w, nil
}

func (c *Client) awaitWelcome() (Welcome, error) {
	for {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return Welcome{}, ErrJoinTimeout
			}
			return Welcome{}, errors.Annotate(err, "await welcome")
		}
		var msg server.WelcomeMessage
		if err := json.Unmarshal(b, &msg); err != nil || msg.Type != server.MsgWelcome {
			continue
		}
		if msg.ID != "" {
			c.id = msg.ID
		}
		for _, p := range msg.Players {
			c.remotes[p.ID] = game.Fields(p.Fields)
		}
		seed := game.RemoteAvatar(game.Fields(msg.Self), game.DefaultSize)
		return Welcome{ID: c.id, Self: game.NewAvatar(seed.Name, seed.Position, seed.Direction)}, nil
	}
}

// ID 中继确认后的参与者 ID
func (c *Client) ID() string { return c.id }

// PublishLocalPresence 即发即弃：队列满或已关闭时丢弃
func (c *Client) PublishLocalPresence(f game.Fields) {
	select {
	case <-c.closed:
		c.dropped.Add(1)
		return
	default:
	}
	b, err := json.Marshal(server.InboundMessage{Type: server.MsgPresence, Seq: c.seq.Add(1), Fields: server.Fields(f)})
	if err != nil {
		applog.Log.Warnf("marshal presence: %v", err)
		return
	}
	select {
	case c.send <- b:
	default:
		c.dropped.Add(1)
	}
}

// Dropped 未能入队的发布次数
func (c *Client) Dropped() int64 { return c.dropped.Load() }

// CurrentRemoteParticipants 按 ID 排序的最新远端 presence 副本
func (c *Client) CurrentRemoteParticipants() []game.RemotePresence {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]game.RemotePresence, 0, len(c.remotes))
	for id, f := range c.remotes {
		out = append(out, game.RemotePresence{ID: id, Fields: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close 幂等；停止读写协程
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		// WriteControl 可与写协程并发调用
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		err = c.conn.Close()
	})
	return err
}

// Done 读协程退出（连接断开或关闭）后关闭
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) readPump() {
	defer close(c.done)
	for {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
			default:
				applog.Log.Warnf("presence connection lost: %v", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		var msg server.DeltaMessage
		if err := json.Unmarshal(b, &msg); err != nil || msg.Type != server.MsgDelta {
			continue
		}
		c.applyDelta(msg)
	}
}

// applyDelta 最新值覆盖；离开者删除；全量快照整体替换
func (c *Client) applyDelta(msg server.DeltaMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.Full {
		clear(c.remotes)
	}
	for _, p := range msg.Players {
		if p.ID == c.id {
			continue
		}
		c.remotes[p.ID] = game.Fields(p.Fields)
	}
	for _, id := range msg.Left {
		delete(c.remotes, id)
	}
}

// writePump gorilla 连接只允许一个并发写者，所有写都在这里
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.closed:
			return
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				// 发布失败不回传给核心，只记录
				applog.Log.Warnf("publish failed: %v", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
