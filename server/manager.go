package server

import (
	"sort"
	"sync"
)

// Options 新建房间时使用的默认参数
type Options struct {
	TicksPerSecond int
	Room           RoomConfig
}

// RoomManager 管理多个房间的生命周期
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	opts  Options
}

var (
	defaultManager *RoomManager
	once           sync.Once
)

// GetRoomManager 单例房间管理器（进程入口使用）
func GetRoomManager() *RoomManager {
	once.Do(func() {
		defaultManager = NewRoomManager(Options{TicksPerSecond: TicksPerSecond, Room: DefaultRoomConfig()})
	})
	return defaultManager
}

// NewRoomManager 独立的管理器（测试或嵌入时使用）
func NewRoomManager(opts Options) *RoomManager {
	if opts.TicksPerSecond <= 0 {
		opts.TicksPerSecond = TicksPerSecond
	}
	return &RoomManager{rooms: make(map[string]*Room), opts: opts}
}

// Configure 修改之后新建房间的默认参数
func (m *RoomManager) Configure(opts Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if opts.TicksPerSecond <= 0 {
		opts.TicksPerSecond = TicksPerSecond
	}
	m.opts = opts
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		r = NewRoom(id, m.opts.TicksPerSecond, m.opts.Room)
		m.rooms[id] = r
		r.StartTicker()
	}
	return r
}

// RoomIDs 当前所有房间 ID（排序）
func (m *RoomManager) RoomIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown 停止所有房间并等待 Tick 循环退出
func (m *RoomManager) Shutdown() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()

	for _, r := range rooms {
		r.Stop()
	}
	for _, r := range rooms {
		<-r.Done()
	}
}
