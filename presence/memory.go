package presence

import (
	"sort"
	"sync"

	"spriteroom/game"
)

// Memory 进程内 presence 通道：离线/单人模式与测试使用
type Memory struct {
	mu        sync.RWMutex
	remotes   map[string]game.Fields
	last      game.Fields
	published int
}

func NewMemory() *Memory {
	return &Memory{remotes: make(map[string]game.Fields)}
}

func (m *Memory) PublishLocalPresence(f game.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = f
	m.published++
}

func (m *Memory) CurrentRemoteParticipants() []game.RemotePresence {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]game.RemotePresence, 0, len(m.remotes))
	for id, f := range m.remotes {
		out = append(out, game.RemotePresence{ID: id, Fields: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Set 模拟远端参与者的最新 presence
func (m *Memory) Set(id string, f game.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remotes[id] = f
}

// Remove 模拟远端参与者离开
func (m *Memory) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.remotes, id)
}

// Last 最近一次发布的字段与累计发布次数
func (m *Memory) Last() (game.Fields, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.published
}
