package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"spriteroom/applog"
)

func roomParam(r *http.Request) string {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = "room-1"
	}
	return roomID
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminConfig 提供房间配置的读取与更新（热更新基本规则）
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	room := m.GetOrCreateRoom(roomID)

	type cfg struct {
		MaxInputsPerTick   *int     `json:"maxInputsPerTick,omitempty"`
		SimulateDelayMinMs *int     `json:"simulateDelayMinMs,omitempty"`
		SimulateDelayMaxMs *int     `json:"simulateDelayMaxMs,omitempty"`
		SimulateDropProb   *float64 `json:"simulateDropProb,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, room.Config())
		return
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.SimulateDropProb != nil && (*body.SimulateDropProb < 0 || *body.SimulateDropProb > 1) {
			http.Error(w, "simulateDropProb must be within [0,1]", http.StatusBadRequest)
			return
		}
		cur := room.UpdateConfig(func(c *RoomConfig) {
			if body.MaxInputsPerTick != nil {
				c.MaxInputsPerTick = *body.MaxInputsPerTick
			}
			if body.SimulateDelayMinMs != nil {
				c.SimulateDelayMinMs = *body.SimulateDelayMinMs
			}
			if body.SimulateDelayMaxMs != nil {
				c.SimulateDelayMaxMs = *body.SimulateDelayMaxMs
			}
			if body.SimulateDropProb != nil {
				c.SimulateDropProb = *body.SimulateDropProb
			}
		})
		writeJSON(w, map[string]any{"ok": true, "config": cur})
		applog.Log.Infof("config updated: room=%s maxInputsPerTick=%d delay=[%d,%d] drop=%.2f",
			roomID, cur.MaxInputsPerTick, cur.SimulateDelayMinMs, cur.SimulateDelayMaxMs, cur.SimulateDropProb)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	room := m.GetOrCreateRoom(roomID)
	writeJSON(w, map[string]any{
		"room":    roomID,
		"tick":    room.Tick(),
		"uptime":  durafmt.Parse(time.Since(room.createdAt)).LimitFirstN(2).String(),
		"created": humanize.Time(room.createdAt),
		"rooms":   m.RoomIDs(),
		"metrics": room.metrics.Snapshot(),
	})
}
