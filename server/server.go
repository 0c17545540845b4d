package server

import (
	"net/http"
)

// NewMux 组装中继的 HTTP 路由；extra 用于挂载静态资源等
func (m *RoomManager) NewMux(extra func(mux *http.ServeMux)) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.HandleWS)
	// 管理与监控接口
	mux.HandleFunc("/admin/config", m.HandleAdminConfig)
	mux.HandleFunc("/metrics", m.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if extra != nil {
		extra(mux)
	}
	return mux
}
