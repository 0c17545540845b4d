package game

import (
	"github.com/pingcap/errors"

	"spriteroom/applog"
)

// SurfaceSource 每帧取得当前绘制目标；返回错误表示宿主无法提供 2D 上下文
type SurfaceSource func() (Surface, error)

// SessionConfig 加入房间后构造本地会话所需的参数
type SessionConfig struct {
	Name      string
	Spawn     Position
	Direction Direction
	Speed     float64
	Width     float64
	Height    float64
}

// Session 持有本地角色状态的唯一所有者；运动解析、发布、渲染都通过它拿到同一份状态
type Session struct {
	local  AvatarState
	bounds Bounds

	input    *InputTracker
	ch       PresenceChannel
	pub      *Publisher
	renderer *Renderer
	loop     *Loop
	surface  SurfaceSource

	attached    bool
	renderErr   error
	framesDrawn uint64
}

// NewSession 组装核心组件；尚未开始 tick，需调用 Attach
func NewSession(cfg SessionConfig, ch PresenceChannel, atlas *Atlas, r Refresher, surface SurfaceSource) *Session {
	local := NewAvatar(cfg.Name, cfg.Spawn, cfg.Direction)
	if cfg.Speed > 0 {
		local.Speed = cfg.Speed
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	s := &Session{
		local:    local,
		bounds:   Bounds{Width: cfg.Width, Height: cfg.Height},
		input:    NewInputTracker(),
		ch:       ch,
		pub:      NewPublisher(ch, local),
		renderer: NewRenderer(atlas),
		surface:  surface,
	}
	s.loop = NewLoop(r, s.step, s.renderFrame)
	return s
}

// Attach 组件挂载：Stopped → Running
func (s *Session) Attach() {
	if s.attached {
		return
	}
	s.attached = true
	s.loop.Start()
	applog.Log.Infof("session attached: name=%s pos=(%.0f,%.0f) bounds=%.0fx%.0f",
		s.local.Name, s.local.Position.X, s.local.Position.Y, s.bounds.Width, s.bounds.Height)
}

// Detach 组件卸载：同步停止调度、清空按键；之后的输入与 resize 都被忽略
func (s *Session) Detach() {
	if !s.attached {
		return
	}
	s.attached = false
	s.loop.Stop()
	s.input.Reset()
	applog.Log.Infof("session detached: name=%s ticks=%d frames=%d", s.local.Name, s.loop.Ticks(), s.framesDrawn)
}

func (s *Session) KeyDown(k Key) {
	if s.attached {
		s.input.KeyDown(k)
	}
}

func (s *Session) KeyUp(k Key) {
	if s.attached {
		s.input.KeyUp(k)
	}
}

// Blur 窗口失去键盘焦点：松开所有键
func (s *Session) Blur() {
	s.input.Reset()
}

// Resize 同步调整绘制区域，不改动角色状态
func (s *Session) Resize(w, h float64) {
	if !s.attached || w <= 0 || h <= 0 {
		return
	}
	s.bounds = Bounds{Width: w, Height: h}
}

func (s *Session) Local() AvatarState { return s.local }
func (s *Session) Bounds() Bounds { return s.bounds }
func (s *Session) State() LoopState { return s.loop.State() }
func (s *Session) Held() InputSet { return s.input.Held() }
func (s *Session) Ticks() uint64 { return s.loop.Ticks() }
func (s *Session) FramesDrawn() uint64 { return s.framesDrawn }

// RenderErr 渲染路径被禁用的原因，正常时为 nil
func (s *Session) RenderErr() error { return s.renderErr }

// step 同一 tick 内：先运动解析，后发布
func (s *Session) step() {
	s.local = Resolve(s.local, s.input.Held(), s.bounds)
	s.pub.Publish(s.local)
}

func (s *Session) renderFrame() {
	if s.renderErr != nil {
		return
	}
	surf, err := s.surface()
	if err == nil && surf == nil {
		err = ErrSurfaceUnavailable
	}
	if err != nil {
		// 致命于本会话的渲染路径，但 tick 与发布继续
		s.renderErr = errors.Annotate(err, "render disabled")
		applog.Log.Errorf("%v", s.renderErr)
		return
	}
	if s.renderer.Render(surf, s.local, s.ch.CurrentRemoteParticipants()) {
		s.framesDrawn++
	}
}
