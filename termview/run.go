package termview

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pingcap/errors"

	"spriteroom/applog"
	"spriteroom/game"
)

// 约 60Hz 的刷新节拍
const refreshInterval = 16 * time.Millisecond

// Config 终端宿主参数
type Config struct {
	// Remotes 用于加入/离开提示音，为 nil 时不提示
	Remotes func() []game.RemotePresence
	Chime   bool
}

// SessionFactory 以宿主提供的刷新调度、绘制目标与初始视口创建会话
type SessionFactory func(r game.Refresher, surface game.SurfaceSource, bounds game.Bounds) *game.Session

// Run 占用终端直到 Esc/Ctrl-C/q 或 ctx 取消
func Run(ctx context.Context, cfg Config, newSession SessionFactory) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Annotate(err, "open terminal")
	}
	if err := screen.Init(); err != nil {
		return errors.Annotate(err, "init terminal")
	}
	defer screen.Fini()
	screen.EnableFocus()
	screen.HideCursor()

	var ch *chime
	if cfg.Chime && cfg.Remotes != nil {
		if ch, err = newChime(); err != nil {
			// 没有声音也能运行
			applog.Log.Warnf("audio unavailable: %v", err)
		}
		defer ch.close()
	}

	cols, rows := screen.Size()
	surf := newCellSurface(cols, rows)
	source := func() (game.Surface, error) { return surf, nil }
	q := game.NewFrameQueue()
	s := newSession(q, source, game.Bounds{Width: float64(cols * CellWidth), Height: float64(rows * CellHeight)})
	s.Attach()
	// Detach 先于 Fini：之后不再有渲染写入终端
	defer s.Detach()

	t := &terminal{screen: screen, surf: surf, session: s, keys: newKeyHold()}
	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	var seen roster
	applog.Log.Infof("terminal viewer started: %dx%d cells", cols, rows)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !t.handle(ev, time.Now()) {
				return nil
			}
		case now := <-ticker.C:
			for _, k := range t.keys.expire(now) {
				s.KeyUp(k)
			}
			if q.Flush() > 0 {
				surf.blit(screen)
				screen.Show()
			}
			if ch != nil {
				seen = t.announce(seen, cfg.Remotes(), ch)
			}
		}
	}
}

type terminal struct {
	screen  tcell.Screen
	surf    *cellSurface
	session *game.Session
	keys    *keyHold
}

// handle 返回 false 表示退出
func (t *terminal) handle(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if k, ok := arrowKeys[ev.Key()]; ok {
			if t.keys.press(k, now) {
				t.session.KeyDown(k)
			}
			return true
		}
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		}
	case *tcell.EventResize:
		t.screen.Sync()
		cols, rows := t.screen.Size()
		t.surf.resize(cols, rows)
		t.session.Resize(float64(cols*CellWidth), float64(rows*CellHeight))
	case *tcell.EventFocus:
		if !ev.Focused {
			t.keys.reset()
			t.session.Blur()
		}
	}
	return true
}

func (t *terminal) announce(seen roster, remotes []game.RemotePresence, ch *chime) roster {
	ids := make([]string, 0, len(remotes))
	for _, r := range remotes {
		ids = append(ids, r.ID)
	}
	next, joined, left := seen.diff(ids)
	// 首轮只记录已在房间内的参与者
	if seen == nil {
		return next
	}
	switch {
	case joined > 0:
		ch.joined()
	case left > 0:
		ch.left()
	}
	return next
}
