package viewer

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/pingcap/errors"

	"spriteroom/applog"
	"spriteroom/game"
)

var arrowKeys = map[ebiten.Key]game.Key{
	ebiten.KeyArrowUp:    game.KeyUp,
	ebiten.KeyArrowDown:  game.KeyDown,
	ebiten.KeyArrowLeft:  game.KeyLeft,
	ebiten.KeyArrowRight: game.KeyRight,
}

// Game ebiten 宿主：Update 转发按键，Draw 驱动帧队列，Layout 同步 resize
type Game struct {
	ctx     context.Context
	session *game.Session
	queue   *game.FrameQueue
	surface *screenSurface

	focused bool
	w, h    int
}

func (g *Game) Update() error {
	select {
	case <-g.ctx.Done():
		g.session.Detach()
		return ebiten.Termination
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.session.Detach()
		return ebiten.Termination
	}

	focused := ebiten.IsFocused()
	if g.focused && !focused {
		g.session.Blur()
	}
	g.focused = focused

	for ek, k := range arrowKeys {
		if inpututil.IsKeyJustPressed(ek) {
			g.session.KeyDown(k)
		}
		if inpututil.IsKeyJustReleased(ek) {
			g.session.KeyUp(k)
		}
	}
	return nil
}

// Draw 每次显示刷新执行一轮帧队列：上一轮登记的 tick 与渲染在此运行
func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.bind(screen)
	g.queue.Flush()
	g.surface.unbind()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.session.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// Config 窗口参数
type Config struct {
	Title  string
	Width  int
	Height int
}

// Build 组装 ebiten 宿主所需的帧队列与绘制目标，newSession 用它们创建会话
func Build(ctx context.Context, newSession func(r game.Refresher, surface game.SurfaceSource) *game.Session) (*Game, error) {
	surf, err := newScreenSurface()
	if err != nil {
		return nil, err
	}
	q := game.NewFrameQueue()
	g := &Game{
		ctx:     ctx,
		queue:   q,
		surface: surf,
		focused: true,
	}
	g.session = newSession(q, surf.current)
	return g, nil
}

// Run 阻塞直到窗口关闭、按下 Esc 或 ctx 取消
func Run(g *Game, cfg Config) error {
	if cfg.Width <= 0 {
		cfg.Width = game.DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = game.DefaultHeight
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	// Update 与 Draw 同频，帧队列按显示刷新推进
	ebiten.SetTPS(ebiten.SyncWithFPS)

	applog.Log.Infof("window viewer starting: %dx%d", cfg.Width, cfg.Height)
	g.session.Attach()
	// Update 返回 Termination 时 RunGame 返回 nil
	err := ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{})
	// 窗口被直接关闭时 Update 不会再执行
	g.session.Detach()
	if err != nil {
		return errors.Annotate(err, "run window viewer")
	}
	return nil
}
