package game

import (
	"context"
	"image"
	"sync/atomic"

	"spriteroom/applog"
)

// FrameSize 精灵表每帧边长
const FrameSize = 64

// 精灵表行号：back=0 front=1 left=2 right=3
var atlasRows = map[Direction]int{
	DirBack:  0,
	DirFront: 1,
	DirLeft:  2,
	DirRight: 3,
}

// RectFor 朝向 → 精灵表中的矩形区域；未知朝向回退到 front 所在行
func RectFor(d Direction) image.Rectangle {
	row, ok := atlasRows[d]
	if !ok {
		row = atlasRows[DirFront]
	}
	return image.Rect(0, row*FrameSize, FrameSize, (row+1)*FrameSize)
}

// AtlasState 图片就绪状态，渲染前显式检查，不依赖一次性回调
type AtlasState int32

const (
	AtlasLoading AtlasState = iota
	AtlasReady
	AtlasFailed
)

func (s AtlasState) String() string {
	switch s {
	case AtlasLoading:
		return "loading"
	case AtlasReady:
		return "ready"
	case AtlasFailed:
		return "failed"
	}
	return "unknown"
}

// SheetLoader 取得精灵表图片（HTTP、文件或程序生成）
type SheetLoader func(ctx context.Context) (image.Image, error)

// Atlas 会话内只加载一次的只读精灵表
type Atlas struct {
	state atomic.Int32
	img   atomic.Value // image.Image
}

// NewAtlas 返回处于 loading 状态的 atlas
func NewAtlas() *Atlas {
	return &Atlas{}
}

// ReadyAtlas 直接用已解码的图片构造（测试与离线模式）
func ReadyAtlas(img image.Image) *Atlas {
	a := &Atlas{}
	a.set(img)
	return a
}

// Load 异步加载；完成前 State 一直是 loading
func (a *Atlas) Load(ctx context.Context, load SheetLoader) {
	go func() {
		img, err := load(ctx)
		if err != nil {
			applog.Log.Errorf("sprite sheet load failed: %v", err)
			a.state.Store(int32(AtlasFailed))
			return
		}
		a.set(img)
		applog.Log.Infof("sprite sheet ready: %v", img.Bounds())
	}()
}

func (a *Atlas) set(img image.Image) {
	a.img.Store(&img)
	a.state.Store(int32(AtlasReady))
}

func (a *Atlas) State() AtlasState {
	return AtlasState(a.state.Load())
}

// Image 未就绪时返回 nil
func (a *Atlas) Image() image.Image {
	if a.State() != AtlasReady {
		return nil
	}
	p, _ := a.img.Load().(*image.Image)
	if p == nil {
		return nil
	}
	return *p
}
