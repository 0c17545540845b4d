package game

import (
	"image"
	"image/color"

	"github.com/pingcap/errors"
)

// ErrSurfaceUnavailable 宿主无法提供 2D 绘制目标
var ErrSurfaceUnavailable = errors.New("drawing surface unavailable")

// Rect 目标区域（浮点像素）
type Rect struct {
	X, Y, W, H float64
}

// Surface 2D 光栅绘制目标
type Surface interface {
	Size() (w, h int)
	Clear()
	FillRect(r Rect, c color.Color)
	// DrawImageRegion 把 img 的 src 区域缩放绘制到 dst
	DrawImageRegion(img image.Image, src image.Rectangle, dst Rect)
	// DrawTextCentered 以 (cx, y) 为水平中心、y 为基线绘制文字
	DrawTextCentered(s string, cx, y float64, c color.Color)
}

const labelOffset = 10

var (
	BackgroundColor = color.RGBA{R: 0xad, G: 0xd8, B: 0xe6, A: 0xff} // lightblue
	LabelColor      = color.RGBA{A: 0xff}
)

// Renderer 每帧重绘：清屏、背景、本地角色、所有远端角色
// 除 atlas 句柄外不跨帧保存状态
type Renderer struct {
	atlas *Atlas
}

func NewRenderer(atlas *Atlas) *Renderer {
	return &Renderer{atlas: atlas}
}

// Render 返回是否真正绘制；atlas 未就绪时整帧跳过
func (r *Renderer) Render(s Surface, local AvatarState, remotes []RemotePresence) bool {
	img := r.atlas.Image()
	if img == nil {
		return false
	}
	w, h := s.Size()
	s.Clear()
	s.FillRect(Rect{W: float64(w), H: float64(h)}, BackgroundColor)

	drawAvatar(s, img, local)
	for _, rp := range remotes {
		drawAvatar(s, img, RemoteAvatar(rp.Fields, local.Size))
	}
	return true
}

func drawAvatar(s Surface, sheet image.Image, a AvatarState) {
	src := RectFor(a.Direction).Add(sheet.Bounds().Min)
	s.DrawImageRegion(sheet, src, Rect{X: a.Position.X, Y: a.Position.Y, W: a.Size, H: a.Size})
	s.DrawTextCentered(a.Name, a.Position.X+a.Size/2, a.Position.Y-labelOffset, LabelColor)
}
