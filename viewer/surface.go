package viewer

import (
	"bytes"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/pingcap/errors"
	"golang.org/x/image/font/gofont/goregular"

	"spriteroom/game"
)

const labelFontSize = 12

// screenSurface 把 ebiten 屏幕包装成 game.Surface；Draw 期间绑定，其余时间 dst 为 nil
type screenSurface struct {
	dst  *ebiten.Image
	face text.Face

	// 精灵表只上传一次 GPU
	sheetSrc image.Image
	sheet    *ebiten.Image
}

func newScreenSurface() (*screenSurface, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, errors.Annotate(err, "parse label font")
	}
	return &screenSurface{face: &text.GoTextFace{Source: src, Size: labelFontSize}}, nil
}

func (s *screenSurface) bind(dst *ebiten.Image) { s.dst = dst }

func (s *screenSurface) unbind() { s.dst = nil }

// current 作为 game.SurfaceSource：未绑定时视为绘制目标不可用
func (s *screenSurface) current() (game.Surface, error) {
	if s.dst == nil {
		return nil, game.ErrSurfaceUnavailable
	}
	return s, nil
}

func (s *screenSurface) Size() (w, h int) {
	b := s.dst.Bounds()
	return b.Dx(), b.Dy()
}

func (s *screenSurface) Clear() {
	s.dst.Clear()
}

func (s *screenSurface) FillRect(r game.Rect, c color.Color) {
	vector.DrawFilledRect(s.dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), c, false)
}

func (s *screenSurface) DrawImageRegion(img image.Image, src image.Rectangle, dst game.Rect) {
	if src.Empty() {
		return
	}
	sheet := s.upload(img)
	sub := sheet.SubImage(src).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterNearest}
	op.GeoM.Scale(dst.W/float64(src.Dx()), dst.H/float64(src.Dy()))
	op.GeoM.Translate(dst.X, dst.Y)
	s.dst.DrawImage(sub, op)
}

func (s *screenSurface) upload(img image.Image) *ebiten.Image {
	if s.sheet == nil || s.sheetSrc != img {
		if s.sheet != nil {
			s.sheet.Deallocate()
		}
		s.sheet = ebiten.NewImageFromImage(img)
		s.sheetSrc = img
	}
	return s.sheet
}

// DrawTextCentered y 为基线，与 canvas 默认的 alphabetic 基线一致
func (s *screenSurface) DrawTextCentered(str string, cx, y float64, c color.Color) {
	op := &text.DrawOptions{LayoutOptions: text.LayoutOptions{PrimaryAlign: text.AlignCenter}}
	op.GeoM.Translate(cx, y-s.face.Metrics().HAscent)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(s.dst, str, s.face, op)
}
