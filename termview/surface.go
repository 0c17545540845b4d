package termview

import (
	"image"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"spriteroom/game"
)

// 每个字符格代表的像素尺寸；字符格约为 1:2
const (
	CellWidth  = 8
	CellHeight = 16
)

type cell struct {
	ch rune
	fg color.RGBA
	bg color.RGBA
}

// cellSurface 以字符格为像素块的降采样光栅；每格取中心点颜色
type cellSurface struct {
	cols, rows int
	cells      []cell
}

func newCellSurface(cols, rows int) *cellSurface {
	s := &cellSurface{}
	s.resize(cols, rows)
	return s
}

func (s *cellSurface) resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	s.cols, s.rows = cols, rows
	s.cells = make([]cell, cols*rows)
	s.Clear()
}

func (s *cellSurface) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return nil
	}
	return &s.cells[row*s.cols+col]
}

func (s *cellSurface) Size() (w, h int) {
	return s.cols * CellWidth, s.rows * CellHeight
}

func (s *cellSurface) Clear() {
	for i := range s.cells {
		s.cells[i] = cell{ch: ' ', fg: color.RGBA{A: 0xff}, bg: color.RGBA{A: 0xff}}
	}
}

// span 像素区间 [lo, lo+size) 覆盖的格子：中心点落在区间内即算覆盖
func span(lo, size float64, unit int) (first, last int) {
	first = int(math.Ceil(lo/float64(unit) - 0.5))
	last = int(math.Ceil((lo+size)/float64(unit)-0.5)) - 1
	return first, last
}

func (s *cellSurface) FillRect(r game.Rect, c color.Color) {
	rgba := toRGBA(c)
	c0, c1 := span(r.X, r.W, CellWidth)
	r0, r1 := span(r.Y, r.H, CellHeight)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if p := s.at(col, row); p != nil {
				p.bg = rgba
				p.ch = ' '
			}
		}
	}
}

func (s *cellSurface) DrawImageRegion(img image.Image, src image.Rectangle, dst game.Rect) {
	if src.Empty() || dst.W <= 0 || dst.H <= 0 {
		return
	}
	c0, c1 := span(dst.X, dst.W, CellWidth)
	r0, r1 := span(dst.Y, dst.H, CellHeight)
	for row := r0; row <= r1; row++ {
		cy := (float64(row)+0.5)*CellHeight - dst.Y
		sy := src.Min.Y + int(cy*float64(src.Dy())/dst.H)
		for col := c0; col <= c1; col++ {
			p := s.at(col, row)
			if p == nil {
				continue
			}
			cx := (float64(col)+0.5)*CellWidth - dst.X
			sx := src.Min.X + int(cx*float64(src.Dx())/dst.W)
			if !(image.Point{X: sx, Y: sy}).In(src) {
				continue
			}
			// 透明像素保留底色
			px := toRGBA(img.At(sx, sy))
			if px.A < 0x80 {
				continue
			}
			px.A = 0xff
			p.bg = px
			p.ch = ' '
		}
	}
}

// DrawTextCentered 文字放在基线上方那一行
func (s *cellSurface) DrawTextCentered(str string, cx, y float64, c color.Color) {
	runes := []rune(str)
	row := int(math.Floor((y - 1) / CellHeight))
	start := int(math.Round(cx/CellWidth)) - len(runes)/2
	fg := toRGBA(c)
	for i, r := range runes {
		if p := s.at(start+i, row); p != nil {
			p.ch = r
			p.fg = fg
		}
	}
}

// blit 写入 tcell 后备缓冲，调用方负责 Show
func (s *cellSurface) blit(screen tcell.Screen) {
	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			p := s.cells[row*s.cols+col]
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(p.fg.R), int32(p.fg.G), int32(p.fg.B))).
				Background(tcell.NewRGBColor(int32(p.bg.R), int32(p.bg.G), int32(p.bg.B)))
			screen.SetContent(col, row, p.ch, nil, style)
		}
	}
}

func toRGBA(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return color.RGBA{}
	}
	// 反预乘
	return color.RGBA{
		R: uint8(r * 0xffff / a >> 8),
		G: uint8(g * 0xffff / a >> 8),
		B: uint8(b * 0xffff / a >> 8),
		A: uint8(a >> 8),
	}
}
