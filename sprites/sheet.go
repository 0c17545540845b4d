package sprites

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pingcap/errors"

	"spriteroom/applog"
	"spriteroom/game"
)

// ErrBadSheet 图片尺寸不足以容纳四行 64x64 帧
var ErrBadSheet = errors.New("sprite sheet must be at least 64x256")

const (
	sheetWidth  = game.FrameSize
	sheetHeight = game.FrameSize * 4
	maxBytes    = 8 << 20
	httpTimeout = 15 * time.Second
)

var (
	bodyColor    = color.RGBA{R: 0xe0, G: 0x6c, B: 0x4f, A: 0xff}
	outlineColor = color.RGBA{R: 0x3b, G: 0x1f, B: 0x18, A: 0xff}
	eyeColor     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// DefaultSheet 程序生成的默认精灵表：每行一个朝向，眼睛位置表示朝向
func DefaultSheet() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, sheetWidth, sheetHeight))
	for _, d := range []game.Direction{game.DirBack, game.DirFront, game.DirLeft, game.DirRight} {
		drawFrame(img, game.RectFor(d), d)
	}
	return img
}

func drawFrame(img *image.RGBA, frame image.Rectangle, d game.Direction) {
	body := image.Rect(frame.Min.X+12, frame.Min.Y+8, frame.Max.X-12, frame.Max.Y-4)
	draw.Draw(img, body, &image.Uniform{C: outlineColor}, image.Point{}, draw.Src)
	draw.Draw(img, body.Inset(2), &image.Uniform{C: bodyColor}, image.Point{}, draw.Src)

	// 背面不画眼睛
	var eyes []image.Point
	cx, ey := body.Min.X+body.Dx()/2, body.Min.Y+12
	switch d {
	case game.DirFront:
		eyes = []image.Point{{cx - 9, ey}, {cx + 5, ey}}
	case game.DirLeft:
		eyes = []image.Point{{body.Min.X + 4, ey}}
	case game.DirRight:
		eyes = []image.Point{{body.Max.X - 8, ey}}
	}
	for _, p := range eyes {
		draw.Draw(img, image.Rect(p.X, p.Y, p.X+4, p.Y+6), &image.Uniform{C: eyeColor}, image.Point{}, draw.Src)
	}
}

// EncodeDefault 默认精灵表的 PNG 字节
func EncodeDefault() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, DefaultSheet()); err != nil {
		return nil, errors.Trace(err)
	}
	return buf.Bytes(), nil
}

// Load 从 http(s) 地址或本地路径加载精灵表；src 为空时返回默认精灵表
func Load(ctx context.Context, src string) (image.Image, error) {
	if src == "" {
		return DefaultSheet(), nil
	}
	var (
		rc  io.ReadCloser
		err error
	)
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		rc, err = fetch(ctx, src)
	} else {
		rc, err = os.Open(src)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "open sprite sheet %s", src)
	}
	defer rc.Close()

	img, err := png.Decode(io.LimitReader(rc, maxBytes))
	if err != nil {
		return nil, errors.Annotatef(err, "decode sprite sheet %s", src)
	}
	if b := img.Bounds(); b.Dx() < sheetWidth || b.Dy() < sheetHeight {
		return nil, errors.Annotatef(ErrBadSheet, "%s is %dx%d", src, b.Dx(), b.Dy())
	}
	applog.Log.Debugf("sprite sheet loaded: %s %v", src, img.Bounds().Size())
	return img, nil
}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, httpTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, errors.Trace(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, errors.Trace(err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, errors.Errorf("GET %s: %s", url, resp.Status)
	}
	return &cancelBody{ReadCloser: resp.Body, cancel: cancel}, nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}

// Loader 适配 game.Atlas 的异步加载入口
func Loader(src string) game.SheetLoader {
	return func(ctx context.Context) (image.Image, error) {
		return Load(ctx, src)
	}
}

// Handler 以 PNG 输出默认精灵表
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := EncodeDefault()
		if err != nil {
			applog.Log.Errorf("encode default sprite sheet: %v", err)
			http.Error(w, "sprite sheet unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(b)
	})
}
