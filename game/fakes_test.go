package game

import (
	"fmt"
	"image"
	"image/color"
)

// recordingSurface 记录所有绘制调用，便于断言顺序
type recordingSurface struct {
	w, h int
	ops  []string
}

func newRecordingSurface(w, h int) *recordingSurface {
	return &recordingSurface{w: w, h: h}
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }

func (s *recordingSurface) Clear() { s.ops = append(s.ops, "clear") }

func (s *recordingSurface) FillRect(r Rect, c color.Color) {
	s.ops = append(s.ops, fmt.Sprintf("fill %v", r))
}

func (s *recordingSurface) DrawImageRegion(img image.Image, src image.Rectangle, dst Rect) {
	s.ops = append(s.ops, fmt.Sprintf("image %v -> %v", src, dst))
}

func (s *recordingSurface) DrawTextCentered(text string, cx, y float64, c color.Color) {
	s.ops = append(s.ops, fmt.Sprintf("text %q %v,%v", text, cx, y))
}

func (s *recordingSurface) reset() { s.ops = nil }

// fakeChannel 记录发布并返回固定的远端列表
type fakeChannel struct {
	published []Fields
	remotes   []RemotePresence
}

func (c *fakeChannel) PublishLocalPresence(f Fields) {
	c.published = append(c.published, f)
}

func (c *fakeChannel) CurrentRemoteParticipants() []RemotePresence {
	return c.remotes
}

// countingRefresher 包装 FrameQueue，统计调度原语调用次数
type countingRefresher struct {
	*FrameQueue
	requests int
	cancels  int
}

func newCountingRefresher() *countingRefresher {
	return &countingRefresher{FrameQueue: NewFrameQueue()}
}

func (r *countingRefresher) RequestFrame(fn func()) FrameHandle {
	r.requests++
	return r.FrameQueue.RequestFrame(fn)
}

func (r *countingRefresher) CancelFrame(h FrameHandle) {
	r.cancels++
	r.FrameQueue.CancelFrame(h)
}

func testSheet() image.Image {
	return image.NewRGBA(image.Rect(0, 0, FrameSize, 4*FrameSize))
}
