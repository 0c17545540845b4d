package game

import (
	"reflect"
	"testing"
)

func TestRenderSkipsUntilAtlasReady(t *testing.T) {
	s := newRecordingSurface(640, 480)
	r := NewRenderer(NewAtlas())
	if r.Render(s, avatarAt(50, 50, DirFront), nil) {
		t.Fatal("rendered without a sprite sheet")
	}
	if len(s.ops) != 0 {
		t.Fatalf("draw calls while loading: %v", s.ops)
	}
}

func TestRenderFrameOrder(t *testing.T) {
	s := newRecordingSurface(640, 480)
	r := NewRenderer(ReadyAtlas(testSheet()))
	remotes := []RemotePresence{
		{ID: "b", Fields: Fields{"name": "bob", "x": 200.0, "y": 100.0, "direction": "right", "size": 32.0}},
		{ID: "c", Fields: Fields{"x": "nope"}},
	}
	if !r.Render(s, avatarAt(50, 60, DirBack), remotes) {
		t.Fatal("frame skipped")
	}
	want := []string{
		"clear",
		"fill {0 0 640 480}",
		"image (0,0)-(64,64) -> {50 60 64 64}",
		`text "alice" 82,50`,
		"image (0,192)-(64,256) -> {200 100 32 32}",
		`text "bob" 216,90`,
		"image (0,64)-(64,128) -> {50 50 64 64}",
		`text "Player" 82,40`,
	}
	if !reflect.DeepEqual(s.ops, want) {
		t.Fatalf("ops:\n%q\nwant:\n%q", s.ops, want)
	}
}
