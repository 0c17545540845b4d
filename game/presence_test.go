package game

import (
	"math"
	"testing"
)

func TestPublisherOnlyOnChange(t *testing.T) {
	ch := &fakeChannel{}
	a := avatarAt(50, 50, DirFront)
	p := NewPublisher(ch, a)

	for i := 0; i < 10; i++ {
		if p.Publish(Resolve(a, keys(), screen)) {
			t.Fatal("published without motion")
		}
	}
	if len(ch.published) != 0 {
		t.Fatalf("%d publishes on idle ticks, want 0", len(ch.published))
	}

	a = Resolve(a, keys(KeyRight), screen)
	if !p.Publish(a) {
		t.Fatal("motion not published")
	}
	if p.Publish(a) {
		t.Fatal("same state published twice")
	}

	// 仅朝向变化也要发布
	a.Direction = DirBack
	if !p.Publish(a) {
		t.Fatal("direction change not published")
	}
	if len(ch.published) != 2 {
		t.Fatalf("publishes = %d, want 2", len(ch.published))
	}
	last := ch.published[1]
	if last[FieldName] != "alice" || last[FieldX] != 55.0 || last[FieldY] != 50.0 || last[FieldDirection] != "back" {
		t.Fatalf("unexpected payload %v", last)
	}
}

func TestPublisherStuckAgainstWall(t *testing.T) {
	ch := &fakeChannel{}
	a := avatarAt(0, 50, DirLeft)
	p := NewPublisher(ch, a)
	for i := 0; i < 5; i++ {
		a = Resolve(a, keys(KeyLeft), screen)
		p.Publish(a)
	}
	if len(ch.published) != 0 {
		t.Fatalf("pushing into the wall published %d times", len(ch.published))
	}
}

func TestRemoteAvatarDefaults(t *testing.T) {
	cases := []struct {
		name   string
		fields Fields
		want   AvatarState
	}{
		{
			name:   "empty",
			fields: Fields{},
			want:   AvatarState{Name: "Player", Position: Position{50, 50}, Size: 64, Direction: DirFront},
		},
		{
			name:   "complete",
			fields: Fields{"name": "bob", "x": 10.0, "y": 20.0, "direction": "left", "size": 32.0},
			want:   AvatarState{Name: "bob", Position: Position{10, 20}, Size: 32, Direction: DirLeft},
		},
		{
			name:   "wrong types",
			fields: Fields{"name": 7, "x": "abc", "y": true, "direction": 3, "size": "big"},
			want:   AvatarState{Name: "Player", Position: Position{50, 50}, Size: 64, Direction: DirFront},
		},
		{
			name:   "unknown direction",
			fields: Fields{"name": "eve", "x": 1, "y": int64(2), "direction": "north"},
			want:   AvatarState{Name: "eve", Position: Position{1, 2}, Size: 64, Direction: DirFront},
		},
		{
			name:   "empty name and bad size",
			fields: Fields{"name": "", "size": -4.0},
			want:   AvatarState{Name: "Player", Position: Position{50, 50}, Size: 64, Direction: DirFront},
		},
		{
			name:   "non-finite numbers",
			fields: Fields{"x": math.Inf(1), "y": math.NaN(), "size": math.Inf(1)},
			want:   AvatarState{Name: "Player", Position: Position{50, 50}, Size: 64, Direction: DirFront},
		},
		{
			name:   "float32 infinity",
			fields: Fields{"x": float32(math.Inf(-1)), "y": 7.0},
			want:   AvatarState{Name: "Player", Position: Position{50, 7}, Size: 64, Direction: DirFront},
		},
		{
			name:   "nil fields",
			fields: nil,
			want:   AvatarState{Name: "Player", Position: Position{50, 50}, Size: 64, Direction: DirFront},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := RemoteAvatar(c.fields, DefaultSize); got != c.want {
				t.Fatalf("got %+v, want %+v", got, c.want)
			}
		})
	}
}
