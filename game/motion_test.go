package game

import "testing"

var allKeys = []Key{KeyUp, KeyDown, KeyLeft, KeyRight}

func keys(ks ...Key) InputSet {
	s := make(InputSet, len(ks))
	for _, k := range ks {
		s[k] = struct{}{}
	}
	return s
}

func avatarAt(x, y float64, dir Direction) AvatarState {
	return NewAvatar("alice", Position{X: x, Y: y}, dir)
}

var screen = Bounds{Width: DefaultWidth, Height: DefaultHeight}

func TestResolveSingleKeys(t *testing.T) {
	cases := []struct {
		key  Key
		want AvatarState
	}{
		{KeyUp, avatarAt(50, 45, DirBack)},
		{KeyDown, avatarAt(50, 55, DirFront)},
		{KeyLeft, avatarAt(45, 50, DirLeft)},
		{KeyRight, avatarAt(55, 50, DirRight)},
	}
	for _, c := range cases {
		got := Resolve(avatarAt(50, 50, DirFront), keys(c.key), screen)
		if got != c.want {
			t.Errorf("%s: got %+v, want %+v", c.key, got, c.want)
		}
	}
}

func TestResolveDiagonal(t *testing.T) {
	got := Resolve(avatarAt(50, 50, DirFront), keys(KeyUp, KeyLeft), screen)
	want := avatarAt(45, 45, DirLeft)
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestResolveDirectionFollowsEvaluationOrder(t *testing.T) {
	cases := []struct {
		held InputSet
		dir  Direction
	}{
		{keys(KeyUp, KeyDown), DirFront},
		{keys(KeyDown, KeyLeft), DirLeft},
		{keys(KeyUp, KeyRight), DirRight},
		{keys(KeyLeft, KeyRight), DirRight},
		{keys(KeyUp, KeyDown, KeyLeft, KeyRight), DirRight},
	}
	for _, c := range cases {
		got := Resolve(avatarAt(100, 100, DirBack), c.held, screen)
		if got.Direction != c.dir {
			t.Errorf("held %v: direction %s, want %s", c.held, got.Direction, c.dir)
		}
	}
	// 相反方向同时按住：两次位移相互抵消
	got := Resolve(avatarAt(100, 100, DirBack), keys(KeyLeft, KeyRight), screen)
	if got.Position != (Position{X: 100, Y: 100}) {
		t.Errorf("left+right moved to %+v", got.Position)
	}
}

func TestResolveNoKeysKeepsState(t *testing.T) {
	start := avatarAt(120, 80, DirLeft)
	got := Resolve(start, keys(), screen)
	if got != start {
		t.Fatalf("got %+v, want unchanged %+v", got, start)
	}
}

func TestResolveClampsToBounds(t *testing.T) {
	maxX := screen.Width - DefaultSize
	maxY := screen.Height - DefaultSize
	starts := []Position{
		{0, 0}, {2, 3}, {maxX, maxY}, {maxX - 2, maxY - 1}, {0, maxY}, {maxX, 0}, {300, 200},
	}
	for mask := 0; mask < 1<<len(allKeys); mask++ {
		held := make(InputSet)
		for i, k := range allKeys {
			if mask&(1<<i) != 0 {
				held[k] = struct{}{}
			}
		}
		for _, p := range starts {
			a := avatarAt(p.X, p.Y, DirFront)
			for i := 0; i < 200; i++ {
				a = Resolve(a, held, screen)
				if a.Position.X < 0 || a.Position.X > maxX || a.Position.Y < 0 || a.Position.Y > maxY {
					t.Fatalf("held %v from %+v: escaped bounds at %+v", held, p, a.Position)
				}
			}
		}
	}
}

func TestResolveEdges(t *testing.T) {
	got := Resolve(avatarAt(2, 3, DirFront), keys(KeyUp, KeyLeft), screen)
	if got.Position != (Position{}) {
		t.Errorf("top-left clamp: got %+v", got.Position)
	}
	got = Resolve(avatarAt(574, 414, DirFront), keys(KeyDown, KeyRight), screen)
	if got.Position != (Position{X: 576, Y: 416}) {
		t.Errorf("bottom-right clamp: got %+v", got.Position)
	}
}

func TestResolveSurfaceSmallerThanSprite(t *testing.T) {
	got := Resolve(avatarAt(0, 0, DirFront), keys(KeyRight, KeyDown), Bounds{Width: 32, Height: 32})
	if got.Position != (Position{}) {
		t.Fatalf("got %+v, want pinned at origin", got.Position)
	}
}

func TestResolvePullsBackAfterShrink(t *testing.T) {
	small := Bounds{Width: 320, Height: 240}
	start := avatarAt(600, 400, DirLeft)

	got := Resolve(start, keys(), small)
	if got.Position != (Position{X: 256, Y: 176}) || got.Direction != DirLeft {
		t.Fatalf("idle after shrink: %+v", got)
	}
	// 只按一个轴时另一个轴也回到边界内
	got = Resolve(start, keys(KeyUp), small)
	if got.Position != (Position{X: 256, Y: 176}) || got.Direction != DirBack {
		t.Fatalf("up after shrink: %+v", got)
	}
}
