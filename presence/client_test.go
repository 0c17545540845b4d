package presence

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spriteroom/game"
	"spriteroom/server"
)

func startRelay(t *testing.T) string {
	t.Helper()
	m := server.NewRoomManager(server.Options{TicksPerSecond: 50, Room: server.DefaultRoomConfig()})
	srv := httptest.NewServer(m.NewMux(nil))
	t.Cleanup(func() {
		srv.Close()
		m.Shutdown()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func join(t *testing.T, url, room, id, name string) (*Client, Welcome) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	c, w, err := Join(ctx, Options{URL: url, Room: room, ID: id, Name: name})
	if err != nil {
		t.Fatalf("join %s: %v", id, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, w
}

// eventually 轮询直到条件成立或超时
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func remoteByID(c *Client, id string) (game.Fields, bool) {
	for _, r := range c.CurrentRemoteParticipants() {
		if r.ID == id {
			return r.Fields, true
		}
	}
	return nil, false
}

func TestJoinSeedsSpawn(t *testing.T) {
	url := startRelay(t)
	c, w := join(t, url, "seed", "alice-id", "alice")
	if w.ID != "alice-id" || c.ID() != "alice-id" || w.Room != "seed" {
		t.Fatalf("welcome = %+v", w)
	}
	want := game.NewAvatar("alice", game.DefaultSpawn, game.DirFront)
	if w.Self != want {
		t.Fatalf("self = %+v, want %+v", w.Self, want)
	}
	if n := len(c.CurrentRemoteParticipants()); n != 0 {
		t.Fatalf("empty room has %d remotes", n)
	}
}

func TestPresenceReachesOtherParticipant(t *testing.T) {
	url := startRelay(t)
	a, _ := join(t, url, "pair", "a", "alice")
	b, _ := join(t, url, "pair", "b", "bob")

	eventually(t, "b in a's view", func() bool {
		_, ok := remoteByID(a, "b")
		return ok
	})

	a.PublishLocalPresence(game.Fields{"name": "alice", "x": 65.0, "y": 50.0, "direction": "right"})
	eventually(t, "a's move in b's view", func() bool {
		f, ok := remoteByID(b, "a")
		return ok && f["x"] == 65.0 && f["direction"] == "right"
	})
	got := game.RemoteAvatar(mustRemote(t, b, "a"), game.DefaultSize)
	if got.Position != (game.Position{X: 65, Y: 50}) || got.Direction != game.DirRight || got.Name != "alice" {
		t.Fatalf("decoded remote = %+v", got)
	}
	if _, ok := remoteByID(a, "a"); ok {
		t.Fatal("own presence echoed back")
	}

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	eventually(t, "a removed from b's view", func() bool {
		_, ok := remoteByID(b, "a")
		return !ok
	})
}

func mustRemote(t *testing.T, c *Client, id string) game.Fields {
	t.Helper()
	f, ok := remoteByID(c, id)
	if !ok {
		t.Fatalf("remote %s missing", id)
	}
	return f
}

func TestCloseIdempotentAndPublishAfterCloseDropped(t *testing.T) {
	url := startRelay(t)
	c, _ := join(t, url, "close", "x", "xena")
	if err := c.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	select {
	case <-c.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("read pump still running")
	}
	before := c.Dropped()
	c.PublishLocalPresence(game.Fields{"name": "xena", "x": 1.0, "y": 1.0, "direction": "front"})
	if c.Dropped() != before+1 {
		t.Fatalf("dropped = %d, want %d", c.Dropped(), before+1)
	}
}

func TestJoinUnreachableRelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, _, err := Join(ctx, Options{URL: "ws://127.0.0.1:1/ws", Name: "nobody"}); err == nil {
		t.Fatal("join to closed port succeeded")
	}
}

func TestMemoryChannel(t *testing.T) {
	m := NewMemory()
	var _ game.PresenceChannel = m

	m.Set("z", game.Fields{"name": "zed"})
	m.Set("a", game.Fields{"name": "amy"})
	m.Set("a", game.Fields{"name": "amy", "x": 10.0})
	got := m.CurrentRemoteParticipants()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "z" {
		t.Fatalf("remotes = %+v", got)
	}
	if got[0].Fields["x"] != 10.0 {
		t.Fatalf("latest value not kept: %+v", got[0])
	}
	m.Remove("z")
	if n := len(m.CurrentRemoteParticipants()); n != 1 {
		t.Fatalf("after remove: %d", n)
	}

	m.PublishLocalPresence(game.Fields{"name": "me", "x": 55.0})
	last, n := m.Last()
	if n != 1 || last["x"] != 55.0 {
		t.Fatalf("last = %v n = %d", last, n)
	}
}

func TestApplyDeltaFullReplacesView(t *testing.T) {
	c := &Client{id: "me", remotes: map[string]game.Fields{
		"ghost": {"name": "gone"},
		"a":     {"x": 55.0},
	}}
	c.applyDelta(server.DeltaMessage{Type: server.MsgDelta, Full: true, Players: []server.PlayerPresence{
		{ID: "a", Fields: server.Fields{"x": 300.0}},
		{ID: "b", Fields: server.Fields{"x": 10.0}},
	}})
	got := c.CurrentRemoteParticipants()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("remotes after full snapshot = %+v", got)
	}
	if got[0].Fields["x"] != 300.0 {
		t.Fatalf("a = %v", got[0].Fields)
	}

	// 普通增量只覆盖与删除，不清空
	c.applyDelta(server.DeltaMessage{Type: server.MsgDelta, Left: []string{"b"}})
	if got := c.CurrentRemoteParticipants(); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("remotes after delta = %+v", got)
	}
}
