package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pingcap/errors"
	"github.com/urfave/cli"

	"spriteroom/applog"
	"spriteroom/game"
	"spriteroom/presence"
	"spriteroom/sprites"
	"spriteroom/termview"
	"spriteroom/viewer"
)

func runView(c *cli.Context) error {
	surface := c.String("surface")
	if surface != "window" && surface != "terminal" {
		return errors.Errorf("unknown surface %q (window|terminal)", surface)
	}
	if c.Int("width") <= 0 || c.Int("height") <= 0 {
		return errors.Errorf("viewport must be positive, got %dx%d", c.Int("width"), c.Int("height"))
	}
	if err := applog.Init(c.String("log")); err != nil {
		return errors.Annotate(err, "init logger")
	}
	defer applog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := c.String("name")
	if name == "" {
		name = game.DefaultName
	}

	var (
		ch   game.PresenceChannel
		self game.AvatarState
	)
	if c.Bool("offline") {
		ch = presence.NewMemory()
		self = game.NewAvatar(name, game.DefaultSpawn, game.DirFront)
	} else {
		client, w, err := presence.Join(ctx, presence.Options{URL: c.String("relay"), Room: c.String("room"), Name: name})
		if err != nil {
			return errors.Annotate(err, "join room")
		}
		defer func() {
			_ = client.Close()
			if n := client.Dropped(); n > 0 {
				applog.Log.Warnf("%d presence update(s) dropped", n)
			}
		}()
		ch, self = client, w.Self
	}

	atlas := game.NewAtlas()
	atlas.Load(ctx, sprites.Loader(c.String("sprite")))

	cfg := game.SessionConfig{
		Name:      self.Name,
		Spawn:     self.Position,
		Direction: self.Direction,
		Speed:     c.Float64("speed"),
		Width:     float64(c.Int("width")),
		Height:    float64(c.Int("height")),
	}

	if surface == "terminal" {
		tcfg := termview.Config{Remotes: ch.CurrentRemoteParticipants, Chime: !c.Bool("mute")}
		return termview.Run(ctx, tcfg, func(r game.Refresher, src game.SurfaceSource, b game.Bounds) *game.Session {
			cfg.Width, cfg.Height = b.Width, b.Height
			return game.NewSession(cfg, ch, atlas, r, src)
		})
	}

	g, err := viewer.Build(ctx, func(r game.Refresher, src game.SurfaceSource) *game.Session {
		return game.NewSession(cfg, ch, atlas, r, src)
	})
	if err != nil {
		return err
	}
	return viewer.Run(g, viewer.Config{Title: "spriteroom - " + self.Name, Width: c.Int("width"), Height: c.Int("height")})
}
