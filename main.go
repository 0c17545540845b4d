package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

// spriteroom 入口：relay 启动 presence 中继，view 打开查看器加入房间
func main() {
	app := cli.NewApp()
	app.Name = "spriteroom"
	app.Usage = "shared 2D room where every client walks a sprite with the arrow keys"
	app.Commands = []cli.Command{
		{
			Name:  "relay",
			Usage: "run the presence relay (websocket + admin endpoints)",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "addr", Value: ":8080", Usage: "listen address", EnvVar: "SPRITEROOM_ADDR"},
				cli.StringFlag{Name: "log", Value: "relay.log", Usage: "log file (rotated)", EnvVar: "SPRITEROOM_LOG"},
				cli.StringFlag{Name: "web", Value: "web", Usage: "static files served at /", EnvVar: "SPRITEROOM_WEB"},
				cli.IntFlag{Name: "tps", Value: 20, Usage: "relay ticks per second", EnvVar: "SPRITEROOM_TPS"},
				cli.IntFlag{Name: "max-inputs-per-tick", Value: 8, Usage: "presence updates accepted per participant per tick", EnvVar: "SPRITEROOM_MAX_INPUTS_PER_TICK"},
			},
			Action: runRelay,
		},
		{
			Name:  "view",
			Usage: "join a room and walk around",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "relay", Value: "ws://localhost:8080/ws", Usage: "relay websocket url", EnvVar: "SPRITEROOM_RELAY"},
				cli.StringFlag{Name: "room", Value: "room-1", Usage: "room id", EnvVar: "SPRITEROOM_ROOM"},
				cli.StringFlag{Name: "name", Usage: "display name", EnvVar: "SPRITEROOM_NAME"},
				cli.StringFlag{Name: "sprite", Usage: "sprite sheet url or path (default: generated)", EnvVar: "SPRITEROOM_SPRITE"},
				cli.IntFlag{Name: "width", Value: 640, Usage: "viewport width", EnvVar: "SPRITEROOM_WIDTH"},
				cli.IntFlag{Name: "height", Value: 480, Usage: "viewport height", EnvVar: "SPRITEROOM_HEIGHT"},
				cli.Float64Flag{Name: "speed", Value: 5, Usage: "pixels per tick", EnvVar: "SPRITEROOM_SPEED"},
				cli.StringFlag{Name: "surface", Value: "window", Usage: "window or terminal", EnvVar: "SPRITEROOM_SURFACE"},
				cli.BoolFlag{Name: "offline", Usage: "single-player, no relay", EnvVar: "SPRITEROOM_OFFLINE"},
				cli.BoolFlag{Name: "mute", Usage: "no join/leave chime in terminal mode", EnvVar: "SPRITEROOM_MUTE"},
				cli.StringFlag{Name: "log", Value: "viewer.log", Usage: "log file (rotated)", EnvVar: "SPRITEROOM_VIEW_LOG"},
			},
			Action: runView,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "spriteroom: %+v\n", err)
		os.Exit(1)
	}
}
