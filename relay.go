package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pingcap/errors"
	"github.com/urfave/cli"

	"spriteroom/applog"
	"spriteroom/server"
	"spriteroom/sprites"
)

const shutdownTimeout = 5 * time.Second

func runRelay(c *cli.Context) error {
	addr := c.String("addr")
	if addr == "" {
		return errors.Errorf("relay listen address cannot be empty")
	}
	if c.Int("tps") <= 0 {
		return errors.Errorf("tps must be positive, got %d", c.Int("tps"))
	}
	if err := applog.Init(c.String("log"), applog.WithConsole()); err != nil {
		return errors.Annotate(err, "init logger")
	}
	defer applog.Sync()

	roomCfg := server.DefaultRoomConfig()
	roomCfg.MaxInputsPerTick = c.Int("max-inputs-per-tick")
	rm := server.GetRoomManager()
	rm.Configure(server.Options{TicksPerSecond: c.Int("tps"), Room: roomCfg})
	// 先预创建一个默认房间，便于快速试跑
	_ = rm.GetOrCreateRoom("room-1")

	web := c.String("web")
	mux := rm.NewMux(func(mux *http.ServeMux) {
		mux.Handle("/sprites/default.png", sprites.Handler())
		if fi, err := os.Stat(web); err == nil && fi.IsDir() {
			mux.Handle("/", http.FileServer(http.Dir(web)))
		} else {
			applog.Log.Warnf("static dir %q not found, / is not served", web)
		}
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	errc := make(chan error, 1)
	go func() {
		applog.Log.Infof("spriteroom relay listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errc:
		rm.Shutdown()
		return errors.Annotatef(err, "listen %s", addr)
	}
	applog.Log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		applog.Log.Warnf("http shutdown: %v", err)
	}
	rm.Shutdown()
	return nil
}
