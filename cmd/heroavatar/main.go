package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/normanking/heroavatar/internal/avatar"
	"github.com/normanking/heroavatar/internal/bus"
	"github.com/normanking/heroavatar/internal/config"
	"github.com/normanking/heroavatar/internal/content"
	"github.com/normanking/heroavatar/internal/logging"
	"github.com/normanking/heroavatar/internal/marquee"
	"github.com/normanking/heroavatar/internal/renderer"
	"github.com/normanking/heroavatar/internal/snapshot"
	"github.com/normanking/heroavatar/internal/window"
	"github.com/spf13/pflag"
)

const failedTitle = "Failed to load 3D model"

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "heroavatar:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := config.Flags("heroavatar")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if write, _ := flags.GetBool("write-config"); write {
		dir, err := config.GetConfigDir()
		if err != nil {
			return err
		}
		path := filepath.Join(dir, "config.yaml")
		if err := config.Save(cfg, path); err != nil {
			return err
		}
		fmt.Println("wrote", path)
		return nil
	}

	logger, err := logging.New(&logging.Config{
		LogDir:  cfg.Log.Dir,
		Level:   logging.LogLevel(cfg.Log.Level),
		Console: cfg.Log.Console,
	})
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.Component("main")

	portfolio := content.Load()
	logger.Info("content", "Portfolio loaded", portfolio.Summary())

	rendCfg, err := rendererConfig(cfg, nil)
	if err != nil {
		return err
	}
	opts, err := viewportOptions(cfg)
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	events := bus.NewEventBus()
	win, err := window.New(windowConfig(cfg), events, logger.Component("window"))
	if err != nil {
		return err
	}
	defer win.Destroy()

	rendCfg.Events = events
	rend := renderer.New(rendCfg, logger.Component("renderer"))
	vp := avatar.NewViewport(rend, opts, logger.Component("viewport"))

	vp.OnStateChange(func(s avatar.State, err error) {
		data := map[string]any{"state": s.String()}
		if err != nil {
			data["error"] = err.Error()
		}
		events.Publish(bus.Event{Type: bus.EventTypeViewportState, Data: data})
		if s == avatar.StateFailed {
			win.SetTitle(failedTitle)
		}
	})

	if err := vp.Mount(win); err != nil {
		return fmt.Errorf("mount viewport: %w", err)
	}
	defer vp.Unmount()

	if cfg.Window.Marquee {
		mq := marquee.New(portfolio.Roles, marquee.DefaultTiming())
		vp.OnFrame(func(dt float32) {
			if vp.State() == avatar.StateFailed {
				return
			}
			if text, changed := mq.Advance(time.Duration(float64(dt) * float64(time.Second))); changed {
				win.SetTitle(marqueeTitle(cfg.Window.Title, text))
			}
		})
	}

	win.OnKey(cfg.Snapshot.Key, func() {
		rend.Capture(func(img *image.RGBA) {
			go func() {
				path, err := snapshot.Save(img, snapshot.Options{
					Dir:      cfg.Snapshot.Dir,
					MaxWidth: cfg.Snapshot.MaxWidth,
				})
				if err != nil {
					log.Error().Err(err).Msg("snapshot failed")
					return
				}
				log.Info().Str("path", path).Msg("snapshot saved")
				events.Publish(bus.Event{Type: bus.EventTypeSnapshotSaved, Data: map[string]any{"path": path}})
			}()
		})
	})
	win.OnKey("Escape", win.Close)

	events.Subscribe(bus.EventTypeShaderReloaded, func(e bus.Event) {
		log.Debug().Int("count", e.Int("count")).Msg("shaders reloaded")
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := vp.LoadCharacter(ctx, cfg.Asset.Path); err != nil {
		return fmt.Errorf("load character: %w", err)
	}

	if err := vp.Run(ctx, window.Time); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	drawCalls, triangles := rend.Stats()
	log.Info().Int("draw_calls", drawCalls).Int("triangles", triangles).Msg("shutting down")
	return nil
}
