/*
Tristris runs the falling-triomino testbed on the engine, either in a desktop
window or headless with the loop telemetry served over a websocket.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fzipp/bmfont"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/spaghettifunk/tristris/engine"
	"github.com/spaghettifunk/tristris/engine/assets"
	"github.com/spaghettifunk/tristris/engine/assets/loaders"
	"github.com/spaghettifunk/tristris/engine/core"
	"github.com/spaghettifunk/tristris/engine/fsm"
	"github.com/spaghettifunk/tristris/engine/platform"
	"github.com/spaghettifunk/tristris/engine/platform/desktop"
	"github.com/spaghettifunk/tristris/engine/renderer"
	"github.com/spaghettifunk/tristris/engine/telemetry"
	"github.com/spaghettifunk/tristris/testbed"
)

// host is what both the desktop window and the headless ticker provide.
type host interface {
	engine.Host
	engine.Window
	Post(fn func())
	Run(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "", "application config file (toml)")
	headless := flag.Bool("headless", false, "run without a window")
	flag.Parse()

	if err := run(*configPath, *headless); err != nil {
		core.LogFatal("%s", err)
	}
}

func run(configPath string, headless bool) error {
	cfg := engine.DefaultApplicationConfig()
	if configPath != "" {
		var err error
		if cfg, err = engine.LoadApplicationConfig(configPath); err != nil {
			return err
		}
	}
	if err := core.SetLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	// signal channel to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	tb, err := testbed.NewTestGame(cfg)
	if err != nil {
		return err
	}

	fps := renderer.NewLabel(4, 4)
	version := renderer.NewLabel(4, 20)
	overlay := renderer.NewOverlay(renderer.NewBasicFace(color.White), fps, version)

	opts := []engine.Option{
		engine.WithOverlay(overlay),
		engine.WithFrameRateSink(fps),
		engine.WithVersionSink(version),
		engine.WithQuitHandler(stop),
	}

	var h host
	if headless {
		h = platform.NewHeadless(int(cfg.StartWidth), int(cfg.StartHeight), cfg.Graphics.MaxFrameRate)
	} else {
		p, err := desktop.New()
		if err != nil {
			return err
		}
		if err := p.Startup(cfg.Name, cfg.StartPosX, cfg.StartPosY, cfg.StartWidth, cfg.StartHeight, cfg.Graphics.MaxFrameRate); err != nil {
			return err
		}
		defer p.Shutdown()

		title := desktop.NewTitleBar(p, cfg.Name)
		opts = append(opts, engine.WithFrameRateSink(title.FrameRate()), engine.WithVersionSink(title.Version()))
		h = p
	}

	if cfg.Telemetry.Enabled {
		hub := telemetry.NewHub()
		defer hub.Close()
		go func() {
			if err := telemetry.Serve(ctx, cfg.Telemetry.Addr, hub); err != nil {
				core.LogError("telemetry server: %s", err)
			}
		}()
		opts = append(opts, engine.WithSampleHook(func(s engine.FrameStats) {
			if err := hub.Publish(s); err != nil {
				core.LogWarn("telemetry publish: %s", err)
			}
		}))
	}

	e, err := engine.New(tb, h, h, opts...)
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		return err
	}
	defer e.Shutdown()

	am, err := assets.NewAssetManager()
	if err != nil {
		return err
	}
	defer am.Shutdown()
	registerLoaders(am)

	if cfg.Graphics.Font != "" {
		if face, err := loadFace(am, cfg.Graphics.Font); err != nil {
			core.LogWarn("font %s: %s, keeping the built-in face", cfg.Graphics.Font, err)
		} else {
			overlay.SetFace(face)
		}
	}

	if configPath != "" {
		err := am.Watch(configPath, assets.ASSET_TYPE_CONFIG, func(data interface{}, err error) {
			if err != nil {
				core.LogWarn("config reload: %s", err)
				return
			}
			next := data.(*engine.ApplicationConfig)
			h.Post(func() {
				if err := e.ApplyConfig(next); err != nil {
					core.LogWarn("config reload: %s", err)
				}
			})
		})
		if err != nil {
			return err
		}
	}

	if cfg.Definition != "" {
		err := am.Watch(cfg.Definition, assets.ASSET_TYPE_DEFINITION, func(data interface{}, err error) {
			if err != nil {
				core.LogError("state machine definition %s is invalid: %s", cfg.Definition, err)
				return
			}
			core.LogInfo("state machine definition %s changed, restart to apply it", cfg.Definition)
		})
		if err != nil {
			return err
		}
	}

	if err := e.Start(); err != nil {
		return err
	}
	core.LogInfo("%s %s running (session %s)", cfg.Name, cfg.Version, e.Session())

	// run until the window closes, a quit event arrives or a signal is caught
	return h.Run(ctx)
}

func registerLoaders(am *assets.AssetManager) {
	am.RegisterLoader(assets.ASSET_TYPE_CONFIG, assets.LoaderFunc(func(path string) (interface{}, error) {
		return engine.LoadApplicationConfig(path)
	}))
	am.RegisterLoader(assets.ASSET_TYPE_DEFINITION, assets.LoaderFunc(func(path string) (interface{}, error) {
		return fsm.LoadDefinition(path)
	}))
	am.RegisterLoader(assets.ASSET_TYPE_BITMAP_FONT, &loaders.BitmapFontLoader{})
	am.RegisterLoader(assets.ASSET_TYPE_SYSTEM_FONT, &loaders.SystemFontLoader{})
}

// loadFace loads an AngelCode .fnt bitmap font, or any other path as a
// system font config.
func loadFace(am *assets.AssetManager, path string) (renderer.Face, error) {
	assetType := assets.ASSET_TYPE_SYSTEM_FONT
	if strings.EqualFold(filepath.Ext(path), ".fnt") {
		assetType = assets.ASSET_TYPE_BITMAP_FONT
	}
	data, err := am.LoadAsset(path, assetType)
	if err != nil {
		return nil, err
	}

	switch f := data.(type) {
	case *bmfont.BitmapFont:
		return renderer.FaceFunc(func(dst draw.Image, pos image.Point, text string) {
			f.DrawText(dst, pos, text)
		}), nil
	case font.Face:
		return renderer.NewTextFace(f, color.White), nil
	}
	return nil, fmt.Errorf("unexpected font asset %T", data)
}
