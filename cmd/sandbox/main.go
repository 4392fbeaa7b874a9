package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hubastard/canopy/engine/assets"
	"github.com/hubastard/canopy/engine/core"
	glbackend "github.com/hubastard/canopy/engine/gfx/gl"
	"github.com/hubastard/canopy/engine/gfx/gpu"
	"github.com/hubastard/canopy/engine/gfx/recording"
	"github.com/hubastard/canopy/engine/platform"
	"github.com/hubastard/canopy/engine/profiler"
	flag "github.com/spf13/pflag"
)

type options struct {
	configPath string
	texture    string
	sprites    int
	frames     int
	headless   bool
	profile    bool
	logLevel   string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("sandbox", flag.ContinueOnError)
	fs.StringVarP(&o.configPath, "config", "c", "", "YAML config file (defaults apply when empty)")
	fs.StringVarP(&o.texture, "texture", "t", "", "sprite atlas image (png, bmp or webp); a generated atlas is used when empty")
	fs.IntVarP(&o.sprites, "sprites", "n", 2000, "number of animated sprites")
	fs.IntVar(&o.frames, "frames", 0, "stop after this many frames (0 runs until closed; headless defaults to 120)")
	fs.BoolVar(&o.headless, "headless", false, "record frames in memory instead of opening a window")
	fs.BoolVar(&o.profile, "profile", false, "record frame scopes; Ctrl+P dumps a speedscope file")
	fs.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.sprites < 0 {
		return o, fmt.Errorf("--sprites must not be negative, got %d", o.sprites)
	}
	if o.headless && o.frames == 0 {
		o.frames = 120
	}
	return o, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})), nil
}

func loadConfig(path string) (core.Config, error) {
	if path == "" {
		cfg := core.DefaultConfig()
		cfg.Title = "canopy sandbox"
		return cfg, nil
	}
	return core.LoadConfig(path)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "sandbox:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	log, err := newLogger(opts.logLevel)
	if err != nil {
		return err
	}
	core.SetLogger(log)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.profile {
		profiler.Enable(profiler.DefaultCapacity)
	}

	app := &App{opts: opts}
	if opts.headless {
		return runHeadless(app, cfg, opts)
	}

	var glfwWin *platform.GLFWWindow
	newWindow := func(cfg core.Config) (core.Window, error) {
		win, err := platform.NewGLFWWindow(cfg, nil)
		if err != nil {
			return nil, err
		}
		glfwWin = win
		return &frameLimit{Window: win, max: opts.frames}, nil
	}
	newRenderer := func(win core.Window, cfg core.Config) (core.Renderer, error) {
		r, err := glbackend.NewRendererGL(win, cfg)
		if err != nil {
			return nil, err
		}
		app.newTexture = func(img *assets.Image) (gpu.Texture, error) {
			img.FlipVertical()
			return r.CreateTexture(img.W, img.H, img.Pix)
		}
		return r, nil
	}
	err = core.Run(app, cfg, newWindow, newRenderer)
	if glfwWin != nil {
		glfwWin.Destroy()
	}
	return err
}

func runHeadless(app *App, cfg core.Config, opts options) error {
	win := core.NewHeadlessWindow(cfg, opts.frames)
	rend := recording.NewRenderer()
	app.newTexture = func(img *assets.Image) (gpu.Texture, error) {
		return recording.NewTexture(img.W, img.H), nil
	}

	err := core.Run(app, cfg,
		func(core.Config) (core.Window, error) { return win, nil },
		func(core.Window, core.Config) (core.Renderer, error) { return rend, nil })
	if err != nil {
		return err
	}

	frames := rend.Frames()
	fmt.Printf("frames: %d\n", len(frames))
	if n := len(frames); n > 0 {
		last := frames[n-1]
		fmt.Printf("last frame: %d draw calls, %d commands\n", len(last.DrawCalls), last.Commands)
	}
	fmt.Printf("last stats: %d draw calls, %d quads, %d vertices, %d growths\n",
		app.stats.DrawCalls, app.stats.QuadCount, app.stats.TotalVertexCount(), app.stats.Growths)
	return nil
}

// frameLimit closes the wrapped window after max swaps; max 0 means never.
type frameLimit struct {
	core.Window
	max, n int
}

func (f *frameLimit) SwapBuffers() {
	f.Window.SwapBuffers()
	f.n++
}

func (f *frameLimit) ShouldClose() bool {
	return f.Window.ShouldClose() || (f.max > 0 && f.n >= f.max)
}
