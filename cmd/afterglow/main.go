package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"Afterglow/internal/config"
	"Afterglow/internal/logger"

	"go.uber.org/zap"
)

type options struct {
	configPath  string
	record      bool
	still       string
	printConfig bool
	debug       bool
	wireframe   bool
}

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

// parseFlags reads the command line and applies any explicitly set overrides
// on top of the loaded configuration.
func parseFlags(args []string, load func(path string) (config.Config, error)) (options, config.Config, error) {
	var opts options
	fs := flag.NewFlagSet("afterglow", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "afterglow.toml", "Path to the TOML configuration file")
	fs.BoolVar(&opts.record, "record", false, "Render headless and encode to a video file")
	fs.StringVar(&opts.still, "still", "", "Save the last presented frame as a PNG")
	fs.BoolVar(&opts.printConfig, "print-config", false, "Print the effective configuration and exit")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.wireframe, "wireframe", false, "Draw the OpenGL scene in wireframe")

	output := fs.String("output", "", "Output file name for recording")
	frames := fs.Int("frames", 0, "Number of frames to record")
	fps := fs.Int("fps", 0, "Frames per second for recording")
	width := fs.Int("width", 0, "Width of the window or recording")
	height := fs.Int("height", 0, "Height of the window or recording")
	mix := fs.Float64("mix", 0, "History mix ratio in [0,1]")
	rendererName := fs.String("renderer", "", "Scene renderer: opengl or software")

	if err := fs.Parse(args); err != nil {
		return opts, config.Config{}, err
	}

	cfg, err := load(opts.configPath)
	if err != nil {
		return opts, cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.Record.Output = *output
		case "frames":
			cfg.Record.Frames = *frames
		case "fps":
			cfg.Record.FPS = *fps
		case "width":
			cfg.Window.Width = *width
		case "height":
			cfg.Window.Height = *height
		case "mix":
			cfg.Post.MixRatio = float32(*mix)
		case "renderer":
			cfg.Scene.Renderer = *rendererName
		}
	})

	if err := cfg.Validate(); err != nil {
		return opts, cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return opts, cfg, nil
}

func main() {
	opts, cfg, err := parseFlags(os.Args[1:], config.Load)
	if errors.Is(err, flag.ErrHelp) {
		return
	}

	logger.InitWithLevel(opts.debug)
	defer logger.Sync()
	if err != nil {
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if opts.printConfig {
		if err := cfg.Write(os.Stdout); err != nil {
			logger.Log.Fatal("Failed to write configuration", zap.Error(err))
		}
		return
	}

	if opts.record {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = runRecord(ctx, cfg, opts)
	} else {
		err = runWindow(cfg, opts)
	}
	if err != nil {
		logger.Log.Error("Afterglow stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
