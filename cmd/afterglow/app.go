package main

import (
	"context"
	"errors"

	"Afterglow/internal/config"
	"Afterglow/internal/engine"
	"Afterglow/internal/logger"
	"Afterglow/internal/postfx"
	"Afterglow/internal/record"
	"Afterglow/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// buildScene creates the icosphere, lights and camera described by cfg.
func buildScene(cfg config.SceneConfig, width, height int) (*renderer.Scene, error) {
	background, err := renderer.ParseHexColor(cfg.Background)
	if err != nil {
		return nil, err
	}
	diffuse, err := renderer.ParseHexColor(cfg.DiffuseColor)
	if err != nil {
		return nil, err
	}
	lightColor, err := renderer.ParseHexColor(cfg.LightColor)
	if err != nil {
		return nil, err
	}
	ambientColor, err := renderer.ParseHexColor(cfg.AmbientColor)
	if err != nil {
		return nil, err
	}

	model := renderer.NewIcosphere(cfg.Radius, cfg.Detail)
	model.SetDiffuseColor(diffuse[0], diffuse[1], diffuse[2])

	logger.Log.Info("Scene built",
		zap.Int("triangles", model.TriangleCount()),
		zap.Float32("cameraZ", cfg.CameraZ))
	return &renderer.Scene{
		Camera:     renderer.NewDefaultCamera(width, height, cfg.CameraZ),
		Light:      renderer.CreateDirectionalLight(mgl32.Vec3(cfg.LightPosition), lightColor, cfg.LightIntensity),
		Ambient:    renderer.AmbientLight{Color: ambientColor, Intensity: cfg.AmbientIntensity},
		Model:      model,
		Background: background,
	}, nil
}

func runWindow(cfg config.Config, opts options) error {
	renderer.Debug = opts.wireframe

	eng := engine.NewEngine(cfg.Window)
	if bg, err := renderer.ParseHexColor(cfg.Scene.Background); err == nil {
		eng.TitleBarColor = bg
	}
	if err := eng.Open(); err != nil {
		return err
	}
	defer eng.Close()

	width, height := eng.Size()
	scene, err := buildScene(cfg.Scene, width, height)
	if err != nil {
		return err
	}
	disp := renderer.InjectDisplacement(renderer.StandardShader(), cfg.Anchors, cfg.Displacement)

	var rend renderer.Renderer
	if cfg.Scene.Renderer == config.RendererSoftware {
		rend = renderer.NewSoftwareRenderer(scene, disp)
	} else {
		glRenderer, err := renderer.NewOpenGLRenderer(scene, disp)
		if err != nil {
			return err
		}
		rend = glRenderer
	}
	defer rend.Cleanup()

	window, err := engine.NewWindowDisplay(eng)
	if err != nil {
		return err
	}
	defer window.Cleanup()

	var display postfx.Display = window
	if opts.still != "" {
		still := record.NewStillDisplay(opts.still)
		display = record.Displays{window, still}
		defer func() {
			if err := still.Close(); err != nil {
				logger.Log.Error("Failed to save still", zap.Error(err))
			}
		}()
	}

	composer, err := postfx.NewComposer(cfg.Post, eng, rend, display, postfx.WithPhaseSink(disp.Time))
	if err != nil {
		return err
	}
	defer composer.Close()

	return eng.Run(composer, scene.Camera)
}

// runRecord renders cfg.Record.Frames frames with the software renderer at a
// fixed step and encodes them with ffmpeg.
func runRecord(ctx context.Context, cfg config.Config, opts options) error {
	width, height := cfg.Window.Width, cfg.Window.Height
	scene, err := buildScene(cfg.Scene, width, height)
	if err != nil {
		return err
	}
	disp := renderer.InjectDisplacement(renderer.StandardShader(), cfg.Anchors, cfg.Displacement)
	rend := renderer.NewSoftwareRenderer(scene, disp)
	defer rend.Cleanup()

	video, err := record.NewFFmpegDisplay(cfg.Record, width, height)
	if err != nil {
		return err
	}
	displays := record.Displays{video}
	var still *record.StillDisplay
	if opts.still != "" {
		still = record.NewStillDisplay(opts.still)
		displays = append(displays, still)
	}

	clock := postfx.NewStepClock(cfg.Record.FPS)
	composer, err := postfx.NewComposer(cfg.Post, record.StaticViewport{Width: width, Height: height}, rend, displays,
		postfx.WithClock(clock),
		postfx.WithPhaseSink(disp.Time))
	if err != nil {
		return errors.Join(err, video.Close())
	}

	runErr := record.Run(ctx, composer, clock, cfg.Record.Frames)
	composer.Close()
	// Close reports write failures as well as the ffmpeg exit status.
	errs := []error{runErr, video.Close()}
	if still != nil {
		errs = append(errs, still.Close())
	}
	return errors.Join(errs...)
}
