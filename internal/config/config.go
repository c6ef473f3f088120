// Package config loads the application settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"Afterglow/internal/logger"
	"Afterglow/internal/postfx"
	"Afterglow/internal/renderer"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// Scene renderer backends.
const (
	RendererOpenGL   = "opengl"
	RendererSoftware = "software"
)

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type SceneConfig struct {
	Renderer         string     `toml:"renderer"`
	Radius           float32    `toml:"radius"`
	Detail           int        `toml:"detail"`
	CameraZ          float32    `toml:"camera_z"`
	Background       string     `toml:"background"`
	DiffuseColor     string     `toml:"diffuse_color"`
	LightColor       string     `toml:"light_color"`
	LightIntensity   float32    `toml:"light_intensity"`
	LightPosition    [3]float32 `toml:"light_position"`
	AmbientColor     string     `toml:"ambient_color"`
	AmbientIntensity float32    `toml:"ambient_intensity"`
}

type RecordConfig struct {
	Output string `toml:"output"`
	Frames int    `toml:"frames"`
	FPS    int    `toml:"fps"`
	Codec  string `toml:"codec"`
	PixFmt string `toml:"pix_fmt"`
	CRF    int    `toml:"crf"`
}

// Config is the whole application configuration.
type Config struct {
	Window       WindowConfig                `toml:"window"`
	Scene        SceneConfig                 `toml:"scene"`
	Displacement renderer.DisplacementParams `toml:"displacement"`
	Anchors      renderer.AnchorTags         `toml:"anchors"`
	Post         postfx.Config               `toml:"post"`
	Record       RecordConfig                `toml:"record"`
}

// Default returns the reference scene: a blue-lit icosphere with a short trail
// and soft bloom.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Afterglow",
			VSync:  true,
		},
		Scene: SceneConfig{
			Renderer:         RendererOpenGL,
			Radius:           1,
			Detail:           64,
			CameraZ:          3,
			Background:       "#000000",
			DiffuseColor:     "#ffffff",
			LightColor:       "#526cff",
			LightIntensity:   0.6,
			LightPosition:    [3]float32{2, 2, 2},
			AmbientColor:     "#4255ff",
			AmbientIntensity: 0.5,
		},
		Displacement: renderer.DefaultDisplacementParams(),
		Anchors:      renderer.DefaultAnchorTags(),
		Post:         postfx.DefaultConfig(),
		Record: RecordConfig{
			Output: "afterglow.mp4",
			Frames: 600,
			FPS:    60,
			Codec:  "libx264",
			PixFmt: "yuv420p",
			CRF:    18,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Log.Info("Config file not found, using defaults", zap.String("path", path))
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := Decode(bytes.NewReader(data), &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	logger.Log.Info("Config loaded", zap.String("path", path))
	return cfg, nil
}

// Decode reads TOML from r into cfg. Keys absent from the input keep their
// current values; unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown config keys:\n%s", strict.String())
		}
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Write encodes cfg as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}

	switch c.Scene.Renderer {
	case RendererOpenGL, RendererSoftware:
	default:
		return fmt.Errorf("unknown scene renderer %q", c.Scene.Renderer)
	}
	if c.Scene.Radius <= 0 {
		return fmt.Errorf("scene radius %v must be positive", c.Scene.Radius)
	}
	if c.Scene.Detail < 0 || c.Scene.Detail > 512 {
		return fmt.Errorf("scene detail %d outside [0,512]", c.Scene.Detail)
	}
	if c.Scene.CameraZ < renderer.MinCameraZ || c.Scene.CameraZ > renderer.MaxCameraZ {
		return fmt.Errorf("camera_z %v outside [%v,%v]", c.Scene.CameraZ, renderer.MinCameraZ, renderer.MaxCameraZ)
	}
	for _, color := range []string{c.Scene.Background, c.Scene.DiffuseColor, c.Scene.LightColor, c.Scene.AmbientColor} {
		if _, err := renderer.ParseHexColor(color); err != nil {
			return err
		}
	}

	if err := c.Displacement.Validate(); err != nil {
		return err
	}
	if c.Anchors.Vertex == "" || c.Anchors.VertexPars == "" {
		return errors.New("vertex anchors must be set")
	}
	if err := c.Post.Validate(); err != nil {
		return err
	}

	if c.Record.FPS <= 0 {
		return fmt.Errorf("record fps %d must be positive", c.Record.FPS)
	}
	if c.Record.Frames < 0 {
		return fmt.Errorf("record frames %d is negative", c.Record.Frames)
	}
	return nil
}
