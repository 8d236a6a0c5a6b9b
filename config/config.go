// Package config holds the engine settings and reads them from TOML or YAML
// files.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"vk-engine/vulkan"
)

var (
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
	ErrInvalid           = errors.New("config: invalid value")
)

type Config struct {
	Window WindowConfig `toml:"window" yaml:"window"`
	Vulkan VulkanConfig `toml:"vulkan" yaml:"vulkan"`
	Render RenderConfig `toml:"render" yaml:"render"`
	Camera CameraConfig `toml:"camera" yaml:"camera"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

type WindowConfig struct {
	Title      string `toml:"title" yaml:"title"`
	Width      int    `toml:"width" yaml:"width"`
	Height     int    `toml:"height" yaml:"height"`
	Resizable  bool   `toml:"resizable" yaml:"resizable"`
	Fullscreen bool   `toml:"fullscreen" yaml:"fullscreen"`
}

type VulkanConfig struct {
	Validation     bool `toml:"validation" yaml:"validation"`
	VSync          bool `toml:"vsync" yaml:"vsync"`
	FramesInFlight int  `toml:"frames_in_flight" yaml:"frames_in_flight"`
}

type RenderConfig struct {
	ClearColor     [4]float32 `toml:"clear_color" yaml:"clear_color"`
	VertexShader   string     `toml:"vertex_shader" yaml:"vertex_shader"`
	FragmentShader string     `toml:"fragment_shader" yaml:"fragment_shader"`
	GridSize       int        `toml:"grid_size" yaml:"grid_size"`
}

// CameraConfig angles are in degrees.
type CameraConfig struct {
	FOV       float32 `toml:"fov" yaml:"fov"`
	Near      float32 `toml:"near" yaml:"near"`
	Far       float32 `toml:"far" yaml:"far"`
	MoveSpeed float32 `toml:"move_speed" yaml:"move_speed"`
	LookSpeed float32 `toml:"look_speed" yaml:"look_speed"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "Vulkan Engine",
			Width:     800,
			Height:    600,
			Resizable: true,
		},
		Vulkan: VulkanConfig{
			Validation:     vulkan.ValidationEnabledByDefault,
			VSync:          false,
			FramesInFlight: vulkan.MaxFramesInFlight,
		},
		Render: RenderConfig{
			ClearColor:     [4]float32{0.01, 0.01, 0.01, 1},
			VertexShader:   "shaders/simple.vert.spv",
			FragmentShader: "shaders/simple.frag.spv",
			GridSize:       20,
		},
		Camera: CameraConfig{
			FOV:       50,
			Near:      0.1,
			Far:       100,
			MoveSpeed: 3,
			LookSpeed: 0.00045,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

type decoder interface {
	Decode(v any) error
}

type decoderFunc func(r io.Reader) decoder

func decoderFor(path string) (decoderFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return func(r io.Reader) decoder {
			d := toml.NewDecoder(r)
			d.DisallowUnknownFields()
			return d
		}, nil
	case ".yaml", ".yml":
		return func(r io.Reader) decoder {
			d := yaml.NewDecoder(r)
			d.KnownFields(true)
			return d
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load reads path over the defaults and validates the result. Keys missing
// from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	newDecoder, err := decoderFor(path)
	if err != nil {
		return cfg, err
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := newDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: decoding %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		invalid("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Vulkan.FramesInFlight < 1 || c.Vulkan.FramesInFlight > 3 {
		invalid("frames_in_flight %d not in [1, 3]", c.Vulkan.FramesInFlight)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		invalid("fov %g", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		invalid("clip planes near=%g far=%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Render.GridSize < 0 {
		invalid("grid_size %d", c.Render.GridSize)
	}
	for i, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			invalid("clear_color[%d] = %g", i, v)
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		invalid("log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		invalid("log format %q", c.Log.Format)
	}

	return errors.Join(errs...)
}
