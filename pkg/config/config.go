// Package config loads lambert scene settings from YAML and merges them
// with command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/lambert/pkg/export"
	"github.com/taigrr/lambert/pkg/math3d"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds everything needed to render a scene.
type Config struct {
	// Inputs and output
	Model   string `yaml:"model"`
	Texture string `yaml:"texture"`
	Output  string `yaml:"output"`

	// Image
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Supersample int    `yaml:"supersample"`
	Background  string `yaml:"background"` // empty leaves the buffer transparent

	// Scene
	CameraZ float64   `yaml:"camera_z"`
	Light   []float64 `yaml:"light"` // direction the light travels
	Color   string    `yaml:"color"` // base color of untextured faces
	Fit     bool      `yaml:"fit"`   // rescale the mesh into [-1, 1]
	Checker bool      `yaml:"checker"`

	// Modes
	Wireframe bool `yaml:"wireframe"`
	Frames    int  `yaml:"frames"`
	Workers   int  `yaml:"workers"`
}

// Load reads a YAML config file. Fields not set in the file keep their
// zero values; unknown fields are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds command-line values that override the config file. Zero
// values leave the file's setting alone.
type Flags struct {
	Model       string
	Texture     string
	Output      string
	Width       int
	Height      int
	Supersample int
	Background  string
	CameraZ     float64
	Light       string
	Color       string
	Fit         bool
	Checker     bool
	Wireframe   bool
	Frames      int
	Workers     int
}

// Resolve applies flag overrides, then fills empty fields with defaults.
func (c *Config) Resolve(flags Flags) error {
	// CLI flags override config file
	if flags.Model != "" {
		c.Model = flags.Model
	}
	if flags.Texture != "" {
		c.Texture = flags.Texture
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}
	if flags.CameraZ != 0 {
		c.CameraZ = flags.CameraZ
	}
	if flags.Light != "" {
		l, err := parseFloats(flags.Light, 3)
		if err != nil {
			return fmt.Errorf("config: -light: %w", err)
		}
		c.Light = l
	}
	if flags.Color != "" {
		c.Color = flags.Color
	}
	c.Fit = c.Fit || flags.Fit
	c.Checker = c.Checker || flags.Checker
	c.Wireframe = c.Wireframe || flags.Wireframe
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Defaults
	if c.Output == "" {
		c.Output = "output.png"
	}
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = c.Width
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.CameraZ == 0 {
		c.CameraZ = 3
	}
	if len(c.Light) == 0 {
		c.Light = []float64{0, 0, -1}
	}
	if c.Color == "" {
		c.Color = "#ffffff"
	}
	if c.Frames <= 0 {
		c.Frames = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}

// Validate checks a resolved config.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: no model", ErrInvalid)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if len(c.Light) != 3 || c.LightDir().Len() == 0 {
		return fmt.Errorf("%w: light must be a non-zero 3-vector, got %v", ErrInvalid, c.Light)
	}
	if _, err := ParseRGB(c.Color); err != nil {
		return fmt.Errorf("%w: color: %v", ErrInvalid, err)
	}
	if c.Background != "" {
		if _, err := ParseRGB(c.Background); err != nil {
			return fmt.Errorf("%w: background: %v", ErrInvalid, err)
		}
	}
	if _, err := export.FormatFor(c.Output); err != nil {
		return fmt.Errorf("%w: output: %v", ErrInvalid, err)
	}
	return nil
}

// LightDir returns the light vector. Call after Validate.
func (c *Config) LightDir() math3d.Vec3 {
	if len(c.Light) != 3 {
		return math3d.Zero3()
	}
	return math3d.V3(c.Light[0], c.Light[1], c.Light[2])
}

// BaseColor returns the parsed base color. Call after Validate.
func (c *Config) BaseColor() color.RGBA {
	rgb, _ := ParseRGB(c.Color)
	return rgb
}

// BackgroundColor returns the clear color and whether one is set.
func (c *Config) BackgroundColor() (color.RGBA, bool) {
	if c.Background == "" {
		return color.RGBA{}, false
	}
	rgb, err := ParseRGB(c.Background)
	return rgb, err == nil
}

// ParseRGB parses "#rrggbb", "rrggbb" or "r,g,b" into an opaque color.
func ParseRGB(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return color.RGBA{}, fmt.Errorf("color %q: want r,g,b", s)
		}
		var c [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
			}
			c[i] = uint8(n)
		}
		return color.RGBA{c[0], c[1], c[2], 255}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 255}, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q: want %d comma-separated numbers", s, n)
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out[i] = f
	}
	return out, nil
}
