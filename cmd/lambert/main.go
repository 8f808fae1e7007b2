// lambert - z-buffered software rasterizer
// Renders OBJ and glTF meshes with flat Lambertian shading and an optional
// diffuse texture into PNG or WebP images, or previews them in the terminal.
//
// Usage:
//
//	lambert [options] <model.obj|model.glb>
//	lambert -config scene.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"

	"github.com/taigrr/lambert/pkg/config"
	"github.com/taigrr/lambert/pkg/export"
	"github.com/taigrr/lambert/pkg/math3d"
	"github.com/taigrr/lambert/pkg/models"
	"github.com/taigrr/lambert/pkg/render"
)

var (
	configPath  = flag.String("config", "", "YAML scene file")
	outputPath  = flag.String("o", "", "Output image (.png or .webp)")
	texturePath = flag.String("texture", "", "Diffuse texture (TGA/PNG/JPG/BMP)")
	size        = flag.Int("size", 0, "Output width in pixels (default 800)")
	height      = flag.Int("height", 0, "Output height in pixels (default: same as -size)")
	cameraZ     = flag.Float64("camera", 0, "Camera distance along +z (default 3)")
	baseColor   = flag.String("color", "", "Base color for untextured faces (#rrggbb or R,G,B)")
	bgColor     = flag.String("bg", "", "Background color (#rrggbb or R,G,B); transparent if unset")
	lightDir    = flag.String("light", "", "Light direction X,Y,Z (default 0,0,-1)")
	workers     = flag.Int("workers", 0, "Parallel row bands (default: number of CPUs)")
	supersample = flag.Int("ss", 0, "Supersampling factor, downscaled after rendering")
	frames      = flag.Int("frames", 0, "Render a turntable sequence of N frames")
	wireframe   = flag.Bool("wireframe", false, "Draw edges only")
	fit         = flag.Bool("fit", false, "Center and scale the model into [-1, 1]")
	checker     = flag.Bool("checker", false, "Use a checkerboard when no texture is available")
	view        = flag.Bool("view", false, "Interactive preview in the terminal")
	verbose     = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "lambert - z-buffered software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: lambert [options] <model.obj|model.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nPreview controls (-view):\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  +/-         - Camera distance\n")
		fmt.Fprintf(os.Stderr, "  T           - Toggle texture\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)

	var cfg config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	err := cfg.Resolve(config.Flags{
		Model:       flag.Arg(0),
		Texture:     *texturePath,
		Output:      *outputPath,
		Width:       *size,
		Height:      *height,
		Supersample: *supersample,
		Background:  *bgColor,
		CameraZ:     *cameraZ,
		Light:       *lightDir,
		Color:       *baseColor,
		Fit:         *fit,
		Checker:     *checker,
		Wireframe:   *wireframe,
		Frames:      *frames,
		Workers:     *workers,
	})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		if cfg.Model == "" {
			flag.Usage()
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scene, err := render.LoadScene(ctx, cfg.Model, cfg.Texture)
	if err != nil {
		return err
	}
	if scene.Texture == nil && cfg.Checker {
		scene.Texture = render.NewCheckerTexture(512, 512, 64, render.RGB(220, 220, 220), render.RGB(90, 90, 90))
	}
	if cfg.Fit {
		scene.Mesh.Normalize()
	}

	r, err := render.NewRenderer(render.NewCamera(cfg.CameraZ), render.NewFlatShader(cfg.LightDir(), cfg.BaseColor()))
	if err != nil {
		return err
	}
	r.Workers = cfg.Workers

	if *view {
		return runView(ctx, r, scene, &cfg)
	}

	if cfg.Frames == 1 {
		img, stats, err := renderFrame(ctx, r, scene.Mesh, scene.Texture, &cfg)
		if err != nil {
			return err
		}
		if err := export.WriteFile(cfg.Output, img); err != nil {
			return err
		}
		slog.Info("wrote image", "path", cfg.Output, "stats", stats)
		return nil
	}

	return renderTurntable(ctx, r, scene, &cfg)
}

// renderTurntable spins the mesh a full turn about Y over cfg.Frames frames.
func renderTurntable(ctx context.Context, r *render.Renderer, scene *render.Scene, cfg *config.Config) error {
	bar := progressbar.Default(int64(cfg.Frames), "rendering")
	defer bar.Close()

	mesh := scene.Mesh.Clone()
	for i := range cfg.Frames {
		rot := math3d.RotateY(2 * math.Pi * float64(i) / float64(cfg.Frames))
		for j, v := range scene.Mesh.Vertices {
			mesh.Vertices[j] = rot.MulVec3(v)
		}

		img, stats, err := renderFrame(ctx, r, mesh, scene.Texture, cfg)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		path := export.FrameName(cfg.Output, i)
		if err := export.WriteFile(path, img); err != nil {
			return err
		}
		slog.Debug("wrote frame", "path", path, "stats", stats)
		bar.Add(1)
	}
	return nil
}

// renderFrame renders one image at cfg's size, supersampled and flattened
// onto the background when one is set.
func renderFrame(ctx context.Context, r *render.Renderer, mesh *models.Mesh, tex *render.Texture, cfg *config.Config) (*image.NRGBA, render.Stats, error) {
	buf := render.NewPixelBuffer(cfg.Width*cfg.Supersample, cfg.Height*cfg.Supersample)

	var stats render.Stats
	var err error
	if cfg.Wireframe {
		stats, err = r.RenderWireframe(ctx, mesh, buf, cfg.BaseColor())
	} else {
		stats, err = r.Render(ctx, mesh, tex, buf)
	}
	if err != nil {
		return nil, stats, err
	}

	if bg, ok := cfg.BackgroundColor(); ok {
		buf = buf.Composite(bg)
	}
	return export.Downsample(buf.Image(), cfg.Supersample), stats, nil
}
