package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/lambert/pkg/config"
	"github.com/taigrr/lambert/pkg/export"
	"github.com/taigrr/lambert/pkg/math3d"
	"github.com/taigrr/lambert/pkg/models"
	"github.com/taigrr/lambert/pkg/render"
)

func testScene() *render.Scene {
	m := models.NewMesh("tri")
	m.Vertices = []math3d.Vec3{
		math3d.V3(-0.5, -0.5, 0),
		math3d.V3(0.5, -0.5, 0),
		math3d.V3(0, 0.5, 0),
	}
	m.Faces = []models.Face{{V: [3]int{0, 1, 2}}}
	return &render.Scene{Mesh: m}
}

func testConfig(t *testing.T, f config.Flags) *config.Config {
	t.Helper()
	f.Model = "tri.obj"
	var cfg config.Config
	if err := cfg.Resolve(f); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return &cfg
}

func testRenderer(t *testing.T, cfg *config.Config) *render.Renderer {
	t.Helper()
	r, err := render.NewRenderer(render.NewCamera(cfg.CameraZ), render.NewFlatShader(cfg.LightDir(), cfg.BaseColor()))
	if err != nil {
		t.Fatal(err)
	}
	r.Workers = cfg.Workers
	return r
}

func TestRenderFrameSupersampled(t *testing.T) {
	cfg := testConfig(t, config.Flags{Width: 32, Height: 24, Supersample: 2, Background: "0,0,255"})

	img, stats, err := renderFrame(context.Background(), testRenderer(t, cfg), testScene().Mesh, nil, cfg)
	if err != nil {
		t.Fatalf("renderFrame: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("bounds = %v, want 32x24", b)
	}
	if stats.Drawn != 1 {
		t.Errorf("stats.Drawn = %d, want 1", stats.Drawn)
	}

	// Corners show the background, the middle the lit white triangle.
	if c := img.NRGBAAt(0, 0); c.B < 250 || c.R > 5 {
		t.Errorf("corner = %v, want background blue", c)
	}
	if c := img.NRGBAAt(16, 13); c.R < 250 || c.A != 255 {
		t.Errorf("center = %v, want opaque white", c)
	}
}

func TestRenderFrameWireframe(t *testing.T) {
	cfg := testConfig(t, config.Flags{Width: 40, Wireframe: true})

	img, stats, err := renderFrame(context.Background(), testRenderer(t, cfg), testScene().Mesh, nil, cfg)
	if err != nil {
		t.Fatalf("renderFrame: %v", err)
	}
	if stats.Drawn != 1 || stats.Pixels != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if c := img.NRGBAAt(20, 20); c.A != 0 {
		t.Errorf("wireframe interior = %v, want transparent", c)
	}
}

func TestRenderTurntable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "spin.png")
	cfg := testConfig(t, config.Flags{Width: 16, Frames: 3, Output: out})

	if err := renderTurntable(context.Background(), testRenderer(t, cfg), testScene(), cfg); err != nil {
		t.Fatalf("renderTurntable: %v", err)
	}
	for i := range 3 {
		if _, err := os.Stat(export.FrameName(out, i)); err != nil {
			t.Errorf("frame %d: %v", i, err)
		}
	}
}
