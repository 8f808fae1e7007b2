package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/lambert/pkg/config"
	"github.com/taigrr/lambert/pkg/math3d"
	"github.com/taigrr/lambert/pkg/models"
	"github.com/taigrr/lambert/pkg/render"
)

const previewFPS = 30

// RotationAxis tracks angle and angular velocity for one axis. Velocity
// decays toward zero on a critically damped spring.
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewRotationAxis creates an axis stepped fps times per second.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 2.0, 1.0),
	}
}

// Update advances the angle by one step and damps the velocity.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// previewState is shared between the event goroutine and the frame loop.
type previewState struct {
	mu        sync.Mutex
	pitch     RotationAxis
	yaw       RotationAxis
	cameraZ   float64
	textured  bool
	wireframe bool
}

func (s *previewState) reset(cameraZ float64) {
	s.pitch = NewRotationAxis(previewFPS)
	s.yaw = NewRotationAxis(previewFPS)
	s.cameraZ = cameraZ
}

func runView(ctx context.Context, r *render.Renderer, scene *render.Scene, cfg *config.Config) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := &previewState{
		textured:  scene.Texture != nil,
		wireframe: cfg.Wireframe,
	}
	state.reset(cfg.CameraZ)
	state.yaw.Velocity = 0.05

	// Two pixel rows per terminal row.
	buf := render.NewPixelBuffer(width, height*2)
	resized := make(chan [2]int, 1)

	go func() {
		for ev := range term.Events() {
			state.mu.Lock()
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				select {
				case resized <- [2]int{ev.Width, ev.Height}:
				default:
				}
			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c", "q"):
					cancel()
				case ev.MatchString("w", "up"):
					state.pitch.Velocity -= 0.02
				case ev.MatchString("s", "down"):
					state.pitch.Velocity += 0.02
				case ev.MatchString("a", "left"):
					state.yaw.Velocity -= 0.02
				case ev.MatchString("d", "right"):
					state.yaw.Velocity += 0.02
				case ev.MatchString("space"):
					state.pitch.Velocity += (rand.Float64() - 0.5) * 0.3
					state.yaw.Velocity += (rand.Float64() - 0.5) * 0.3
				case ev.MatchString("+", "="):
					state.cameraZ = math.Max(1.5, state.cameraZ-0.25)
				case ev.MatchString("-", "_"):
					state.cameraZ = math.Min(20, state.cameraZ+0.25)
				case ev.MatchString("t"):
					state.textured = !state.textured && scene.Texture != nil
				case ev.MatchString("x"):
					state.wireframe = !state.wireframe
				case ev.MatchString("r"):
					state.reset(cfg.CameraZ)
				}
			}
			state.mu.Unlock()
		}
	}()

	bg, ok := cfg.BackgroundColor()
	if !ok {
		bg = render.RGB(30, 30, 40)
	}

	base := scene.Mesh
	work := base.Clone()
	ticker := time.NewTicker(time.Second / previewFPS)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case sz := <-resized:
			width, height = sz[0], sz[1]
			term.Erase()
			term.Resize(width, height)
			buf = render.NewPixelBuffer(width, height*2)
		case <-ticker.C:
		}

		if width <= 0 || height <= 0 {
			continue
		}

		state.mu.Lock()
		state.pitch.Update()
		state.yaw.Update()
		rot := math3d.RotateX(state.pitch.Position).Mul(math3d.RotateY(state.yaw.Position))
		r.Camera = render.NewCamera(state.cameraZ)
		textured, wire := state.textured, state.wireframe
		state.mu.Unlock()

		for i, v := range base.Vertices {
			work.Vertices[i] = rot.MulVec3(v)
		}
		if err := drawPreview(ctx, r, work, scene.Texture, buf, textured, wire, cfg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		buf.Draw(term, uv.Rect(0, 0, width, height), bg)
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}
	}
}

// drawPreview renders one frame onto a transparent buffer.
func drawPreview(ctx context.Context, r *render.Renderer, mesh *models.Mesh, tex *render.Texture, buf *render.PixelBuffer, textured, wire bool, cfg *config.Config) error {
	buf.Clear(color.RGBA{})

	var err error
	switch {
	case wire:
		_, err = r.RenderWireframe(ctx, mesh, buf, cfg.BaseColor())
	case textured:
		_, err = r.Render(ctx, mesh, tex, buf)
	default:
		_, err = r.Render(ctx, mesh, nil, buf)
	}
	return err
}
