package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/lambert/pkg/math3d"
	"github.com/taigrr/lambert/pkg/models"
)

// ErrNoMesh is returned when a render is asked to draw a nil mesh.
var ErrNoMesh = errors.New("no mesh")

// Renderer draws meshes into pixel buffers with flat Lambertian shading.
type Renderer struct {
	Camera Camera
	Shader FlatShader

	// Workers is the number of row bands rasterized in parallel. Values
	// below 2 rasterize on the calling goroutine.
	Workers int
}

// NewRenderer creates a renderer for the given camera and shader.
func NewRenderer(cam Camera, shader FlatShader) (*Renderer, error) {
	if err := cam.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{
		Camera:  cam,
		Shader:  shader,
		Workers: 1,
	}, nil
}

// Stats counts what happened to the faces of one frame.
type Stats struct {
	Faces    int // faces in the mesh
	Culled   int // facing away from the light
	Rejected int // a vertex on or behind the camera plane
	Drawn    int // handed to the rasterizer
	Pixels   int // pixels written
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("faces", s.Faces),
		slog.Int("culled", s.Culled),
		slog.Int("rejected", s.Rejected),
		slog.Int("drawn", s.Drawn),
		slog.Int("pixels", s.Pixels),
	)
}

// drawCall is one shaded triangle ready for the rasterizer.
type drawCall struct {
	tri      ScreenTriangle
	color    color.RGBA
	textured bool
	diffuse  Diffuse
}

// Render draws mesh into buf with a fresh z-buffer. Faces are drawn in
// mesh order; where two faces have equal depth the earlier one wins. tex
// may be nil, in which case every face takes the shader's base color.
//
// ctx is checked between faces. On cancellation the buffer holds whatever
// was drawn so far.
func (r *Renderer) Render(ctx context.Context, mesh *models.Mesh, tex *Texture, buf *PixelBuffer) (Stats, error) {
	if err := r.Camera.Validate(); err != nil {
		return Stats{}, err
	}
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return Stats{}, ErrBufferSize
	}
	if mesh == nil {
		return Stats{}, ErrNoMesh
	}
	if err := mesh.Validate(); err != nil {
		return Stats{}, fmt.Errorf("render %s: %w", mesh.Name, err)
	}

	rast, err := NewRasterizer(buf, NewZBuffer(buf.Width, buf.Height))
	if err != nil {
		return Stats{}, err
	}

	calls, stats, err := r.prepare(ctx, mesh, tex, Viewport{Width: buf.Width, Height: buf.Height})
	if err != nil {
		return stats, err
	}

	stats.Pixels, err = r.rasterize(ctx, rast, calls)
	if err != nil {
		return stats, err
	}

	Logger().Debug("frame rendered", "mesh", mesh.Name,
		"width", buf.Width, "height", buf.Height, "stats", stats)
	return stats, nil
}

// prepare projects and shades every face, in mesh order.
func (r *Renderer) prepare(ctx context.Context, mesh *models.Mesh, tex *Texture, vp Viewport) ([]drawCall, Stats, error) {
	stats := Stats{Faces: len(mesh.Faces)}
	calls := make([]drawCall, 0, len(mesh.Faces))

	for _, face := range mesh.Faces {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		var ndc [3]math3d.Vec3
		rejected := false
		for j, vi := range face.V {
			p, ok := r.Camera.Project(mesh.Vertices[vi])
			if !ok {
				rejected = true
				break
			}
			ndc[j] = p
		}
		if rejected {
			stats.Rejected++
			continue
		}

		c, _, ok := r.Shader.Shade(ndc[0], ndc[1], ndc[2])
		if !ok {
			stats.Culled++
			continue
		}

		call := drawCall{color: c}
		for j := range ndc {
			call.tri[j] = vp.ToScreen(ndc[j])
		}
		if tex != nil && face.HasVT {
			call.textured = true
			call.diffuse.Texture = tex
			scale := math3d.V2(float64(tex.Width), float64(tex.Height))
			for j, ti := range face.VT {
				call.diffuse.UV[j] = mesh.TexCoords[ti].Mul(scale)
			}
		}
		calls = append(calls, call)
		stats.Drawn++
	}
	return calls, stats, nil
}

// rasterize draws the prepared calls, splitting the buffer into row bands
// when more than one worker is configured. Bands never share a pixel, so
// every pixel sees the faces in the same order as a serial pass.
func (r *Renderer) rasterize(ctx context.Context, rast *Rasterizer, calls []drawCall) (int, error) {
	rows := rast.SampleRows()
	workers := min(r.Workers, rows)
	if workers < 2 {
		return drawAll(ctx, rast, calls)
	}

	bandHeight := (rows + workers - 1) / workers
	pixels := make([]int, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		band := rast.Band(i*bandHeight, (i+1)*bandHeight)
		g.Go(func() error {
			n, err := drawAll(gctx, band, calls)
			pixels[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range pixels {
		total += n
	}
	return total, nil
}

func drawAll(ctx context.Context, rast *Rasterizer, calls []drawCall) (int, error) {
	written := 0
	for i := range calls {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		call := &calls[i]
		var d *Diffuse
		if call.textured {
			d = &call.diffuse
		}
		written += rast.DrawTriangle(call.tri, call.color, d)
	}
	return written, nil
}
