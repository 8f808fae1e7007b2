package render

import (
	"context"
	"fmt"
	"image/color"

	"github.com/taigrr/lambert/pkg/math3d"
	"github.com/taigrr/lambert/pkg/models"
)

// RenderWireframe draws the three edges of every face as Bresenham lines.
// There is no depth test and no lighting; faces with a vertex on or behind
// the camera plane are skipped. Stats.Pixels is left at zero.
func (r *Renderer) RenderWireframe(ctx context.Context, mesh *models.Mesh, buf *PixelBuffer, c color.RGBA) (Stats, error) {
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
		return Stats{}, fmt.Errorf("wireframe %s: %w", mesh.Name, err)
	}

	vp := Viewport{Width: buf.Width, Height: buf.Height}
	// Sample rows run 0..Height; row 0 maps past the buffer and is dropped.
	xmax, ymax := float64(buf.Width-1), float64(buf.Height)
	stats := Stats{Faces: len(mesh.Faces)}

	for _, face := range mesh.Faces {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		var pts [3]math3d.Vec3
		ok := true
		for j, vi := range face.V {
			var p math3d.Vec3
			if p, ok = r.Camera.Project(mesh.Vertices[vi]); !ok {
				break
			}
			pts[j] = vp.ToScreen(p)
		}
		if !ok || !finiteTriangle(pts) {
			stats.Rejected++
			continue
		}

		for j := range 3 {
			a, b := pts[j], pts[(j+1)%3]
			x0, y0, x1, y1, visible := clipLine(a.X, a.Y, b.X, b.Y, 0, 0, xmax, ymax)
			if !visible {
				continue
			}
			buf.DrawLine(int(x0), int(y0), int(x1), int(y1), c)
		}
		stats.Drawn++
	}

	Logger().Debug("wireframe rendered", "mesh", mesh.Name, "stats", stats)
	return stats, nil
}

// clipLine clips the segment (x0,y0)-(x1,y1) to the rectangle
// [xmin,xmax]x[ymin,ymax] with the Liang-Barsky method. ok is false when
// no part of the segment lies inside.
func clipLine(x0, y0, x1, y1, xmin, ymin, xmax, ymax float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0 - xmin},
		{dx, xmax - x0},
		{-dy, y0 - ymin},
		{dy, ymax - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func finiteTriangle(t [3]math3d.Vec3) bool {
	for _, p := range t {
		if !finite(p.X) || !finite(p.Y) {
			return false
		}
	}
	return true
}
