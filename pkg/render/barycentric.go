package render

import (
	"math"

	"github.com/taigrr/lambert/pkg/math3d"
)

// degenerateArea is the twice-signed-area below which a triangle is
// treated as having no area.
const degenerateArea = 1e-12

// Degenerate is the weight triple returned for zero-area triangles. Every
// weight is negative so Inside rejects it.
var Degenerate = math3d.V3(-1, -1, -1)

// Barycentric returns weights (u, v, w) with p = u*t0 + v*t1 + w*t2, using
// only the x and y components of the triangle. Zero-area triangles yield
// Degenerate.
func Barycentric(t0, t1, t2 math3d.Vec3, p math3d.Vec2) math3d.Vec3 {
	s := math3d.V3(t2.X-t0.X, t1.X-t0.X, t0.X-p.X).Cross(
		math3d.V3(t2.Y-t0.Y, t1.Y-t0.Y, t0.Y-p.Y))
	if math.Abs(s.Z) < degenerateArea {
		return Degenerate
	}
	return math3d.V3(1-(s.X+s.Y)/s.Z, s.Y/s.Z, s.X/s.Z)
}

// Inside reports whether barycentric weights describe a point in the
// triangle. Edges and vertices count as inside.
func Inside(bc math3d.Vec3) bool {
	return bc.X >= 0 && bc.Y >= 0 && bc.Z >= 0
}
