package render

import (
	"errors"
	"math"

	"github.com/taigrr/lambert/pkg/math3d"
)

// ErrInvalidCamera is returned for a camera that cannot project anything.
var ErrInvalidCamera = errors.New("invalid camera")

// NearEpsilon is the smallest perspective denominator Project accepts.
// Vertices at or behind the camera plane produce denominators below it.
const NearEpsilon = 1e-6

// Camera is a one-point perspective camera on the z axis looking toward
// the origin. Only Position.Z takes part in the projection.
type Camera struct {
	Position math3d.Vec3
}

// NewCamera creates a camera at distance z from the origin.
func NewCamera(z float64) Camera {
	return Camera{Position: math3d.V3(0, 0, z)}
}

// Validate reports ErrInvalidCamera for a camera sitting on the z=0 plane
// or with a non-finite distance.
func (c Camera) Validate() error {
	z := c.Position.Z
	if z == 0 || math.IsNaN(z) || math.IsInf(z, 0) {
		return ErrInvalidCamera
	}
	return nil
}

// Project applies the perspective divide x,y / (1 - z/cameraZ). Depth is
// passed through unchanged. ok is false when the denominator is at or
// below NearEpsilon (the vertex is on or behind the camera plane); the
// caller must then drop the whole triangle.
func (c Camera) Project(v math3d.Vec3) (p math3d.Vec3, ok bool) {
	d := 1 - v.Z/c.Position.Z
	if !(d > NearEpsilon) {
		return math3d.Vec3{}, false
	}
	return math3d.V3(v.X/d, v.Y/d, v.Z), true
}

// Viewport maps normalized device coordinates onto pixel samples.
type Viewport struct {
	Width  int
	Height int
}

// ToScreen maps x from [-1, 1] to [0, Width] and y to [0, Height]. z is
// kept as is for the depth test.
func (vp Viewport) ToScreen(p math3d.Vec3) math3d.Vec3 {
	return math3d.V3(
		(p.X+1)*float64(vp.Width)/2,
		(p.Y+1)*float64(vp.Height)/2,
		p.Z,
	)
}
