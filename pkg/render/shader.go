package render

import (
	"image/color"
	"math"

	"github.com/taigrr/lambert/pkg/math3d"
)

// DefaultLight is the direction light travels in the default scene: straight
// into the screen, away from the camera.
var DefaultLight = math3d.V3(0, 0, -1)

// FlatShader computes one Lambertian intensity per triangle.
type FlatShader struct {
	// LightDir points from the surface toward the light, so a larger dot
	// product with the normal means a brighter face. It must be unit length.
	LightDir math3d.Vec3
	// Base supplies the RGB channels of untextured faces.
	Base color.RGBA
}

// NewFlatShader creates a shader for light travelling along light.
func NewFlatShader(light math3d.Vec3, base color.RGBA) FlatShader {
	return FlatShader{
		LightDir: light.Normalize().Negate(),
		Base:     base,
	}
}

// Intensity returns dot(normalize((t1-t0) x (t2-t0)), LightDir).
// Counter-clockwise triangles facing +z get a positive normal z. A
// zero-area triangle has a zero normal and intensity 0.
func (s FlatShader) Intensity(t0, t1, t2 math3d.Vec3) float64 {
	normal := t1.Sub(t0).Cross(t2.Sub(t0)).Normalize()
	return normal.Dot(s.LightDir)
}

// Shade returns the triangle color: Base RGB with alpha = 255*intensity
// rounded to the nearest integer.
// ok is false when the triangle faces away from the light (intensity <= 0)
// and must not be drawn.
func (s FlatShader) Shade(t0, t1, t2 math3d.Vec3) (c color.RGBA, intensity float64, ok bool) {
	intensity = s.Intensity(t0, t1, t2)
	if !(intensity > 0) {
		return color.RGBA{}, intensity, false
	}
	c = s.Base
	// Intensity can exceed 1 by rounding error; keep the conversion in range.
	c.A = uint8(math.Round(min(255, 255*intensity)))
	return c, intensity, true
}
