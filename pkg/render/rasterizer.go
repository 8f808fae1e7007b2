// Package render provides the z-buffered software rasterizer for lambert.
package render

import (
	"image/color"
	"math"

	"github.com/taigrr/lambert/pkg/math3d"
)

// ScreenTriangle holds three projected points: x and y in pixel samples, z
// the depth compared against the z-buffer.
type ScreenTriangle [3]math3d.Vec3

// Diffuse carries what the rasterizer needs to texture a triangle: the
// texture and the triangle's three texture coordinates already scaled to
// texel space.
type Diffuse struct {
	Texture *Texture
	UV      [3]math3d.Vec2
}

// Rasterizer fills triangles into a pixel buffer, resolving visibility
// with a z-buffer. A Rasterizer is not safe for concurrent use, but
// rasterizers restricted to disjoint row bands may share buffers.
type Rasterizer struct {
	buf   *PixelBuffer
	depth *ZBuffer

	// Sample rows [minY, maxY) this rasterizer may touch. The full range
	// is [0, Height+1).
	minY, maxY int
}

// NewRasterizer creates a rasterizer writing into buf. The z-buffer must
// have the same dimensions.
func NewRasterizer(buf *PixelBuffer, depth *ZBuffer) (*Rasterizer, error) {
	if buf.Width != depth.Width || buf.Height != depth.Height || len(buf.Pix) != buf.Width*buf.Height*4 {
		return nil, ErrBufferSize
	}
	return &Rasterizer{
		buf:   buf,
		depth: depth,
		minY:  0,
		maxY:  buf.Height + 1,
	}, nil
}

// Band returns a rasterizer sharing r's buffers that only touches sample
// rows [minY, maxY).
func (r *Rasterizer) Band(minY, maxY int) *Rasterizer {
	return &Rasterizer{
		buf:   r.buf,
		depth: r.depth,
		minY:  max(minY, 0),
		maxY:  min(maxY, r.buf.Height+1),
	}
}

// Width returns the buffer width.
func (r *Rasterizer) Width() int {
	return r.buf.Width
}

// Height returns the buffer height.
func (r *Rasterizer) Height() int {
	return r.buf.Height
}

// SampleRows returns the number of sample rows a full-frame rasterizer
// covers: y from 0 through Height.
func (r *Rasterizer) SampleRows() int {
	return r.buf.Height + 1
}

// DrawTriangle fills every sample of t that is inside the triangle and
// strictly closer than the z-buffer. c supplies the color; when d is
// non-nil its texel replaces c's RGB per sample while c's alpha is kept.
// It returns the number of pixels written.
func (r *Rasterizer) DrawTriangle(t ScreenTriangle, c color.RGBA, d *Diffuse) int {
	if !finiteTriangle(t) {
		return 0
	}

	// Bounding box, clamped to the viewport. Sample x runs to Width-1
	// (x=Width would alias the next row), sample y to Height (row 0).
	// Clamping before the int conversion keeps huge coordinates in range.
	loX := math.Max(0, min3(t[0].X, t[1].X, t[2].X))
	hiX := math.Min(float64(r.buf.Width-1), max3(t[0].X, t[1].X, t[2].X))
	loY := math.Max(float64(r.minY), min3(t[0].Y, t[1].Y, t[2].Y))
	hiY := math.Min(float64(r.maxY-1), max3(t[0].Y, t[1].Y, t[2].Y))
	if loX > hiX || loY > hiY {
		return 0
	}
	minX, maxX := int(loX), int(hiX)
	minY, maxY := int(loY), int(hiY)

	written := 0
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			bc := Barycentric(t[0], t[1], t[2], math3d.V2(float64(x), float64(y)))
			if !Inside(bc) {
				continue
			}

			z := math3d.V3(t[0].Z, t[1].Z, t[2].Z).Dot(bc)
			if !r.depth.TestAndSet(x, y, z) {
				continue
			}

			px := c
			if d != nil {
				px = d.sample(bc, px)
			}
			if r.buf.PutPixel(x, y, px) {
				written++
			}
		}
	}
	return written
}

// sample replaces the RGB of c with the texel under barycentric weights bc.
// Out-of-range texels leave c unchanged.
func (d *Diffuse) sample(bc math3d.Vec3, c color.RGBA) color.RGBA {
	u := int(math3d.V3(d.UV[0].X, d.UV[1].X, d.UV[2].X).Dot(bc))
	v := int(math3d.V3(d.UV[0].Y, d.UV[1].Y, d.UV[2].Y).Dot(bc))

	r, g, b, ok := d.Texture.Texel(d.Texture.TexelIndex(u, v))
	if !ok {
		return c
	}
	c.R, c.G, c.B = r, g, b
	return c
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
