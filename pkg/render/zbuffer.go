package render

import "math"

// ZBuffer holds one depth value per pixel. Samples are addressed like
// PixelBuffer: sample (x, y) lives in row Height-y, so y runs from 1 to
// Height and y=0 is outside. Larger values are closer to the camera.
type ZBuffer struct {
	Width  int
	Height int
	Depth  []float64
}

// NewZBuffer allocates a depth buffer initialized to negative infinity.
func NewZBuffer(width, height int) *ZBuffer {
	z := &ZBuffer{
		Width:  width,
		Height: height,
		Depth:  make([]float64, width*height),
	}
	z.Reset()
	return z
}

// Reset sets every depth back to negative infinity.
func (z *ZBuffer) Reset() {
	// Use copy-doubling for faster clearing
	n := len(z.Depth)
	if n == 0 {
		return
	}
	z.Depth[0] = math.Inf(-1)
	for i := 1; i < n; i *= 2 {
		copy(z.Depth[i:], z.Depth[:i])
	}
}

// index returns the slot of sample (x, y), or -1 outside the buffer.
func (z *ZBuffer) index(x, y int) int {
	row := z.Height - y
	if x < 0 || x >= z.Width || row < 0 || row >= z.Height {
		return -1
	}
	return x + row*z.Width
}

// At returns the stored depth at sample (x, y), or negative infinity
// outside the buffer.
func (z *ZBuffer) At(x, y int) float64 {
	i := z.index(x, y)
	if i < 0 {
		return math.Inf(-1)
	}
	return z.Depth[i]
}

// TestAndSet stores depth d at sample (x, y) if it is strictly greater than
// the stored value and reports whether it did. Ties keep the existing value.
func (z *ZBuffer) TestAndSet(x, y int, d float64) bool {
	i := z.index(x, y)
	if i < 0 {
		return false
	}
	if z.Depth[i] < d {
		z.Depth[i] = d
		return true
	}
	return false
}
