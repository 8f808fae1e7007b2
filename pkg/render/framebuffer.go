package render

import (
	"errors"
	"image"
	"image/color"
)

// ErrBufferSize is returned when a buffer does not match the dimensions it
// is paired with.
var ErrBufferSize = errors.New("buffer size mismatch")

// PixelBuffer is the RGBA render target: Width*Height*4 bytes, row-major.
//
// Pixel coordinates have y pointing up. Sample (x, y) lives in row
// Height-y, so y=Height addresses the top row and y=0 falls one row past
// the bottom of the buffer.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA interleaved, len = Width*Height*4
}

// NewPixelBuffer allocates a zeroed (transparent black) pixel buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// WrapPixelBuffer uses caller-owned RGBA bytes as a pixel buffer.
func WrapPixelBuffer(pix []uint8, width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return nil, ErrBufferSize
	}
	return &PixelBuffer{Width: width, Height: height, Pix: pix}, nil
}

// Clear fills the buffer with a solid color.
func (b *PixelBuffer) Clear(c color.RGBA) {
	if len(b.Pix) < 4 {
		return
	}
	b.Pix[0], b.Pix[1], b.Pix[2], b.Pix[3] = c.R, c.G, c.B, c.A
	for i := 4; i < len(b.Pix); i *= 2 {
		copy(b.Pix[i:], b.Pix[:i])
	}
}

// offset returns the byte offset of sample (x, y), or -1 when it falls
// outside the buffer.
func (b *PixelBuffer) offset(x, y int) int {
	if x < 0 || x >= b.Width {
		return -1
	}
	pos := 4 * ((b.Height-y)*b.Width + x)
	if pos < 0 || pos+4 > len(b.Pix) {
		return -1
	}
	return pos
}

// PutPixel writes all four channels of c at sample (x, y). It reports
// false, writing nothing, when the sample maps outside the buffer.
func (b *PixelBuffer) PutPixel(x, y int, c color.RGBA) bool {
	pos := b.offset(x, y)
	if pos < 0 {
		return false
	}
	b.Pix[pos] = c.R
	b.Pix[pos+1] = c.G
	b.Pix[pos+2] = c.B
	b.Pix[pos+3] = c.A
	return true
}

// PutRGB writes the color channels at sample (x, y) and keeps the alpha
// byte already in the buffer.
func (b *PixelBuffer) PutRGB(x, y int, r, g, bl uint8) bool {
	pos := b.offset(x, y)
	if pos < 0 {
		return false
	}
	b.Pix[pos] = r
	b.Pix[pos+1] = g
	b.Pix[pos+2] = bl
	return true
}

// At returns the color at sample (x, y), or transparent black when out of
// range.
func (b *PixelBuffer) At(x, y int) color.RGBA {
	pos := b.offset(x, y)
	if pos < 0 {
		return color.RGBA{}
	}
	return color.RGBA{b.Pix[pos], b.Pix[pos+1], b.Pix[pos+2], b.Pix[pos+3]}
}

// DrawLine draws a line between two samples using Bresenham's algorithm.
func (b *PixelBuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		b.PutPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Image returns an image view sharing the buffer's memory. Row 0 of the
// image is the top of the picture.
func (b *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
