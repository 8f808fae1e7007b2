package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw writes the pixel buffer to the screen as half-block cells, two
// image rows per terminal row. Image rows are taken top-down. Pixels are
// composited over bg using their alpha, so flat shading stays visible.
func (b *PixelBuffer) Draw(scr uv.Screen, area uv.Rectangle, bg color.RGBA) {
	img := b.Image()
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= b.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= b.Width {
				break
			}

			top := over(img.NRGBAAt(x, topY), bg)
			bot := bg
			if botY < b.Height {
				bot = over(img.NRGBAAt(x, botY), bg)
			}

			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: top,
					Bg: bot,
				},
			})
		}
	}
}

// over composites a straight-alpha pixel onto an opaque background.
func over(c color.NRGBA, bg color.RGBA) color.RGBA {
	a := uint32(c.A)
	mix := func(fg, bg uint8) uint8 {
		return uint8((uint32(fg)*a + uint32(bg)*(255-a)) / 255)
	}
	return color.RGBA{mix(c.R, bg.R), mix(c.G, bg.G), mix(c.B, bg.B), 255}
}

// Composite returns a copy of the buffer with every pixel flattened onto
// bg, ready for formats or displays without alpha.
func (b *PixelBuffer) Composite(bg color.RGBA) *PixelBuffer {
	out := NewPixelBuffer(b.Width, b.Height)
	for i := 0; i+3 < len(b.Pix); i += 4 {
		c := over(color.NRGBA{b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]}, bg)
		out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return out
}

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}
