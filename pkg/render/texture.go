package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	_ "github.com/ftrvxmtrx/tga" // Register TGA decoder
	_ "golang.org/x/image/bmp"   // Register BMP decoder
	"golang.org/x/image/draw"
)

// Texture holds a diffuse image as raw RGBA samples. Row 0 is the top of
// the image.
type Texture struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA interleaved, len = Width*Height*4
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// LoadTexture loads a texture from a TGA, PNG, JPEG or BMP file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	Logger().Debug("texture decoded", "path", path, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	return TextureFromImage(img), nil
}

// TextureFromImage copies an image into a texture.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Texture{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    dst.Pix,
	}
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 color.RGBA) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			c := c2
			if (x/checkSize+y/checkSize)%2 == 0 {
				c = c1
			}
			i := 4 * (y*width + x)
			tex.Pix[i], tex.Pix[i+1], tex.Pix[i+2], tex.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return tex
}

// Texel returns the RGB of the k-th texel in row-major order. ok is false
// when k lies outside the texture.
func (t *Texture) Texel(k int) (r, g, b uint8, ok bool) {
	if k < 0 || k >= t.Width*t.Height {
		return 0, 0, 0, false
	}
	i := 4 * k
	return t.Pix[i], t.Pix[i+1], t.Pix[i+2], true
}

// TexelIndex maps a texel-space coordinate with V pointing up to a
// row-major index: u + (Height - v) * Width.
func (t *Texture) TexelIndex(u, v int) int {
	return u + (t.Height-v)*t.Width
}
