package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"out.png", PNG, false},
		{"OUT.PNG", PNG, false},
		{"frames/head.webp", WebP, false},
		{"out.jpg", "", true},
		{"noext", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, err := FormatFor(tc.path)
			if tc.err {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("FormatFor(%q) err = %v, want ErrUnsupportedFormat", tc.path, err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("FormatFor(%q) = %q, %v; want %q", tc.path, got, err, tc.want)
			}
		})
	}
}

func TestFrameName(t *testing.T) {
	if got := FrameName("out/head.png", 3); got != "out/head_0003.png" {
		t.Errorf("FrameName = %q", got)
	}
	if got := FrameName("head.webp", 120); got != "head_0120.webp" {
		t.Errorf("FrameName = %q", got)
	}
}

func TestWriteFilePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	img := solid(5, 3, color.NRGBA{10, 20, 30, 255})

	if err := WriteFile(path, img); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 5 || b.Dy() != 3 {
		t.Errorf("decoded bounds = %v", b)
	}
	if r, _, _, _ := decoded.At(2, 1).RGBA(); r>>8 != 10 {
		t.Errorf("decoded red = %d, want 10", r>>8)
	}
}

func TestWriteFileWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.webp")
	if err := WriteFile(path, solid(8, 8, color.NRGBA{200, 0, 0, 255})); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Errorf("output is not a WebP container")
	}
}

func TestWriteFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bmp")
	if err := WriteFile(path, solid(1, 1, color.NRGBA{})); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("unsupported format should not create a file")
	}
}

func TestDownsample(t *testing.T) {
	img := solid(40, 20, color.NRGBA{255, 0, 0, 255})

	if got := Downsample(img, 1); got != img {
		t.Error("factor 1 should return the input")
	}

	out := Downsample(img, 4)
	if b := out.Bounds(); b.Dx() != 10 || b.Dy() != 5 {
		t.Fatalf("bounds = %v, want 10x5", b)
	}
	if c := out.NRGBAAt(5, 2); c.R < 250 || c.A != 255 {
		t.Errorf("center = %v, want opaque red", c)
	}
}

func TestDownsampleTransparentEdges(t *testing.T) {
	// Left half opaque white, right half transparent black.
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 8 {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}

	out := Downsample(img, 2)
	for x := range out.Bounds().Dx() {
		c := out.NRGBAAt(x, 4)
		if c.A > 16 && c.R < 240 {
			t.Errorf("pixel %d = %v, dark fringe at the alpha edge", x, c)
		}
	}
}
