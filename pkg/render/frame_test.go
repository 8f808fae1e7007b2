package render

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/taigrr/lambert/pkg/math3d"
	"github.com/taigrr/lambert/pkg/models"
)

func createTestRenderer(t testing.TB, base color.RGBA) *Renderer {
	t.Helper()
	r, err := NewRenderer(NewCamera(3), NewFlatShader(DefaultLight, base))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func unitTriangle() *models.Mesh {
	m := models.NewMesh("unit")
	m.Vertices = []math3d.Vec3{
		math3d.V3(-0.5, -0.5, 0),
		math3d.V3(0.5, -0.5, 0),
		math3d.V3(0, 0.5, 0),
	}
	m.Faces = []models.Face{{V: [3]int{0, 1, 2}}}
	return m
}

// randomMesh builds n overlapping triangles at assorted depths.
func randomMesh(n int, seed uint64) *models.Mesh {
	rng := rand.New(rand.NewPCG(seed, seed))
	m := models.NewMesh("random")
	for i := range n {
		z := rng.Float64() - 0.5
		for range 3 {
			m.Vertices = append(m.Vertices, math3d.V3(rng.Float64()*2-1, rng.Float64()*2-1, z))
			m.TexCoords = append(m.TexCoords, math3d.V2(rng.Float64(), rng.Float64()))
		}
		f := models.Face{V: [3]int{3 * i, 3*i + 1, 3*i + 2}, VT: [3]int{3 * i, 3*i + 1, 3*i + 2}, HasVT: true}
		m.Faces = append(m.Faces, f)
	}
	return m
}

func TestNewRendererInvalidCamera(t *testing.T) {
	_, err := NewRenderer(NewCamera(0), NewFlatShader(DefaultLight, RGB(1, 1, 1)))
	if !errors.Is(err, ErrInvalidCamera) {
		t.Errorf("NewRenderer(z=0): err = %v, want ErrInvalidCamera", err)
	}
}

func TestRenderUnitTriangle(t *testing.T) {
	const size = 100
	base := RGB(200, 100, 50)
	r := createTestRenderer(t, base)
	buf := NewPixelBuffer(size, size)
	initial := color.RGBA{1, 2, 3, 4}
	buf.Clear(initial)

	stats, err := r.Render(context.Background(), unitTriangle(), nil, buf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if stats.Drawn != 1 || stats.Culled != 0 || stats.Rejected != 0 {
		t.Errorf("stats = %+v, want one drawn face", stats)
	}

	// Screen-space corners of the triangle.
	tri := ScreenTriangle{math3d.V3(25, 25, 0), math3d.V3(75, 25, 0), math3d.V3(50, 75, 0)}
	want := 0
	for x := range size {
		for y := 1; y <= size; y++ {
			got := buf.At(x, y)
			inBox := x >= 25 && x <= 75 && y >= 25 && y <= 75
			if !inBox {
				if got != initial {
					t.Fatalf("pixel (%d,%d) outside the box = %v, want untouched", x, y, got)
				}
				continue
			}
			if Inside(Barycentric(tri[0], tri[1], tri[2], math3d.V2(float64(x), float64(y)))) {
				want++
				if got != base {
					t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, base)
				}
			} else if got != initial {
				t.Fatalf("pixel (%d,%d) outside the triangle = %v, want untouched", x, y, got)
			}
		}
	}
	if stats.Pixels != want {
		t.Errorf("stats.Pixels = %d, want %d", stats.Pixels, want)
	}
}

func TestRenderReachesTopRow(t *testing.T) {
	const size = 16
	r := createTestRenderer(t, RGB(255, 255, 255))
	mesh := models.NewMesh("tall")
	mesh.Vertices = []math3d.Vec3{
		math3d.V3(-3, -3, 0),
		math3d.V3(3, -3, 0),
		math3d.V3(0, 5, 0),
	}
	mesh.Faces = []models.Face{{V: [3]int{0, 1, 2}}}

	for _, workers := range []int{1, 4} {
		r.Workers = workers
		buf := NewPixelBuffer(size, size)
		stats, err := r.Render(context.Background(), mesh, nil, buf)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if want := size * size; stats.Pixels != want {
			t.Errorf("%d workers: stats.Pixels = %d, want %d", workers, stats.Pixels, want)
		}
		img := buf.Image()
		for x := range size {
			if got := img.NRGBAAt(x, 0); got.A != 255 {
				t.Errorf("%d workers: image row 0 pixel %d = %v, want written", workers, x, got)
			}
		}
	}
}

func TestRenderCulledFace(t *testing.T) {
	r := createTestRenderer(t, RGB(255, 255, 255))
	mesh := unitTriangle()
	mesh.Faces[0].V = [3]int{0, 2, 1}
	buf := NewPixelBuffer(40, 40)
	buf.Clear(RGB(7, 7, 7))
	before := bytes.Clone(buf.Pix)

	stats, err := r.Render(context.Background(), mesh, nil, buf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if stats.Culled != 1 || stats.Drawn != 0 || stats.Pixels != 0 {
		t.Errorf("stats = %+v, want one culled face", stats)
	}
	if !bytes.Equal(before, buf.Pix) {
		t.Error("culled face modified the buffer")
	}
}

func TestRenderRejectsBehindCamera(t *testing.T) {
	r := createTestRenderer(t, RGB(255, 255, 255))
	mesh := unitTriangle()
	mesh.Vertices[2].Z = 5 // past the camera at z=3

	stats, err := r.Render(context.Background(), mesh, nil, NewPixelBuffer(40, 40))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if stats.Rejected != 1 || stats.Pixels != 0 {
		t.Errorf("stats = %+v, want one rejected face", stats)
	}
}

func TestRenderErrors(t *testing.T) {
	r := createTestRenderer(t, RGB(255, 255, 255))

	bad := unitTriangle()
	bad.Faces[0].V[2] = 9
	if _, err := r.Render(context.Background(), bad, nil, NewPixelBuffer(8, 8)); !errors.Is(err, models.ErrIndexOutOfRange) {
		t.Errorf("bad index: err = %v, want ErrIndexOutOfRange", err)
	}

	if _, err := r.Render(context.Background(), unitTriangle(), nil, &PixelBuffer{Width: 4, Height: 4}); !errors.Is(err, ErrBufferSize) {
		t.Errorf("short buffer: err = %v, want ErrBufferSize", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, unitTriangle(), nil, NewPixelBuffer(8, 8)); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: err = %v, want context.Canceled", err)
	}

	if _, err := r.Render(context.Background(), nil, nil, NewPixelBuffer(8, 8)); !errors.Is(err, ErrNoMesh) {
		t.Errorf("nil mesh: err = %v, want ErrNoMesh", err)
	}
	if _, err := r.RenderWireframe(context.Background(), nil, NewPixelBuffer(8, 8), RGB(1, 1, 1)); !errors.Is(err, ErrNoMesh) {
		t.Errorf("wireframe nil mesh: err = %v, want ErrNoMesh", err)
	}
}

func TestRenderTextured(t *testing.T) {
	r := createTestRenderer(t, RGB(255, 255, 255))
	mesh := unitTriangle()
	mesh.TexCoords = []math3d.Vec2{math3d.V2(0.1, 0.1), math3d.V2(0.4, 0.1), math3d.V2(0.2, 0.4)}
	mesh.Faces[0].VT = [3]int{0, 1, 2}
	mesh.Faces[0].HasVT = true

	// The lower-left quarter of the texture is red; v points up, so that
	// is the bottom-left of the image.
	tex := NewTexture(16, 16)
	for y := range 16 {
		for x := range 16 {
			i := 4 * (y*16 + x)
			if x < 8 && y >= 8 {
				tex.Pix[i] = 255
			}
			tex.Pix[i+3] = 255
		}
	}

	buf := NewPixelBuffer(64, 64)
	if _, err := r.Render(context.Background(), mesh, tex, buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := buf.At(32, 28); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("textured pixel = %v, want red with full alpha", got)
	}
}

func TestRenderParallelMatchesSerial(t *testing.T) {
	mesh := randomMesh(200, 42)
	tex := NewCheckerTexture(64, 64, 8, RGB(255, 0, 0), RGB(0, 0, 255))

	serial := createTestRenderer(t, RGB(90, 180, 45))
	want := NewPixelBuffer(96, 80)
	wantStats, err := serial.Render(context.Background(), mesh, tex, want)
	if err != nil {
		t.Fatalf("serial Render: %v", err)
	}

	for _, workers := range []int{2, 3, 7, 200} {
		parallel := createTestRenderer(t, RGB(90, 180, 45))
		parallel.Workers = workers
		got := NewPixelBuffer(96, 80)
		stats, err := parallel.Render(context.Background(), mesh, tex, got)
		if err != nil {
			t.Fatalf("Render with %d workers: %v", workers, err)
		}
		if stats != wantStats {
			t.Errorf("%d workers: stats = %+v, want %+v", workers, stats, wantStats)
		}
		if !bytes.Equal(got.Pix, want.Pix) {
			t.Errorf("%d workers: output differs from serial render", workers)
		}
	}
}

func TestRenderWireframe(t *testing.T) {
	r := createTestRenderer(t, RGB(255, 255, 255))
	buf := NewPixelBuffer(100, 100)
	c := RGB(0, 255, 0)

	stats, err := r.RenderWireframe(context.Background(), unitTriangle(), buf, c)
	if err != nil {
		t.Fatalf("RenderWireframe: %v", err)
	}
	if stats.Drawn != 1 {
		t.Errorf("stats.Drawn = %d, want 1", stats.Drawn)
	}

	// Corners and the bottom edge midpoint lie on the outline.
	for _, p := range [][2]int{{25, 25}, {75, 25}, {50, 75}, {50, 25}} {
		if got := buf.At(p[0], p[1]); got != c {
			t.Errorf("outline pixel %v = %v, want %v", p, got, c)
		}
	}
	if got := buf.At(50, 40); got.A != 0 {
		t.Errorf("interior pixel = %v, want untouched", got)
	}
}

func TestRenderWireframeNearCamera(t *testing.T) {
	r := createTestRenderer(t, RGB(255, 255, 255))
	mesh := unitTriangle()
	// Just in front of the camera plane: projects to about 2e10 pixels.
	mesh.Vertices[2] = math3d.V3(1e3, 1e3, 3*(1-1.5e-6))
	buf := NewPixelBuffer(64, 64)
	c := RGB(0, 255, 0)

	stats, err := r.RenderWireframe(context.Background(), mesh, buf, c)
	if err != nil {
		t.Fatalf("RenderWireframe: %v", err)
	}
	if stats.Drawn != 1 || stats.Rejected != 0 {
		t.Errorf("stats = %+v, want one drawn face", stats)
	}
	if got := buf.At(32, 16); got != c {
		t.Errorf("bottom edge pixel = %v, want %v", got, c)
	}
}

func TestClipLine(t *testing.T) {
	tests := []struct {
		name   string
		in     [4]float64
		want   [4]float64
		wantOK bool
	}{
		{"inside", [4]float64{1, 2, 10, 20}, [4]float64{1, 2, 10, 20}, true},
		{"huge horizontal", [4]float64{-1e12, 5, 1e12, 5}, [4]float64{0, 5, 63, 5}, true},
		{"huge vertical", [4]float64{7, 1e9, 7, -1e9}, [4]float64{7, 64, 7, 0}, true},
		{"left of viewport", [4]float64{-10, -10, -5, 30}, [4]float64{}, false},
		{"parallel outside", [4]float64{100, 0, 100, 10}, [4]float64{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x0, y0, x1, y1, ok := clipLine(tc.in[0], tc.in[1], tc.in[2], tc.in[3], 0, 0, 63, 64)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			got := [4]float64{x0, y0, x1, y1}
			for i := range got {
				if math.Abs(got[i]-tc.want[i]) > 1e-2 {
					t.Errorf("clipped = %v, want %v", got, tc.want)
					break
				}
			}
		})
	}
}

func BenchmarkRender(b *testing.B) {
	mesh := randomMesh(500, 1)
	tex := NewCheckerTexture(64, 64, 8, RGB(255, 0, 0), RGB(0, 0, 255))
	r := createTestRenderer(b, RGB(255, 255, 255))
	buf := NewPixelBuffer(256, 256)

	for b.Loop() {
		r.Render(context.Background(), mesh, tex, buf)
	}
}

func BenchmarkRenderParallel(b *testing.B) {
	mesh := randomMesh(500, 1)
	tex := NewCheckerTexture(64, 64, 8, RGB(255, 0, 0), RGB(0, 0, 255))
	r := createTestRenderer(b, RGB(255, 255, 255))
	r.Workers = 4
	buf := NewPixelBuffer(256, 256)

	for b.Loop() {
		r.Render(context.Background(), mesh, tex, buf)
	}
}
