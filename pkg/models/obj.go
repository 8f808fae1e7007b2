package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/lambert/pkg/math3d"
)

// ErrUnsupportedFormat is returned by Load for unknown model extensions.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Load loads a model file, choosing the loader by extension
// (.obj, .glb or .gltf).
func Load(path string) (*Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return LoadOBJ(path)
	case ".glb", ".gltf":
		return LoadGLB(path)
	default:
		return nil, fmt.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}
}

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ParseOBJ reads OBJ geometry: v, vt and f statements. Faces with more than
// three corners are split into a triangle fan. Normals, groups and materials
// are ignored.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	mesh := NewMesh("untitled")
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			vals, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", lineNo, err)
			}
			mesh.Vertices = append(mesh.Vertices, math3d.V3(vals[0], vals[1], vals[2]))

		case "vt":
			vals, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: texcoord: %w", lineNo, err)
			}
			mesh.TexCoords = append(mesh.TexCoords, math3d.V2(vals[0], vals[1]))

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 corners, got %d", lineNo, len(fields)-1)
			}
			corners := make([]faceCorner, 0, len(fields)-1)
			for _, s := range fields[1:] {
				c, err := parseCorner(s, len(mesh.Vertices), len(mesh.TexCoords))
				if err != nil {
					return nil, fmt.Errorf("line %d: face: %w", lineNo, err)
				}
				corners = append(corners, c)
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Faces = append(mesh.Faces, triangleFrom(corners[0], corners[i], corners[i+1]))
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// faceCorner is one "v/vt/vn" reference, already resolved to 0-based indices.
type faceCorner struct {
	v, vt int
	hasVT bool
}

func triangleFrom(a, b, c faceCorner) Face {
	return Face{
		V:     [3]int{a.v, b.v, c.v},
		VT:    [3]int{a.vt, b.vt, c.vt},
		HasVT: a.hasVT && b.hasVT && c.hasVT,
	}
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". Negative indices are
// relative to the end of the lists read so far.
func parseCorner(s string, nv, nvt int) (faceCorner, error) {
	parts := strings.Split(s, "/")

	v, err := resolveIndex(parts[0], nv)
	if err != nil {
		return faceCorner{}, fmt.Errorf("vertex index %q: %w", s, err)
	}
	c := faceCorner{v: v}

	if len(parts) > 1 && parts[1] != "" {
		vt, err := resolveIndex(parts[1], nvt)
		if err != nil {
			return faceCorner{}, fmt.Errorf("texcoord index %q: %w", s, err)
		}
		c.vt = vt
		c.hasVT = true
	}
	return c, nil
}

func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0:
		return i - 1, nil
	case i < 0:
		return n + i, nil
	default:
		return 0, fmt.Errorf("index 0 is not valid in OBJ")
	}
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	vals := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		vals[i] = f
	}
	return vals, nil
}
