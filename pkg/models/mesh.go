// Package models provides mesh loading and representation for lambert.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/lambert/pkg/math3d"
)

// ErrIndexOutOfRange is returned by Validate when a face refers to a vertex
// or texture coordinate the mesh does not have.
var ErrIndexOutOfRange = errors.New("face index out of range")

// Mesh holds model-space geometry: vertex positions, texture coordinates
// and triangle faces indexing into both.
type Mesh struct {
	Name      string
	Vertices  []math3d.Vec3 // Model space, conventionally within [-1, 1]
	TexCoords []math3d.Vec2 // Normalized UV space, V=0 at the bottom
	Faces     []Face

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is a triangle. V indexes Mesh.Vertices; VT indexes Mesh.TexCoords
// and is only meaningful when HasVT is set.
type Face struct {
	V     [3]int
	VT    [3]int
	HasVT bool
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Vertices:  make([]math3d.Vec3, 0),
		TexCoords: make([]math3d.Vec2, 0),
		Faces:     make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0]
	m.BoundsMax = m.Vertices[0]

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Textured reports whether any face carries texture coordinates.
func (m *Mesh) Textured() bool {
	for _, f := range m.Faces {
		if f.HasVT {
			return true
		}
	}
	return false
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i] = mat.MulVec3(m.Vertices[i])
	}
	m.CalculateBounds()
}

// Normalize centers the mesh on the origin and scales it uniformly so its
// largest extent spans [-1, 1].
func (m *Mesh) Normalize() {
	m.CalculateBounds()
	size := m.Size()
	maxDim := max(size.X, size.Y, size.Z)
	if maxDim <= 0 {
		return
	}
	scale := 2.0 / maxDim
	m.Transform(math3d.ScaleUniform(scale).Mul(math3d.Translate(m.Center().Negate())))
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]math3d.Vec3, len(m.Vertices)),
		TexCoords: make([]math3d.Vec2, len(m.TexCoords)),
		Faces:     make([]Face, len(m.Faces)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.TexCoords, m.TexCoords)
	copy(clone.Faces, m.Faces)
	return clone
}

// Validate checks every face index against the vertex and texture
// coordinate tables.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		for _, vi := range f.V {
			if vi < 0 || vi >= len(m.Vertices) {
				return fmt.Errorf("face %d: vertex %d of %d: %w", i, vi, len(m.Vertices), ErrIndexOutOfRange)
			}
		}
		if !f.HasVT {
			continue
		}
		for _, ti := range f.VT {
			if ti < 0 || ti >= len(m.TexCoords) {
				return fmt.Errorf("face %d: texcoord %d of %d: %w", i, ti, len(m.TexCoords), ErrIndexOutOfRange)
			}
		}
	}
	return nil
}
