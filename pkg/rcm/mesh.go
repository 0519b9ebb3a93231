package rcm

import "fmt"

// MaxVertices is the largest vertex count 16-bit indices can address.
const MaxVertices = 1 << 16

// RawMesh is an importer's view of one mesh: an interleaved float buffer laid
// out according to Flags plus a 16-bit index buffer.
type RawMesh struct {
	Name        string // diagnostics only, not stored in the file
	Flags       VertexFlags
	VertexCount int
	IndexCount  int
	Vertices    []float32 // VertexCount * Stride(Flags) floats
	Indices     []uint16  // IndexCount entries, each < VertexCount
}

// Stride returns the vertex size in floats.
func (m *RawMesh) Stride() int {
	return Stride(m.Flags)
}

// Vertex returns the floats of vertex i. The slice aliases m.Vertices.
func (m *RawMesh) Vertex(i int) []float32 {
	stride := m.Stride()
	return m.Vertices[i*stride : (i+1)*stride]
}

// Validate checks that buffer lengths and counts agree with the flags and
// fit the format's fixed-width fields.
func (m *RawMesh) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil mesh", ErrInvalidMesh)
	}
	stride := m.Stride()
	if stride > 255 {
		return fmt.Errorf("%w: stride %d does not fit the header", ErrInvalidMesh, stride)
	}
	if m.VertexCount < 0 || m.IndexCount < 0 {
		return fmt.Errorf("%w: negative counts", ErrInvalidMesh)
	}
	if m.VertexCount > MaxVertices {
		return fmt.Errorf("%w: %d vertices, limit %d", ErrTooManyVertices, m.VertexCount, MaxVertices)
	}
	if len(m.Vertices) != m.VertexCount*stride {
		return fmt.Errorf("%w: %q has %d floats, want %d vertices x %d",
			ErrInvalidMesh, m.Name, len(m.Vertices), m.VertexCount, stride)
	}
	if len(m.Indices) != m.IndexCount {
		return fmt.Errorf("%w: %q has %d indices, header count %d",
			ErrInvalidMesh, m.Name, len(m.Indices), m.IndexCount)
	}
	for i, idx := range m.Indices {
		if int(idx) >= m.VertexCount {
			return fmt.Errorf("%w: %q index %d = %d out of range", ErrInvalidMesh, m.Name, i, idx)
		}
	}
	return nil
}
