package importer

import (
	"fmt"

	"github.com/Faultbox/rcmconv/pkg/math"
	"github.com/Faultbox/rcmconv/pkg/rcm"
)

// corner is one triangle corner before layout.
type corner struct {
	pos    math.Vec3
	normal math.Vec3
	uv     [2]float32
	color  [4]float32
}

// meshBuilder lays corners out as interleaved vertices. Every corner is its
// own vertex and the index buffer is the identity; welding happens in the
// writer.
type meshBuilder struct {
	name     string
	flags    rcm.VertexFlags
	stride   int
	vertices []float32

	normalAt, uvAt, colorAt int
}

func newMeshBuilder(name string, flags rcm.VertexFlags) *meshBuilder {
	flags |= rcm.FlagPosition
	return &meshBuilder{
		name:     name,
		flags:    flags,
		stride:   rcm.Stride(flags),
		normalAt: rcm.Offset(rcm.Normal, flags),
		uvAt:     rcm.Offset(rcm.UV0, flags),
		colorAt:  rcm.Offset(rcm.Color0, flags),
	}
}

func (b *meshBuilder) count() int {
	return len(b.vertices) / b.stride
}

func (b *meshBuilder) add(c corner) {
	v := make([]float32, b.stride)
	pos, normal := c.pos.Array(), c.normal.Array()
	copy(v, pos[:])
	if b.flags.Has(rcm.Normal) {
		copy(v[b.normalAt:], normal[:])
	}
	if b.flags.Has(rcm.UV0) {
		copy(v[b.uvAt:], c.uv[:])
	}
	if b.flags.Has(rcm.Color0) {
		copy(v[b.colorAt:], c.color[:])
	}
	b.vertices = append(b.vertices, v...)
}

// triangle adds three corners, filling in the face normal when the mesh
// carries normals and the corners have none.
func (b *meshBuilder) triangle(c0, c1, c2 corner, fillNormals bool) {
	if fillNormals && b.flags.Has(rcm.Normal) {
		n, _ := math.FaceNormal(c0.pos, c1.pos, c2.pos)
		c0.normal, c1.normal, c2.normal = n, n, n
	}
	b.add(c0)
	b.add(c1)
	b.add(c2)
}

// mesh returns the finished mesh, or nil if nothing was added.
func (b *meshBuilder) mesh() (*rcm.RawMesh, error) {
	n := b.count()
	if n == 0 {
		return nil, nil
	}
	if n > rcm.MaxVertices {
		return nil, fmt.Errorf("%w: mesh %q has %d vertices, 16-bit indices address %d",
			ErrImportFailure, b.name, n, rcm.MaxVertices)
	}

	indices := make([]uint16, n)
	for i := range indices {
		indices[i] = uint16(i)
	}
	return &rcm.RawMesh{
		Name:        b.name,
		Flags:       b.flags,
		VertexCount: n,
		IndexCount:  n,
		Vertices:    b.vertices,
		Indices:     indices,
	}, nil
}

func flipV(v float32, opts Options) float32 {
	if opts.FlipV {
		return 1 - v
	}
	return v
}
