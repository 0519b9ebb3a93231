package rcm

import (
	"encoding/binary"
	"math"
	"strings"
)

// UniqueVertex is an immutable copy of one vertex. Two values are equal
// exactly when they have the same stride and bit-identical floats, so the
// type can be used directly as a map key.
type UniqueVertex struct {
	stride int
	bits   string // little-endian float32 bits
}

// NewUniqueVertex copies v into a UniqueVertex.
func NewUniqueVertex(v []float32) UniqueVertex {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return UniqueVertex{stride: len(v), bits: string(buf)}
}

// Stride returns the number of floats in the vertex.
func (u UniqueVertex) Stride() int {
	return u.stride
}

// At returns float i.
func (u UniqueVertex) At(i int) float32 {
	b := u.bits[i*4 : i*4+4]
	return math.Float32frombits(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

// Floats returns a fresh copy of the vertex data.
func (u UniqueVertex) Floats() []float32 {
	return u.AppendTo(make([]float32, 0, u.stride))
}

// AppendTo appends the vertex data to dst.
func (u UniqueVertex) AppendTo(dst []float32) []float32 {
	for i := 0; i < u.stride; i++ {
		dst = append(dst, u.At(i))
	}
	return dst
}

// Equal reports whether u and other hold bit-identical data.
func (u UniqueVertex) Equal(other UniqueVertex) bool {
	return u == other
}

// Compare orders vertices by stride, then by their encoded bytes.
func (u UniqueVertex) Compare(other UniqueVertex) int {
	switch {
	case u.stride < other.stride:
		return -1
	case u.stride > other.stride:
		return 1
	}
	return strings.Compare(u.bits, other.bits)
}

// Weld deduplicates vertexCount vertices of stride floats each. The first
// occurrence of a vertex keeps its position in the unique list; indices has
// one entry per input vertex pointing into that list. Vertices merge only if
// every float is bit-identical.
//
// vertexCount must not exceed MaxVertices; the writer checks this before
// welding.
func Weld(vertices []float32, stride, vertexCount int) ([]UniqueVertex, []uint16) {
	unique := make([]UniqueVertex, 0, vertexCount)
	indices := make([]uint16, 0, vertexCount)
	seen := make(map[UniqueVertex]uint16, vertexCount)

	for i := 0; i < vertexCount; i++ {
		v := NewUniqueVertex(vertices[i*stride : (i+1)*stride])
		idx, ok := seen[v]
		if !ok {
			idx = uint16(len(unique))
			unique = append(unique, v)
			seen[v] = idx
		}
		indices = append(indices, idx)
	}
	return unique, indices
}
