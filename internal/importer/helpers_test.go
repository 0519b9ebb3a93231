package importer

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/Faultbox/rcmconv/pkg/rcm"
)

// rsmTriangle returns an RSM model with one node holding one triangle in
// the XY plane.
func rsmTriangle(major, minor uint8, twoSide bool) []byte {
	var buf bytes.Buffer
	put := func(v any) { binary.Write(&buf, binary.LittleEndian, v) }
	name := func(s string) {
		field := make([]byte, 40)
		copy(field, s)
		buf.Write(field)
	}
	atLeast := func(ma, mi uint8) bool { return major > ma || (major == ma && minor >= mi) }

	buf.WriteString("GRSM")
	buf.WriteByte(major)
	buf.WriteByte(minor)
	put(int32(0)) // anim length
	put(int32(1)) // shading
	if atLeast(1, 4) {
		buf.WriteByte(255)
	}
	buf.Write(make([]byte, 16))
	put(int32(1))
	name("tex.bmp")
	name("tri")
	put(int32(1))

	name("tri")
	name("")
	put(int32(1))
	put(int32(0))
	put([9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1})
	put([3]float32{})
	put([3]float32{})
	put(float32(0))
	put([3]float32{0, 1, 0})
	put([3]float32{1, 1, 1})

	put(int32(3))
	put([3][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	put(int32(3))
	for _, uv := range [][2]float32{{0, 0}, {1, 0}, {0, 0.25}} {
		if atLeast(1, 2) {
			put([4]uint8{255, 0, 0, 255})
		}
		put(uv)
	}
	put(int32(1))
	put([3]uint16{0, 1, 2})
	put([3]uint16{0, 1, 2})
	put(uint16(0))
	put(uint16(0))
	if twoSide {
		put(int32(1))
	} else {
		put(int32(0))
	}
	if atLeast(1, 2) {
		put(int32(0))
	}
	if !atLeast(1, 5) {
		put(int32(0))
	}
	put(int32(0))
	if atLeast(1, 5) {
		put(int32(0))
	}
	return buf.Bytes()
}

// binarySTL encodes facets as normal followed by three vertices.
func binarySTL(header string, facets ...[4][3]float32) []byte {
	var buf bytes.Buffer
	h := make([]byte, 80)
	copy(h, header)
	buf.Write(h)
	binary.Write(&buf, binary.LittleEndian, uint32(len(facets)))
	for _, f := range facets {
		binary.Write(&buf, binary.LittleEndian, f)
		buf.Write([]byte{0, 0})
	}
	return buf.Bytes()
}

func attr(t *testing.T, m *rcm.RawMesh, i int, c rcm.Component) []float32 {
	t.Helper()
	if !m.Flags.Has(c) {
		t.Fatalf("mesh %q has no %s", m.Name, c)
	}
	off := rcm.Offset(c, m.Flags)
	return m.Vertex(i)[off : off+c.Size()]
}

func near(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-6 {
			return false
		}
	}
	return true
}
