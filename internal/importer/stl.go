package importer

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	gomath "math"
	"strings"

	"github.com/Faultbox/rcmconv/pkg/math"
	"github.com/Faultbox/rcmconv/pkg/rcm"
)

// STL decodes binary and ASCII stereolithography files into one mesh with
// positions and facet normals.
type STL struct{}

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50 // normal, 3 vertices, attribute word
)

// Extensions implements Format.
func (STL) Extensions() []string { return []string{".stl"} }

type stlFacet struct {
	normal math.Vec3
	v      [3]math.Vec3
}

// Decode implements Format.
func (STL) Decode(name string, data []byte, opts Options) ([]*rcm.RawMesh, error) {
	var (
		facets []stlFacet
		err    error
	)
	if isBinarySTL(data) {
		facets, err = readBinarySTL(data)
	} else {
		facets, err = readASCIISTL(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportFailure, err)
	}
	if len(facets) == 0 {
		return nil, fmt.Errorf("%w: no facets", ErrImportFailure)
	}

	b := newMeshBuilder(name, rcm.FlagPosition|rcm.FlagNormal)
	for _, f := range facets {
		n := f.normal
		fill := n == (math.Vec3{}) && opts.GenerateNormals
		c0 := corner{pos: f.v[0], normal: n}
		c1 := corner{pos: f.v[1], normal: n}
		c2 := corner{pos: f.v[2], normal: n}
		b.triangle(c0, c1, c2, fill)
	}

	m, err := b.mesh()
	if err != nil {
		return nil, err
	}
	return []*rcm.RawMesh{m}, nil
}

// isBinarySTL checks the size implied by the triangle count. Binary files
// may also start with "solid", so the prefix alone proves nothing.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return int64(len(data)) == stlHeaderSize+4+int64(count)*stlTriangleSize
}

func readBinarySTL(data []byte) ([]stlFacet, error) {
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	body := data[stlHeaderSize+4:]

	facets := make([]stlFacet, count)
	for i := range facets {
		tri := body[i*stlTriangleSize:]
		facets[i].normal = stlVec3(tri[0:])
		for j := 0; j < 3; j++ {
			facets[i].v[j] = stlVec3(tri[12+12*j:])
		}
	}
	return facets, nil
}

func stlVec3(b []byte) math.Vec3 {
	return math.Vec3{
		X: gomath.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: gomath.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: gomath.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

func readASCIISTL(data []byte) ([]stlFacet, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")) {
		return nil, fmt.Errorf("not an STL file")
	}

	var (
		facets []stlFacet
		cur    stlFacet
		corner int
		line   int
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("line %d: malformed facet", line)
			}
			v, err := parseFloats(fields[2:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			cur = stlFacet{normal: math.Vec3{X: v[0], Y: v[1], Z: v[2]}}
			corner = 0
		case "vertex":
			if corner >= 3 {
				return nil, fmt.Errorf("line %d: facet has more than 3 vertices", line)
			}
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			cur.v[corner] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
			corner++
		case "endfacet":
			if corner != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices", line, corner)
			}
			facets = append(facets, cur)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return facets, nil
}

