package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/rcmconv/pkg/math"
	"github.com/Faultbox/rcmconv/pkg/rcm"
)

// OBJ decodes Wavefront OBJ text. Each "o" or "g" statement that is
// followed by faces becomes its own mesh.
type OBJ struct{}

// Extensions implements Format.
func (OBJ) Extensions() []string { return []string{".obj"} }

// objRef is one face corner: 0-based indices, -1 when absent.
type objRef struct {
	pos, uv, normal int
}

type objGroup struct {
	name  string
	faces [][]objRef
}

type objParser struct {
	base      string
	positions []math.Vec3
	uvs       [][2]float32
	normals   []math.Vec3
	groups    []*objGroup
	line      int
}

// Decode implements Format.
func (OBJ) Decode(name string, data []byte, opts Options) ([]*rcm.RawMesh, error) {
	p := &objParser{base: name, groups: []*objGroup{{name: name}}}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrImportFailure, p.line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportFailure, err)
	}

	var meshes []*rcm.RawMesh
	for _, g := range p.groups {
		if len(g.faces) == 0 {
			continue
		}
		m, err := p.build(g, opts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrImportFailure)
	}
	return meshes, nil
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, [2]float32{v[0], v[1]})
	case "o", "g":
		name := strings.Join(fields[1:], " ")
		cur := p.groups[len(p.groups)-1]
		if len(cur.faces) == 0 {
			if name != "" {
				cur.name = name
			}
			return nil
		}
		if name == "" {
			name = fmt.Sprintf("%s.%d", p.base, len(p.groups))
		}
		p.groups = append(p.groups, &objGroup{name: name})
	case "f":
		if len(fields) < 4 {
			return fmt.Errorf("face has %d corners, need at least 3", len(fields)-1)
		}
		face := make([]objRef, 0, len(fields)-1)
		for _, f := range fields[1:] {
			ref, err := p.parseRef(f)
			if err != nil {
				return err
			}
			face = append(face, ref)
		}
		cur := p.groups[len(p.groups)-1]
		cur.faces = append(cur.faces, face)
	}
	// mtllib, usemtl, s, l and p carry nothing the container stores.
	return nil
}

// parseRef parses "v", "v/vt", "v//vn" or "v/vt/vn".
func (p *objParser) parseRef(s string) (objRef, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return objRef{}, fmt.Errorf("malformed face corner %q", s)
	}

	ref := objRef{pos: -1, uv: -1, normal: -1}
	var err error
	if ref.pos, err = resolveIndex(parts[0], len(p.positions)); err != nil {
		return objRef{}, err
	}
	if ref.pos < 0 {
		return objRef{}, fmt.Errorf("face corner %q has no position", s)
	}
	if len(parts) > 1 {
		if ref.uv, err = resolveIndex(parts[1], len(p.uvs)); err != nil {
			return objRef{}, err
		}
	}
	if len(parts) > 2 {
		if ref.normal, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return objRef{}, err
		}
	}
	return ref, nil
}

// resolveIndex converts a 1-based or negative relative OBJ index. An empty
// field yields -1.
func resolveIndex(s string, n int) (int, error) {
	if s == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad index %q", s)
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return 0, fmt.Errorf("index %d out of range (have %d)", i, n)
	}
}

func (p *objParser) build(g *objGroup, opts Options) (*rcm.RawMesh, error) {
	var hasUV, hasNormal bool
	for _, face := range g.faces {
		for _, ref := range face {
			hasUV = hasUV || ref.uv >= 0
			hasNormal = hasNormal || ref.normal >= 0
		}
	}

	flags := rcm.FlagPosition
	if hasNormal || opts.GenerateNormals {
		flags |= rcm.FlagNormal
	}
	if hasUV {
		flags = rcm.SetTexCoords(flags, 1)
	}

	b := newMeshBuilder(g.name, flags)
	for _, face := range g.faces {
		for i := 1; i+1 < len(face); i++ {
			c0, fill0 := p.corner(face[0], opts)
			c1, fill1 := p.corner(face[i], opts)
			c2, fill2 := p.corner(face[i+1], opts)
			b.triangle(c0, c1, c2, fill0 || fill1 || fill2)
		}
	}
	return b.mesh()
}

// corner resolves ref; missing reports whether the normal is absent.
func (p *objParser) corner(ref objRef, opts Options) (c corner, missing bool) {
	c.pos = p.positions[ref.pos]
	if ref.uv >= 0 {
		uv := p.uvs[ref.uv]
		c.uv = [2]float32{uv[0], flipV(uv[1], opts)}
	}
	if ref.normal >= 0 {
		c.normal = p.normals[ref.normal]
	} else {
		missing = true
	}
	return c, missing
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range out {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}
