package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/rcmconv/pkg/rcm"
)

const objQuad = `# unit quad
mtllib quad.mtl
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl default
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestOBJ_Quad(t *testing.T) {
	meshes, err := OBJ{}.Decode("quad", []byte(objQuad), Options{FlipV: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(meshes))
	}

	m := meshes[0]
	if m.Name != "quad" {
		t.Errorf("Name = %q", m.Name)
	}
	if want := rcm.FlagPosition | rcm.FlagNormal | rcm.FlagUV0; m.Flags != want {
		t.Errorf("Flags = %s, want %s", m.Flags, want)
	}
	// Fan triangulation: (1,2,3) and (1,3,4).
	if m.VertexCount != 6 || m.IndexCount != 6 {
		t.Fatalf("counts = %d/%d, want 6/6", m.VertexCount, m.IndexCount)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	wantPos := [][]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	for i, want := range wantPos {
		if got := attr(t, m, i, rcm.Position); !near(got, want) {
			t.Errorf("position %d = %v, want %v", i, got, want)
		}
	}
	if got := attr(t, m, 0, rcm.UV0); !near(got, []float32{0, 1}) {
		t.Errorf("uv 0 = %v, want V flipped to 1", got)
	}
	if got := attr(t, m, 2, rcm.Normal); !near(got, []float32{0, 0, 1}) {
		t.Errorf("normal = %v", got)
	}

	// Welding the corners recovers the 4 unique vertices.
	unique, _ := rcm.Weld(m.Vertices, m.Stride(), m.VertexCount)
	if len(unique) != 4 {
		t.Errorf("welded to %d vertices, want 4", len(unique))
	}
}

func TestOBJ_NormalsAndTexCoords(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

	tests := []struct {
		name  string
		src   string
		opts  Options
		flags rcm.VertexFlags
	}{
		{"positions only", src, Options{}, rcm.FlagPosition},
		{"generated normals", src, Options{GenerateNormals: true}, rcm.FlagPosition | rcm.FlagNormal},
		{"uv without normal", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/1 2/1 3/1\n", Options{}, rcm.FlagPosition | rcm.FlagUV0},
		{"normal without uv", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\n", Options{}, rcm.FlagPosition | rcm.FlagNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meshes, err := OBJ{}.Decode("tri", []byte(tt.src), tt.opts)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			m := meshes[0]
			if m.Flags != tt.flags {
				t.Errorf("Flags = %s, want %s", m.Flags, tt.flags)
			}
			if m.Flags.Has(rcm.Normal) {
				if got := attr(t, m, 1, rcm.Normal); !near(got, []float32{0, 0, 1}) {
					t.Errorf("normal = %v, want +Z", got)
				}
			}
		})
	}
}

func TestOBJ_NegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 2 0 0\nv 0 2 0\nf -3 -2 -1\n"
	meshes, err := OBJ{}.Decode("neg", []byte(src), Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := attr(t, meshes[0], 2, rcm.Position); !near(got, []float32{0, 2, 0}) {
		t.Errorf("position 2 = %v", got)
	}
}

func TestOBJ_Groups(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
g first
f 1 2 3
g
f 1 2 4
o third
f 2 3 4
`
	meshes, err := OBJ{}.Decode("model", []byte(src), Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var names []string
	for _, m := range meshes {
		names = append(names, m.Name)
	}
	if got := strings.Join(names, ","); got != "first,model.1,third" {
		t.Errorf("mesh names = %s", got)
	}
}

func TestOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no faces", "v 0 0 0\nv 1 0 0\nv 0 1 0\n"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"bad number", "v 0 zero 0\n"},
		{"bad index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 two 3\n"},
		{"missing uv", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OBJ{}.Decode("bad", []byte(tt.src), Options{})
			if !errors.Is(err, ErrImportFailure) {
				t.Errorf("got %v, want ErrImportFailure", err)
			}
		})
	}
}

func TestOBJ_TooManyVertices(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("v 0 0 0\nv 1 0 0\nv 0 1 0\n")
	// 21846 triangles make 65538 corners.
	for i := 0; i < 21846; i++ {
		sb.WriteString("f 1 2 3\n")
	}

	_, err := OBJ{}.Decode("big", []byte(sb.String()), Options{})
	if !errors.Is(err, ErrImportFailure) || !strings.Contains(err.Error(), "big") {
		t.Errorf("got %v, want ErrImportFailure naming the mesh", err)
	}
}
