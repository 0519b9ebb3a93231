package rcm

import (
	"fmt"
	"math"
)

// VerifyObject checks that obj reproduces mesh: every position of the
// mesh's index stream must resolve to a bit-identical vertex. It accepts
// the output of any WriteOptions. A mesh with no indices is compared
// vertex by vertex.
func VerifyObject(mesh *RawMesh, obj *Object) error {
	if obj.Header.Flags != mesh.Flags {
		return fmt.Errorf("%w: flags %s, want %s", ErrMismatch, obj.Header.Flags, mesh.Flags)
	}
	if obj.Header.BoneCount != 0 {
		return fmt.Errorf("%w: bone count %d", ErrMismatch, obj.Header.BoneCount)
	}

	refs := mesh.Indices
	if mesh.IndexCount == 0 {
		switch len(obj.Indices) {
		case 0:
			// Verbatim copy of an unindexed mesh.
			if int(obj.Header.VertexCount) != mesh.VertexCount {
				return fmt.Errorf("%w: %d vertices, want %d", ErrMismatch, obj.Header.VertexCount, mesh.VertexCount)
			}
			for i := 0; i < mesh.VertexCount; i++ {
				if !sameBits(obj.Vertex(i), mesh.Vertex(i)) {
					return fmt.Errorf("%w: vertex %d differs", ErrMismatch, i)
				}
			}
			return nil
		default:
			// Welded: the stored indices are the weld remap.
			refs = make([]uint16, mesh.VertexCount)
			for i := range refs {
				refs[i] = uint16(i)
			}
		}
	}

	if len(obj.Indices) != len(refs) {
		return fmt.Errorf("%w: %d indices, want %d", ErrMismatch, len(obj.Indices), len(refs))
	}
	for k, ref := range refs {
		idx := int(obj.Indices[k])
		if idx >= int(obj.Header.VertexCount) {
			return fmt.Errorf("%w: index %d = %d out of range", ErrMismatch, k, idx)
		}
		if !sameBits(obj.Vertex(idx), mesh.Vertex(int(ref))) {
			return fmt.Errorf("%w: index %d resolves to a different vertex", ErrMismatch, k)
		}
	}
	return nil
}

// VerifyFile runs VerifyObject over every mesh and its decoded object.
func VerifyFile(meshes []*RawMesh, f *File) error {
	if len(f.Objects) != len(meshes) {
		return fmt.Errorf("%w: %d objects, want %d", ErrMismatch, len(f.Objects), len(meshes))
	}
	for i, m := range meshes {
		if err := VerifyObject(m, f.Objects[i]); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}

func sameBits(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
			return false
		}
	}
	return true
}
