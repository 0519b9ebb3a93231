package importer

import (
	"fmt"

	"github.com/Faultbox/rcmconv/pkg/formats"
	"github.com/Faultbox/rcmconv/pkg/math"
	"github.com/Faultbox/rcmconv/pkg/rcm"
)

// RSM decodes Ragnarok Online resource models. Every node with at least one
// usable face becomes a mesh in node order.
type RSM struct{}

// Extensions implements Format.
func (RSM) Extensions() []string { return []string{".rsm"} }

// Decode implements Format.
func (RSM) Decode(name string, data []byte, opts Options) ([]*rcm.RawMesh, error) {
	model, err := formats.ParseRSM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportFailure, err)
	}

	flags := rcm.SetTexCoords(rcm.FlagPosition, 1)
	if opts.GenerateNormals {
		flags |= rcm.FlagNormal
	}
	if model.Version.HasVertexColors() {
		flags = rcm.SetColors(flags, 1)
	}

	var meshes []*rcm.RawMesh
	for i := range model.Nodes {
		node := &model.Nodes[i]
		nodeName := node.Name
		if nodeName == "" {
			nodeName = fmt.Sprintf("%s.%d", name, i)
		}

		m, err := buildRSMNode(node, nodeName, flags, opts)
		if err != nil {
			return nil, err
		}
		if m != nil {
			meshes = append(meshes, m)
		}
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("%w: model has no usable faces", ErrImportFailure)
	}
	return meshes, nil
}

func buildRSMNode(node *formats.RSMNode, name string, flags rcm.VertexFlags, opts Options) (*rcm.RawMesh, error) {
	matrix := math.Mat3(node.Matrix)
	offset := math.V3(node.Offset)

	// The Y flip below mirrors the model; a mirroring node matrix cancels it.
	reverse := matrix.Determinant() >= 0

	b := newMeshBuilder(name, flags)
	for _, face := range node.Faces {
		var corners [3]corner
		valid := true
		for j := 0; j < 3; j++ {
			vid, tid := face.VertexIDs[j], face.TexCoordIDs[j]
			if int(vid) >= len(node.Vertices) || int(tid) >= len(node.TexCoords) {
				valid = false
				break
			}
			pos := matrix.MulVec3(math.V3(node.Vertices[vid])).Add(offset)
			pos.Y = -pos.Y

			tc := node.TexCoords[tid]
			corners[j] = corner{
				pos: pos,
				uv:  [2]float32{tc.U, flipV(tc.V, opts)},
				color: [4]float32{
					float32(tc.Color[0]) / 255,
					float32(tc.Color[1]) / 255,
					float32(tc.Color[2]) / 255,
					float32(tc.Color[3]) / 255,
				},
			}
		}
		if !valid {
			continue
		}
		if reverse {
			corners[0], corners[2] = corners[2], corners[0]
		}
		if _, ok := math.FaceNormal(corners[0].pos, corners[1].pos, corners[2].pos); !ok {
			continue
		}

		b.triangle(corners[0], corners[1], corners[2], true)
		if face.TwoSide != 0 {
			b.triangle(corners[2], corners[1], corners[0], true)
		}
	}
	return b.mesh()
}
