// RSM (Resource Model) format parser for 3D models.
package formats

import (
	"errors"
	"fmt"
	"os"
)

// RSM format errors.
var (
	ErrInvalidRSMMagic       = errors.New("invalid RSM magic: expected 'GRSM'")
	ErrUnsupportedRSMVersion = errors.New("unsupported RSM version")
	ErrTruncatedRSMData      = errors.New("truncated RSM data")
	ErrInvalidNodeCount      = errors.New("invalid RSM node count")
	ErrInvalidElementCount   = errors.New("invalid RSM element count")
)

// Sanity limits for counts read from the file.
const (
	maxRSMNodes    = 10000
	maxRSMTextures = 1000
	maxRSMElements = 100000
	maxRSMKeys     = 10000
	maxRSMBoxes    = 1000
)

// RSMVersion represents the RSM file version.
type RSMVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v RSMVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v RSMVersion) AtLeast(major, minor uint8) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// HasVertexColors reports whether texture coordinates carry an RGBA color.
func (v RSMVersion) HasVertexColors() bool {
	return v.AtLeast(1, 2)
}

// RSMShadingType represents the shading mode for rendering.
type RSMShadingType int32

const (
	RSMShadingNone   RSMShadingType = 0
	RSMShadingFlat   RSMShadingType = 1
	RSMShadingSmooth RSMShadingType = 2
)

// String returns a human-readable shading type name.
func (s RSMShadingType) String() string {
	switch s {
	case RSMShadingNone:
		return "None"
	case RSMShadingFlat:
		return "Flat"
	case RSMShadingSmooth:
		return "Smooth"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// RSMTexCoord is a texture coordinate with its vertex color.
type RSMTexCoord struct {
	Color [4]uint8 // RGBA, opaque white before v1.2
	U, V  float32
}

// RSMFace is a triangle referencing a node's vertex and texcoord arrays.
type RSMFace struct {
	VertexIDs   [3]uint16
	TexCoordIDs [3]uint16
	TextureID   uint16
	TwoSide     int32
	SmoothGroup int32 // v1.2+
}

// RSMKeyframe is one animation key. Position and scale keys use the first
// three values; rotation keys hold a quaternion.
type RSMKeyframe struct {
	Frame int32
	Value [4]float32
}

// RSMNode is one mesh node of the model hierarchy.
type RSMNode struct {
	Name       string
	Parent     string
	TextureIDs []int32

	Matrix   [9]float32
	Offset   [3]float32
	Position [3]float32
	RotAngle float32
	RotAxis  [3]float32
	Scale    [3]float32

	Vertices  [][3]float32
	TexCoords []RSMTexCoord
	Faces     []RSMFace

	PosKeys   []RSMKeyframe // v < 1.5
	RotKeys   []RSMKeyframe
	ScaleKeys []RSMKeyframe // v >= 1.5
}

// RSMVolumeBox is a bounding volume.
type RSMVolumeBox struct {
	Size     [3]float32
	Position [3]float32
	Rotation [3]float32
	Flag     int32 // v1.3+
}

// RSM is a parsed resource model.
type RSM struct {
	Version     RSMVersion
	AnimLength  int32
	Shading     RSMShadingType
	Alpha       float32
	Textures    []string
	RootNode    string
	Nodes       []RSMNode
	VolumeBoxes []RSMVolumeBox
}

// ParseRSM parses RSM data from a byte slice.
func ParseRSM(data []byte) (*RSM, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedRSMData
	}
	if string(data[:4]) != "GRSM" {
		return nil, ErrInvalidRSMMagic
	}

	c := newCursor(data[4:])
	rsm := &RSM{Version: RSMVersion{Major: c.uint8(), Minor: c.uint8()}}
	if rsm.Version.Major < 1 || rsm.Version.Major > 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRSMVersion, rsm.Version)
	}

	rsm.AnimLength = c.int32()
	c.read(&rsm.Shading)
	rsm.Alpha = 1.0
	if rsm.Version.AtLeast(1, 4) {
		rsm.Alpha = float32(c.uint8()) / 255.0
	}
	c.skip(16) // reserved

	rsm.Textures = make([]string, c.count(maxRSMTextures, ErrInvalidElementCount))
	for i := range rsm.Textures {
		rsm.Textures[i] = c.fixedString(40)
	}
	rsm.RootNode = c.fixedString(40)

	nodeCount := c.count(maxRSMNodes, ErrInvalidNodeCount)
	if err := rsmError(c.err); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	rsm.Nodes = make([]RSMNode, nodeCount)
	for i := range rsm.Nodes {
		parseRSMNode(c, rsm.Version, &rsm.Nodes[i])
		if err := rsmError(c.err); err != nil {
			return nil, fmt.Errorf("parsing node %d: %w", i, err)
		}
	}

	// Volume boxes are optional trailing data.
	if c.remaining() >= 4 {
		boxCount := c.int32()
		if boxCount > 0 && boxCount < maxRSMBoxes {
			rsm.VolumeBoxes = make([]RSMVolumeBox, boxCount)
			for i := range rsm.VolumeBoxes {
				box := &rsm.VolumeBoxes[i]
				c.read(&box.Size)
				c.read(&box.Position)
				c.read(&box.Rotation)
				if rsm.Version.AtLeast(1, 3) {
					box.Flag = c.int32()
				}
			}
			if err := rsmError(c.err); err != nil {
				return nil, fmt.Errorf("reading volume boxes: %w", err)
			}
		}
	}

	return rsm, nil
}

func parseRSMNode(c *cursor, version RSMVersion, node *RSMNode) {
	node.Name = c.fixedString(40)
	node.Parent = c.fixedString(40)

	node.TextureIDs = make([]int32, c.count(maxRSMTextures, ErrInvalidElementCount))
	c.read(node.TextureIDs)

	c.read(&node.Matrix)
	c.read(&node.Offset)
	c.read(&node.Position)
	c.read(&node.RotAngle)
	c.read(&node.RotAxis)
	c.read(&node.Scale)

	node.Vertices = make([][3]float32, c.count(maxRSMElements, ErrInvalidElementCount))
	c.read(node.Vertices)

	node.TexCoords = make([]RSMTexCoord, c.count(maxRSMElements, ErrInvalidElementCount))
	for i := range node.TexCoords {
		tc := &node.TexCoords[i]
		tc.Color = [4]uint8{255, 255, 255, 255}
		if version.HasVertexColors() {
			c.read(&tc.Color)
		}
		c.read(&tc.U)
		c.read(&tc.V)
	}

	node.Faces = make([]RSMFace, c.count(maxRSMElements, ErrInvalidElementCount))
	for i := range node.Faces {
		face := &node.Faces[i]
		c.read(&face.VertexIDs)
		c.read(&face.TexCoordIDs)
		c.read(&face.TextureID)
		c.skip(2) // padding
		face.TwoSide = c.int32()
		if version.AtLeast(1, 2) {
			face.SmoothGroup = c.int32()
		}
	}

	if !version.AtLeast(1, 5) {
		node.PosKeys = readKeyframes(c, 3)
	}
	node.RotKeys = readKeyframes(c, 4)
	if version.AtLeast(1, 5) {
		node.ScaleKeys = readKeyframes(c, 3)
	}
}

func readKeyframes(c *cursor, width int) []RSMKeyframe {
	n := c.count(maxRSMKeys, ErrInvalidElementCount)
	if n == 0 {
		return nil
	}
	keys := make([]RSMKeyframe, n)
	for i := range keys {
		keys[i].Frame = c.int32()
		c.read(keys[i].Value[:width])
	}
	return keys
}

// rsmError maps short reads onto ErrTruncatedRSMData.
func rsmError(err error) error {
	if err != nil && isShortRead(err) {
		return ErrTruncatedRSMData
	}
	return err
}

// ParseRSMFile parses an RSM file from disk.
func ParseRSMFile(path string) (*RSM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RSM file: %w", err)
	}
	return ParseRSM(data)
}

// TotalVertexCount returns the number of vertices across all nodes.
func (rsm *RSM) TotalVertexCount() int {
	total := 0
	for _, node := range rsm.Nodes {
		total += len(node.Vertices)
	}
	return total
}

// TotalFaceCount returns the number of faces across all nodes.
func (rsm *RSM) TotalFaceCount() int {
	total := 0
	for _, node := range rsm.Nodes {
		total += len(node.Faces)
	}
	return total
}
