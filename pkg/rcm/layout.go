package rcm

import (
	"fmt"
	"strings"
)

// VertexFlags declares which components the vertices of one object carry.
type VertexFlags uint16

// Vertex flag bits.
const (
	FlagPosition         VertexFlags = 0x0001
	FlagNormal           VertexFlags = 0x0002
	FlagUV0              VertexFlags = 0x0010
	FlagUV1              VertexFlags = 0x0020
	FlagUV2              VertexFlags = 0x0040
	FlagUV3              VertexFlags = 0x0080
	FlagColor0           VertexFlags = 0x0100
	FlagColor1           VertexFlags = 0x0200
	FlagColor2           VertexFlags = 0x0400
	FlagColor3           VertexFlags = 0x0800
	FlagTangentBitangent VertexFlags = 0x1000
	FlagBones            VertexFlags = 0x2000 // reserved, never encoded
	FlagHalfFloat        VertexFlags = 0x8000 // reserved, never encoded
)

// Channel limits.
const (
	MaxTexCoords = 4
	MaxColors    = 4
)

// Component sizes in floats.
const (
	PositionSize  = 3
	NormalSize    = 3
	TexCoordSize  = 2
	ColorSize     = 4
	TangentSize   = 3
	BitangentSize = 3
)

// Component identifies one vertex attribute. The numeric order of the
// constants is the canonical component order used for offsets and for the
// struct-of-arrays column order.
type Component int

// Components in canonical order.
const (
	Position Component = iota
	Normal
	UV0
	UV1
	UV2
	UV3
	Color0
	Color1
	Color2
	Color3
	Tangent
	Bitangent

	NumComponents = int(Bitangent) + 1
)

type componentInfo struct {
	name string
	flag VertexFlags
	size int
}

// layout is the single table every encoder and decoder walks.
var layout = [NumComponents]componentInfo{
	Position:  {"position", FlagPosition, PositionSize},
	Normal:    {"normal", FlagNormal, NormalSize},
	UV0:       {"uv0", FlagUV0, TexCoordSize},
	UV1:       {"uv1", FlagUV1, TexCoordSize},
	UV2:       {"uv2", FlagUV2, TexCoordSize},
	UV3:       {"uv3", FlagUV3, TexCoordSize},
	Color0:    {"color0", FlagColor0, ColorSize},
	Color1:    {"color1", FlagColor1, ColorSize},
	Color2:    {"color2", FlagColor2, ColorSize},
	Color3:    {"color3", FlagColor3, ColorSize},
	Tangent:   {"tangent", FlagTangentBitangent, TangentSize},
	Bitangent: {"bitangent", FlagTangentBitangent, BitangentSize},
}

// String returns the component name.
func (c Component) String() string {
	if c < 0 || int(c) >= NumComponents {
		return fmt.Sprintf("Component(%d)", int(c))
	}
	return layout[c].name
}

// Flag returns the flag bit that enables c. Tangent and Bitangent share one bit.
func (c Component) Flag() VertexFlags {
	return layout[c].flag
}

// Size returns the number of floats c occupies in a vertex.
func (c Component) Size() int {
	return layout[c].size
}

// TexCoord returns the UV component for channel n (0-3).
func TexCoord(n int) Component {
	return UV0 + Component(n)
}

// ColorChannel returns the color component for channel n (0-3).
func ColorChannel(n int) Component {
	return Color0 + Component(n)
}

// Has reports whether c is enabled.
func (f VertexFlags) Has(c Component) bool {
	return f&layout[c].flag != 0
}

// Components returns the enabled components in canonical order.
func (f VertexFlags) Components() []Component {
	var out []Component
	for c := Position; int(c) < NumComponents; c++ {
		if f.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// TexCoordCount returns the number of enabled UV channels.
func (f VertexFlags) TexCoordCount() int {
	n := 0
	for i := 0; i < MaxTexCoords; i++ {
		if f.Has(TexCoord(i)) {
			n++
		}
	}
	return n
}

// ColorCount returns the number of enabled color channels.
func (f VertexFlags) ColorCount() int {
	n := 0
	for i := 0; i < MaxColors; i++ {
		if f.Has(ColorChannel(i)) {
			n++
		}
	}
	return n
}

// String lists the enabled components, e.g. "position|normal|uv0".
func (f VertexFlags) String() string {
	comps := f.Components()
	if len(comps) == 0 {
		return "none"
	}
	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = c.String()
	}
	return strings.Join(names, "|")
}

// Stride returns the vertex size in floats.
func Stride(flags VertexFlags) int {
	stride := 0
	for c := Position; int(c) < NumComponents; c++ {
		if flags.Has(c) {
			stride += layout[c].size
		}
	}
	return stride
}

// Offset returns the float offset of c within a vertex. For a component that
// is not enabled it is the offset the component would start at.
func Offset(c Component, flags VertexFlags) int {
	offset := 0
	for prev := Position; prev < c; prev++ {
		if flags.Has(prev) {
			offset += layout[prev].size
		}
	}
	return offset
}

// SetTexCoords enables the first n UV channels. n is clamped to MaxTexCoords.
func SetTexCoords(flags VertexFlags, n int) VertexFlags {
	return setChannels(flags, FlagUV0, n, MaxTexCoords)
}

// SetColors enables the first n color channels. n is clamped to MaxColors.
func SetColors(flags VertexFlags, n int) VertexFlags {
	return setChannels(flags, FlagColor0, n, MaxColors)
}

func setChannels(flags, first VertexFlags, n, max int) VertexFlags {
	if n > max {
		n = max
	}
	for i := 0; i < n; i++ {
		flags |= first << i
	}
	return flags
}
