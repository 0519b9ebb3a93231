package main

import (
	"fmt"
	"io"

	"github.com/Faultbox/rcmconv/pkg/rcm"
)

const infoWidth = 20

// infoRows are the component rows of the info table. Tangent and bitangent
// share one flag, so they share one row.
var infoRows = []struct {
	label string
	c     rcm.Component
}{
	{"position", rcm.Position},
	{"normal", rcm.Normal},
	{"uv0", rcm.UV0},
	{"uv1", rcm.UV1},
	{"uv2", rcm.UV2},
	{"uv3", rcm.UV3},
	{"color0", rcm.Color0},
	{"color1", rcm.Color1},
	{"color2", rcm.Color2},
	{"color3", rcm.Color3},
	{"tangent & bitangent", rcm.Tangent},
}

// printInfo writes the file header and every object header of data.
func printInfo(w io.Writer, name string, data []byte) error {
	fh, err := rcm.DecodeFileHeader(data)
	if err != nil {
		return err
	}
	spans, err := rcm.IndexObjects(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "file: %s\n", name)
	fmt.Fprintf(w, "  %-*s: %s\n", infoWidth, "file version", fh.Version)
	fmt.Fprintf(w, "  %-*s: %d\n", infoWidth, "object count", fh.ObjectCount)

	for _, s := range spans {
		h := s.Header
		fmt.Fprintf(w, "\n  object %d\n", s.Index)
		fmt.Fprintf(w, "  %-*s: %s\n", infoWidth, "type", h.Type)
		fmt.Fprintf(w, "  %-*s: %d\n", infoWidth, "vertex size", h.VertexSize)
		fmt.Fprintf(w, "  %-*s: %d\n", infoWidth, "vertex count", h.VertexCount)
		fmt.Fprintf(w, "  %-*s: %d\n", infoWidth, "index count", h.IndexCount)
		fmt.Fprintf(w, "  %-*s: %d bytes\n", infoWidth, "size", s.Length)
		for _, row := range infoRows {
			fmt.Fprintf(w, "    %-*s: %s\n", infoWidth-2, row.label, yesNo(h.Flags.Has(row.c)))
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
