package rcm

import (
	"bytes"
	"fmt"
	"io"
)

// WriteOptions selects how objects are encoded.
type WriteOptions struct {
	Optimize       bool // weld identical vertices before writing
	StructOfArrays bool // write one column per component instead of interleaved vertices
}

// DefaultWriteOptions matches the converter defaults: welded, interleaved.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Optimize: true}
}

// WriteObject writes one object header followed by its vertex and index
// data.
//
// When opts.Optimize is set the vertex section holds only the welded unique
// vertices, and the index buffer is the mesh's index buffer remapped onto
// them. Without optimization vertices and indices are written as given.
func WriteObject(w io.Writer, mesh *RawMesh, opts WriteOptions) error {
	if err := mesh.Validate(); err != nil {
		return err
	}
	if opts.Optimize {
		return writeOptimized(w, mesh, opts.StructOfArrays)
	}
	return writeVerbatim(w, mesh, opts.StructOfArrays)
}

func writeOptimized(w io.Writer, mesh *RawMesh, soa bool) error {
	unique, remap := Weld(mesh.Vertices, mesh.Stride(), mesh.VertexCount)

	indices := remap
	if mesh.IndexCount > 0 {
		indices = make([]uint16, mesh.IndexCount)
		for i, idx := range mesh.Indices {
			indices[i] = remap[idx]
		}
	}

	header := NewObjectHeader(mesh.Flags, uint32(len(unique)), uint32(len(indices)), soa)
	if _, err := w.Write(header.Bytes()); err != nil {
		return fmt.Errorf("writing object header: %w", err)
	}

	if soa {
		data, err := ToStructOfArrays(unique, mesh.Flags)
		if err != nil {
			return err
		}
		if err := writeColumns(w, data); err != nil {
			return err
		}
	} else {
		flat := make([]float32, 0, len(unique)*mesh.Stride())
		for _, v := range unique {
			flat = v.AppendTo(flat)
		}
		if err := writeFloats(w, flat); err != nil {
			return fmt.Errorf("writing vertex data: %w", err)
		}
	}

	if err := writeIndices(w, indices); err != nil {
		return fmt.Errorf("writing index data: %w", err)
	}
	return nil
}

func writeVerbatim(w io.Writer, mesh *RawMesh, soa bool) error {
	header := NewObjectHeader(mesh.Flags, uint32(mesh.VertexCount), uint32(mesh.IndexCount), soa)
	if _, err := w.Write(header.Bytes()); err != nil {
		return fmt.Errorf("writing object header: %w", err)
	}

	if soa {
		if err := writeColumns(w, ExtractColumns(mesh.Vertices, mesh.Flags, mesh.VertexCount)); err != nil {
			return err
		}
	} else if err := writeFloats(w, mesh.Vertices); err != nil {
		return fmt.Errorf("writing vertex data: %w", err)
	}

	if err := writeIndices(w, mesh.Indices); err != nil {
		return fmt.Errorf("writing index data: %w", err)
	}
	return nil
}

// writeColumns emits the enabled columns in canonical order.
func writeColumns(w io.Writer, data *ObjectData) error {
	for _, c := range data.Flags.Components() {
		if err := writeFloats(w, data.Columns[c]); err != nil {
			return fmt.Errorf("writing %s column: %w", c, err)
		}
	}
	return nil
}

// WriteFile writes a file header followed by every mesh. All meshes are
// validated before the first byte is written.
func WriteFile(w io.Writer, meshes []*RawMesh, opts WriteOptions) error {
	if len(meshes) > MaxObjects {
		return fmt.Errorf("%w: %d meshes, limit %d", ErrTooManyObjects, len(meshes), MaxObjects)
	}
	for i, m := range meshes {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
	}

	if _, err := w.Write(EncodeFileHeader(uint8(len(meshes)))); err != nil {
		return fmt.Errorf("writing file header: %w", err)
	}
	for i, m := range meshes {
		if err := WriteObject(w, m, opts); err != nil {
			return fmt.Errorf("writing object %d: %w", i, err)
		}
	}
	return nil
}

// Encode renders a complete file into memory.
func Encode(meshes []*RawMesh, opts WriteOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteFile(&buf, meshes, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
