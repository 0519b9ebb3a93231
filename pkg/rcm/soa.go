package rcm

import "fmt"

// ObjectData holds one float column per enabled component. Columns of
// disabled components are nil.
type ObjectData struct {
	Flags       VertexFlags
	VertexCount int
	Columns     [NumComponents][]float32
}

// Column returns the column for c, or nil if c is not enabled.
func (d *ObjectData) Column(c Component) []float32 {
	return d.Columns[c]
}

// Vertex gathers vertex i back into interleaved form.
func (d *ObjectData) Vertex(i int) []float32 {
	out := make([]float32, 0, Stride(d.Flags))
	for _, c := range d.Flags.Components() {
		size := c.Size()
		out = append(out, d.Columns[c][i*size:(i+1)*size]...)
	}
	return out
}

// Interleave converts the columns back to an array-of-structs buffer.
func (d *ObjectData) Interleave() []float32 {
	stride := Stride(d.Flags)
	out := make([]float32, d.VertexCount*stride)
	comps := d.Flags.Components()
	for i := 0; i < d.VertexCount; i++ {
		pos := i * stride
		for _, c := range comps {
			size := c.Size()
			pos += copy(out[pos:pos+size], d.Columns[c][i*size:(i+1)*size])
		}
	}
	return out
}

// ToStructOfArrays splits welded vertices into per-component columns. Each
// vertex is scanned once in canonical order; a vertex whose stride does not
// match the flags is rejected.
func ToStructOfArrays(vertices []UniqueVertex, flags VertexFlags) (*ObjectData, error) {
	stride := Stride(flags)
	comps := flags.Components()

	data := &ObjectData{Flags: flags, VertexCount: len(vertices)}
	for _, c := range comps {
		data.Columns[c] = make([]float32, 0, len(vertices)*c.Size())
	}

	for i, v := range vertices {
		if v.Stride() != stride {
			return nil, fmt.Errorf("%w: vertex %d has %d floats, flags %s need %d",
				ErrLayoutMismatch, i, v.Stride(), flags, stride)
		}
		pos := 0
		for _, c := range comps {
			for k := 0; k < c.Size(); k++ {
				data.Columns[c] = append(data.Columns[c], v.At(pos))
				pos++
			}
		}
	}
	return data, nil
}

// ExtractColumns builds columns straight from an interleaved buffer using
// the layout offsets, without welding.
func ExtractColumns(vertices []float32, flags VertexFlags, vertexCount int) *ObjectData {
	stride := Stride(flags)
	data := &ObjectData{Flags: flags, VertexCount: vertexCount}
	for _, c := range flags.Components() {
		size := c.Size()
		col := make([]float32, 0, vertexCount*size)
		for off := Offset(c, flags); off < vertexCount*stride; off += stride {
			col = append(col, vertices[off:off+size]...)
		}
		data.Columns[c] = col
	}
	return data
}
