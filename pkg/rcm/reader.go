package rcm

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Object is one decoded object. Exactly one of Vertices (array of structs)
// and Data (struct of arrays) is set.
type Object struct {
	Header   ObjectHeader
	Vertices []float32
	Data     *ObjectData
	Indices  []uint16
}

// Vertex returns the interleaved floats of stored vertex i.
func (o *Object) Vertex(i int) []float32 {
	if o.Data != nil {
		return o.Data.Vertex(i)
	}
	stride := o.Header.Stride()
	return o.Vertices[i*stride : (i+1)*stride]
}

// Interleaved returns the vertex data as one array-of-structs buffer.
func (o *Object) Interleaved() []float32 {
	if o.Data != nil {
		return o.Data.Interleave()
	}
	return o.Vertices
}

// File is a decoded RCM file.
type File struct {
	Header  FileHeader
	Objects []*Object
}

// ReadFileHeader reads and validates the file header.
func ReadFileHeader(r io.Reader) (FileHeader, error) {
	buf := make([]byte, FileHeaderSize)
	if err := readFull(r, buf); err != nil {
		return FileHeader{}, fmt.Errorf("reading file header: %w", err)
	}
	return DecodeFileHeader(buf)
}

// ReadObjectHeader reads the next object header.
func ReadObjectHeader(r io.Reader) (ObjectHeader, error) {
	buf := make([]byte, ObjectHeaderSize)
	if err := readFull(r, buf); err != nil {
		return ObjectHeader{}, fmt.Errorf("reading object header: %w", err)
	}
	return DecodeObjectHeader(buf)
}

// ReadArrayOfStructs reads the interleaved vertex block and the index block
// of an object whose header was just read.
func ReadArrayOfStructs(r io.Reader, header ObjectHeader) (*Object, error) {
	if err := header.checkLayout(); err != nil {
		return nil, err
	}
	vertices, err := readFloats(r, int64(header.VertexCount)*int64(header.Stride()))
	if err != nil {
		return nil, fmt.Errorf("reading vertex data: %w", err)
	}
	indices, err := readIndices(r, int64(header.IndexCount))
	if err != nil {
		return nil, fmt.Errorf("reading index data: %w", err)
	}
	return &Object{Header: header, Vertices: vertices, Indices: indices}, nil
}

// ReadStructOfArrays reads one column per enabled component, in canonical
// order, followed by the index block.
func ReadStructOfArrays(r io.Reader, header ObjectHeader) (*Object, error) {
	if err := header.checkLayout(); err != nil {
		return nil, err
	}
	data := &ObjectData{Flags: header.Flags, VertexCount: int(header.VertexCount)}
	for _, c := range header.Flags.Components() {
		col, err := readFloats(r, int64(header.VertexCount)*int64(c.Size()))
		if err != nil {
			return nil, fmt.Errorf("reading %s column: %w", c, err)
		}
		data.Columns[c] = col
	}
	indices, err := readIndices(r, int64(header.IndexCount))
	if err != nil {
		return nil, fmt.Errorf("reading index data: %w", err)
	}
	return &Object{Header: header, Data: data, Indices: indices}, nil
}

// ReadObject reads one object header and the data it describes.
func ReadObject(r io.Reader) (*Object, error) {
	header, err := ReadObjectHeader(r)
	if err != nil {
		return nil, err
	}
	switch header.Type {
	case ArrayOfStructs:
		return ReadArrayOfStructs(r, header)
	case StructOfArrays:
		return ReadStructOfArrays(r, header)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownObjectType, uint8(header.Type))
	}
}

// ReadFile reads a file header and every object it announces. Any error
// aborts the whole read.
func ReadFile(r io.Reader) (*File, error) {
	header, err := ReadFileHeader(r)
	if err != nil {
		return nil, err
	}
	file := &File{Header: header, Objects: make([]*Object, 0, header.ObjectCount)}
	for i := 0; i < int(header.ObjectCount); i++ {
		obj, err := ReadObject(r)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		file.Objects = append(file.Objects, obj)
	}
	return file, nil
}

// Decode parses a complete file held in memory.
func Decode(data []byte) (*File, error) {
	return ReadFile(bytes.NewReader(data))
}

// ReadFilePath parses an RCM file from disk.
func ReadFilePath(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RCM file: %w", err)
	}
	return Decode(data)
}
