package rcm

import (
	"encoding/binary"
	"fmt"
)

// Magic is the file signature.
var Magic = [2]byte{0xDE, 0xAD}

// Current format version.
const (
	VersionMajor uint8 = 0
	VersionMinor uint8 = 1
)

// Encoded header sizes in bytes.
const (
	FileHeaderSize   = 6
	ObjectHeaderSize = 16
)

// MaxObjects is the largest object count the file header can hold.
const MaxObjects = 255

// Version is the container format version.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ObjectType is the physical vertex layout of an object.
type ObjectType uint8

const (
	StructOfArrays ObjectType = 0x1
	ArrayOfStructs ObjectType = 0x2
)

// String returns a human-readable type name.
func (t ObjectType) String() string {
	switch t {
	case StructOfArrays:
		return "struct of arrays"
	case ArrayOfStructs:
		return "array of structs"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// FileHeader is the fixed header at the start of every RCM file.
type FileHeader struct {
	Magic       [2]byte
	Version     Version
	ObjectCount uint8
	Reserved    uint8
}

// NewFileHeader returns a current-version header for objectCount objects.
func NewFileHeader(objectCount uint8) FileHeader {
	return FileHeader{
		Magic:       Magic,
		Version:     Version{Major: VersionMajor, Minor: VersionMinor},
		ObjectCount: objectCount,
	}
}

// EncodeFileHeader returns the encoded header for objectCount objects.
func EncodeFileHeader(objectCount uint8) []byte {
	return NewFileHeader(objectCount).Bytes()
}

// Bytes encodes the header.
func (h FileHeader) Bytes() []byte {
	return []byte{
		h.Magic[0], h.Magic[1],
		h.Version.Major, h.Version.Minor,
		h.ObjectCount,
		h.Reserved,
	}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h FileHeader) MarshalBinary() ([]byte, error) {
	return h.Bytes(), nil
}

// DecodeFileHeader decodes a file header. The magic number is the only
// field validated.
func DecodeFileHeader(data []byte) (FileHeader, error) {
	if len(data) < FileHeaderSize {
		return FileHeader{}, fmt.Errorf("%w: file header needs %d bytes, got %d",
			ErrTruncated, FileHeaderSize, len(data))
	}
	if data[0] != Magic[0] || data[1] != Magic[1] {
		return FileHeader{}, fmt.Errorf("%w: got 0x%02X 0x%02X", ErrMagicMismatch, data[0], data[1])
	}
	return FileHeader{
		Magic:       [2]byte{data[0], data[1]},
		Version:     Version{Major: data[2], Minor: data[3]},
		ObjectCount: data[4],
		Reserved:    data[5],
	}, nil
}

// ObjectHeader describes one object's layout and section sizes.
type ObjectHeader struct {
	Type        ObjectType
	VertexSize  uint8 // floats per vertex
	Flags       VertexFlags
	VertexCount uint32
	IndexCount  uint32
	BoneCount   uint32 // reserved, always zero when written by this package
}

// NewObjectHeader builds an object header. The vertex size is derived from
// flags.
func NewObjectHeader(flags VertexFlags, vertexCount, indexCount uint32, structOfArrays bool) ObjectHeader {
	typ := ArrayOfStructs
	if structOfArrays {
		typ = StructOfArrays
	}
	return ObjectHeader{
		Type:        typ,
		VertexSize:  uint8(Stride(flags)),
		Flags:       flags,
		VertexCount: vertexCount,
		IndexCount:  indexCount,
	}
}

// Bytes encodes the header.
func (h ObjectHeader) Bytes() []byte {
	buf := make([]byte, ObjectHeaderSize)
	buf[0] = byte(h.Type)
	buf[1] = h.VertexSize
	binary.LittleEndian.PutUint16(buf[2:], uint16(h.Flags))
	binary.LittleEndian.PutUint32(buf[4:], h.VertexCount)
	binary.LittleEndian.PutUint32(buf[8:], h.IndexCount)
	binary.LittleEndian.PutUint32(buf[12:], h.BoneCount)
	return buf
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h ObjectHeader) MarshalBinary() ([]byte, error) {
	return h.Bytes(), nil
}

// DecodeObjectHeader decodes an object header without validating it.
func DecodeObjectHeader(data []byte) (ObjectHeader, error) {
	if len(data) < ObjectHeaderSize {
		return ObjectHeader{}, fmt.Errorf("%w: object header needs %d bytes, got %d",
			ErrTruncated, ObjectHeaderSize, len(data))
	}
	return ObjectHeader{
		Type:        ObjectType(data[0]),
		VertexSize:  data[1],
		Flags:       VertexFlags(binary.LittleEndian.Uint16(data[2:])),
		VertexCount: binary.LittleEndian.Uint32(data[4:]),
		IndexCount:  binary.LittleEndian.Uint32(data[8:]),
		BoneCount:   binary.LittleEndian.Uint32(data[12:]),
	}, nil
}

// Stride returns the vertex size implied by the header's flags.
func (h ObjectHeader) Stride() int {
	return Stride(h.Flags)
}

// VertexDataSize returns the size of the vertex section in bytes. It is the
// same for both layouts.
func (h ObjectHeader) VertexDataSize() int64 {
	return int64(h.VertexCount) * int64(h.Stride()) * 4
}

// IndexDataSize returns the size of the index section in bytes.
func (h ObjectHeader) IndexDataSize() int64 {
	return int64(h.IndexCount) * 2
}

// Size returns the encoded size of the whole object, header included.
func (h ObjectHeader) Size() int64 {
	return ObjectHeaderSize + h.VertexDataSize() + h.IndexDataSize()
}

// checkLayout verifies the declared vertex size agrees with the flags.
func (h ObjectHeader) checkLayout() error {
	if int(h.VertexSize) != h.Stride() {
		return fmt.Errorf("%w: header says %d floats, flags %s need %d",
			ErrLayoutMismatch, h.VertexSize, h.Flags, h.Stride())
	}
	return nil
}
