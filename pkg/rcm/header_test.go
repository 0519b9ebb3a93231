package rcm

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeFileHeader(t *testing.T) {
	got := EncodeFileHeader(12)
	want := []byte{0xDE, 0xAD, 0x00, 0x01, 12, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeFileHeader(12) = % X, want % X", got, want)
	}
}

func TestDecodeFileHeader(t *testing.T) {
	h, err := DecodeFileHeader(EncodeFileHeader(2))
	if err != nil {
		t.Fatalf("DecodeFileHeader failed: %v", err)
	}
	if h.Magic != Magic {
		t.Errorf("magic = % X", h.Magic)
	}
	if h.Version.String() != "0.1" {
		t.Errorf("version = %s, want 0.1", h.Version)
	}
	if h.ObjectCount != 2 {
		t.Errorf("object count = %d, want 2", h.ObjectCount)
	}
	if h.Reserved != 0 {
		t.Errorf("reserved = %d, want 0", h.Reserved)
	}
}

func TestDecodeFileHeader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncated},
		{"short", []byte{0xDE, 0xAD, 0}, ErrTruncated},
		{"wrong magic", []byte{0xAB, 0xFF, 0, 1, 1, 0}, ErrMagicMismatch},
		{"swapped magic", []byte{0xAD, 0xDE, 0, 1, 1, 0}, ErrMagicMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFileHeader(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeFileHeader_RejectsEveryOtherMagic(t *testing.T) {
	data := EncodeFileHeader(1)
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			if byte(a) == Magic[0] && byte(b) == Magic[1] {
				continue
			}
			data[0], data[1] = byte(a), byte(b)
			if _, err := DecodeFileHeader(data); !errors.Is(err, ErrMagicMismatch) {
				t.Fatalf("magic %02X %02X: got %v", a, b, err)
			}
		}
	}
}

func TestObjectHeader_RoundTrip(t *testing.T) {
	in := ObjectHeader{
		Type:        ArrayOfStructs,
		VertexSize:  0x0F,
		Flags:       0xDEAD,
		VertexCount: 36,
		IndexCount:  128,
		BoneCount:   18,
	}
	data := in.Bytes()
	if len(data) != ObjectHeaderSize {
		t.Fatalf("encoded size = %d, want %d", len(data), ObjectHeaderSize)
	}
	out, err := DecodeObjectHeader(data)
	if err != nil {
		t.Fatalf("DecodeObjectHeader failed: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestObjectHeader_Layout(t *testing.T) {
	h := ObjectHeader{
		Type:        StructOfArrays,
		VertexSize:  8,
		Flags:       FlagPosition | FlagNormal | FlagUV0,
		VertexCount: 0x04030201,
		IndexCount:  6,
	}
	want := []byte{
		0x01, 0x08, 0x13, 0x00,
		0x01, 0x02, 0x03, 0x04,
		0x06, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	if got := h.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}
}

func TestNewObjectHeader(t *testing.T) {
	flags := FlagPosition | FlagNormal | FlagUV0 | FlagUV1 | FlagColor0
	h := NewObjectHeader(flags, 2266, 4096, true)
	if h.Type != StructOfArrays {
		t.Errorf("type = %s, want struct of arrays", h.Type)
	}
	if int(h.VertexSize) != Stride(flags) {
		t.Errorf("vertex size = %d, want %d", h.VertexSize, Stride(flags))
	}
	if h.BoneCount != 0 {
		t.Errorf("bone count = %d, want 0", h.BoneCount)
	}
	if h = NewObjectHeader(flags, 1, 1, false); h.Type != ArrayOfStructs {
		t.Errorf("type = %s, want array of structs", h.Type)
	}
}

func TestObjectHeader_Sizes(t *testing.T) {
	h := NewObjectHeader(FlagPosition|FlagNormal|FlagUV0, 4, 6, false)
	if got := h.VertexDataSize(); got != 4*8*4 {
		t.Errorf("VertexDataSize = %d", got)
	}
	if got := h.IndexDataSize(); got != 12 {
		t.Errorf("IndexDataSize = %d", got)
	}
	if got := h.Size(); got != ObjectHeaderSize+128+12 {
		t.Errorf("Size = %d", got)
	}
}

func TestObjectType_String(t *testing.T) {
	tests := []struct {
		typ  ObjectType
		want string
	}{
		{StructOfArrays, "struct of arrays"},
		{ArrayOfStructs, "array of structs"},
		{ObjectType(9), "Unknown(9)"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
