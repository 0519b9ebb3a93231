package rcm

import (
	"context"
	"errors"
	"testing"
)

func TestIndexObjects(t *testing.T) {
	meshes := []*RawMesh{
		makeSquareMesh(),
		makeMesh(FlagPosition|FlagNormal, 33, 11),
		makeIndexedMesh(FlagPosition|FlagUV0|FlagColor0, 40, 90, 12),
	}
	data, err := Encode(meshes, WriteOptions{Optimize: true, StructOfArrays: true})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	spans, err := IndexObjects(data)
	if err != nil {
		t.Fatalf("IndexObjects failed: %v", err)
	}
	if len(spans) != len(meshes) {
		t.Fatalf("spans = %d, want %d", len(spans), len(meshes))
	}
	offset := int64(FileHeaderSize)
	for i, s := range spans {
		if s.Index != i || s.Offset != offset {
			t.Errorf("span %d: index %d offset %d, want offset %d", i, s.Index, s.Offset, offset)
		}
		if s.Header.Flags != meshes[i].Flags {
			t.Errorf("span %d: flags %s, want %s", i, s.Header.Flags, meshes[i].Flags)
		}
		offset += s.Length
	}
	if offset != int64(len(data)) {
		t.Errorf("spans cover %d bytes, file has %d", offset, len(data))
	}
}

func TestIndexObjects_Errors(t *testing.T) {
	data, err := Encode([]*RawMesh{makeSquareMesh()}, DefaultWriteOptions())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if _, err := IndexObjects(data[:len(data)-2]); !errors.Is(err, ErrTruncated) {
		t.Errorf("short data: got %v, want ErrTruncated", err)
	}
	if _, err := IndexObjects(data[:FileHeaderSize+4]); !errors.Is(err, ErrTruncated) {
		t.Errorf("short header: got %v, want ErrTruncated", err)
	}

	bad := append([]byte{}, data...)
	bad[FileHeaderSize] = 0x09
	if _, err := IndexObjects(bad); !errors.Is(err, ErrUnknownObjectType) {
		t.Errorf("bad type: got %v, want ErrUnknownObjectType", err)
	}
}

func TestDecodeObjects(t *testing.T) {
	var meshes []*RawMesh
	for i := 0; i < 12; i++ {
		meshes = append(meshes, makeMesh(FlagPosition|FlagNormal|FlagUV0, 50+i, int64(i)))
	}
	for _, opts := range allOptions {
		t.Run(optionName(opts), func(t *testing.T) {
			data, err := Encode(meshes, opts)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			objects, err := DecodeObjects(context.Background(), data, 3)
			if err != nil {
				t.Fatalf("DecodeObjects failed: %v", err)
			}
			if len(objects) != len(meshes) {
				t.Fatalf("objects = %d, want %d", len(objects), len(meshes))
			}
			for i, m := range meshes {
				checkRoundTrip(t, m, objects[i], opts)
			}
		})
	}
}

func TestDecodeObjects_Cancelled(t *testing.T) {
	data, err := Encode([]*RawMesh{makeSquareMesh(), makeSquareMesh()}, DefaultWriteOptions())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DecodeObjects(ctx, data, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
