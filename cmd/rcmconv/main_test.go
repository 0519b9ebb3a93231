package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Faultbox/rcmconv/internal/importer"
	"github.com/Faultbox/rcmconv/pkg/rcm"
)

func TestPrintInfo(t *testing.T) {
	mesh := &rcm.RawMesh{
		Flags:       rcm.FlagPosition | rcm.FlagUV0 | rcm.FlagTangentBitangent,
		VertexCount: 1,
		IndexCount:  1,
		Vertices:    make([]float32, rcm.Stride(rcm.FlagPosition|rcm.FlagUV0|rcm.FlagTangentBitangent)),
		Indices:     []uint16{0},
	}
	data, err := rcm.Encode([]*rcm.RawMesh{mesh, mesh}, rcm.WriteOptions{StructOfArrays: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var out bytes.Buffer
	if err := printInfo(&out, "box.rcm", data); err != nil {
		t.Fatalf("printInfo: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"file: box.rcm",
		"file version        : 0.1",
		"object count        : 2",
		"object 1",
		"type                : struct of arrays",
		"vertex size         : 11",
		"position          : yes",
		"normal            : no",
		"uv0               : yes",
		"tangent & bitangent: yes",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestPrintInfo_Invalid(t *testing.T) {
	var out bytes.Buffer
	if err := printInfo(&out, "bad", []byte{0xBE, 0xEF, 0, 1, 0, 0}); !errors.Is(err, rcm.ErrMagicMismatch) {
		t.Errorf("got %v, want ErrMagicMismatch", err)
	}
	if err := printInfo(&out, "short", rcm.EncodeFileHeader(1)); !errors.Is(err, rcm.ErrTruncated) {
		t.Errorf("got %v, want ErrTruncated", err)
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.obj", "b.STL", "notes.txt", "sub/c.rsm"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reg := importer.Default(importer.Options{}, nil)
	got, err := expandInputs([]string{dir, "grf:data.grf:data/model/x.rsm"}, reg)
	if err != nil {
		t.Fatalf("expandInputs: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.obj"),
		filepath.Join(dir, "b.STL"),
		filepath.Join(dir, "sub", "c.rsm"),
		"grf:data.grf:data/model/x.rsm",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expandInputs = %v, want %v", got, want)
	}

	if _, err := expandInputs([]string{t.TempDir()}, reg); err == nil {
		t.Error("expected error for a directory without models")
	}
}
