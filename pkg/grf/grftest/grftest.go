// Package grftest builds small GRF 0x200 archives for tests.
package grftest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/Faultbox/rcmconv/pkg/encoding"
)

// File is one archive member.
type File struct {
	Name    string
	Content []byte
	Stored  bool // write uncompressed
}

// Build returns the bytes of an archive holding files. Names are written
// EUC-KR encoded with backslash separators, as the game client does.
func Build(files []File) []byte {
	var body, table bytes.Buffer
	body.Write(make([]byte, 46))

	for _, f := range files {
		data := f.Content
		if !f.Stored {
			data = deflate(f.Content)
		}
		aligned := (len(data) + 7) &^ 7
		offset := uint32(body.Len() - 46)
		body.Write(data)
		body.Write(make([]byte, aligned-len(data)))

		table.Write(encoding.UTF8ToEUCKR(strings.ReplaceAll(f.Name, "/", `\`)))
		table.WriteByte(0)
		binary.Write(&table, binary.LittleEndian, uint32(len(data)))
		binary.Write(&table, binary.LittleEndian, uint32(aligned))
		binary.Write(&table, binary.LittleEndian, uint32(len(f.Content)))
		table.WriteByte(0x01)
		binary.Write(&table, binary.LittleEndian, offset)
	}

	tableOffset := uint32(body.Len() - 46)
	packed := deflate(table.Bytes())
	binary.Write(&body, binary.LittleEndian, uint32(len(packed)))
	binary.Write(&body, binary.LittleEndian, uint32(table.Len()))
	body.Write(packed)

	out := body.Bytes()
	copy(out, "Master of Magic")
	binary.LittleEndian.PutUint32(out[30:], tableOffset)
	binary.LittleEndian.PutUint32(out[34:], 0)
	binary.LittleEndian.PutUint32(out[38:], uint32(len(files))+7)
	binary.LittleEndian.PutUint32(out[42:], 0x200)
	return out
}

// BuildMap is Build over a name to content map, in name order.
func BuildMap(files map[string][]byte) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]File, len(names))
	for i, name := range names {
		list[i] = File{Name: name, Content: files[name]}
	}
	return Build(list)
}

// WriteFile builds an archive into t.TempDir and returns its path.
func WriteFile(t testing.TB, files map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.grf")
	if err := os.WriteFile(path, BuildMap(files), 0o644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
	return path
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}
