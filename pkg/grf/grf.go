// Package grf reads Ragnarok Online GRF archives (version 0x200).
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Faultbox/rcmconv/pkg/encoding"
)

const (
	grfMagic   = "Master of Magic"
	headerSize = 46
	version200 = 0x200

	entryFlagFile      = 0x01
	entryFlagEncrypted = 0x02 | 0x04

	// entrySize is the fixed tail after each NUL-terminated name.
	entrySize = 17
)

// Archive errors.
var (
	ErrInvalidMagic       = errors.New("invalid GRF magic")
	ErrUnsupportedVersion = errors.New("unsupported GRF version")
	ErrCorruptTable       = errors.New("corrupt GRF file table")
	ErrNotFound           = errors.New("file not found in GRF")
	ErrEncrypted          = errors.New("encrypted GRF entries are not supported")
)

// Header is the fixed 46-byte archive header.
type Header struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

// Entry describes one stored file. Name is UTF-8 and normalized.
type Entry struct {
	Name             string
	CompressedSize   uint32
	AlignedSize      uint32
	UncompressedSize uint32
	Flags            uint8
	Offset           uint32
}

// Archive is an opened GRF archive. Read is safe for concurrent use.
type Archive struct {
	r       io.ReaderAt
	closer  io.Closer
	header  Header
	entries map[string]*Entry
}

// Open opens a GRF archive on disk.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	archive, err := NewArchive(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	archive.closer = file
	return archive, nil
}

// NewArchive reads the header and file table from r.
func NewArchive(r io.ReaderAt) (*Archive, error) {
	a := &Archive{r: r, entries: make(map[string]*Entry)}

	if err := a.readHeader(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := a.readFileTable(); err != nil {
		return nil, fmt.Errorf("reading file table: %w", err)
	}
	return a, nil
}

// Close closes the underlying file, if any.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Header returns the archive header.
func (a *Archive) Header() Header {
	return a.header
}

func (a *Archive) readHeader() error {
	sr := io.NewSectionReader(a.r, 0, headerSize)
	if err := binary.Read(sr, binary.LittleEndian, &a.header); err != nil {
		return err
	}
	if string(a.header.Magic[:]) != grfMagic {
		return ErrInvalidMagic
	}
	if a.header.Version != version200 {
		return fmt.Errorf("%w: 0x%x", ErrUnsupportedVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readFileTable() error {
	tableOffset := int64(a.header.TableOffset) + headerSize

	var sizes [2]uint32 // compressed, uncompressed
	if err := binary.Read(io.NewSectionReader(a.r, tableOffset, 8), binary.LittleEndian, &sizes); err != nil {
		return err
	}

	compressed := make([]byte, sizes[0])
	if err := a.readAt(compressed, tableOffset+8); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptTable, err)
	}

	table, err := inflate(compressed, sizes[1])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptTable, err)
	}

	raw := a.header.FileCount - a.header.Seed
	if a.header.FileCount < a.header.Seed || raw < 7 {
		return fmt.Errorf("%w: file count %d", ErrCorruptTable, a.header.FileCount)
	}
	fileCount := raw - 7

	offset := 0
	for i := uint32(0); i < fileCount; i++ {
		nameEnd := bytes.IndexByte(table[offset:], 0)
		if nameEnd < 0 || offset+nameEnd+1+entrySize > len(table) {
			return fmt.Errorf("%w: entry %d out of range", ErrCorruptTable, i)
		}
		name := encoding.EUCKRToUTF8(table[offset : offset+nameEnd])
		offset += nameEnd + 1

		fields := table[offset : offset+entrySize]
		entry := &Entry{
			Name:             encoding.NormalizeGRFPath(name),
			CompressedSize:   binary.LittleEndian.Uint32(fields[0:]),
			AlignedSize:      binary.LittleEndian.Uint32(fields[4:]),
			UncompressedSize: binary.LittleEndian.Uint32(fields[8:]),
			Flags:            fields[12],
			Offset:           binary.LittleEndian.Uint32(fields[13:]),
		}
		offset += entrySize

		if entry.Flags&entryFlagFile != 0 {
			a.entries[entry.Name] = entry
		}
	}
	return nil
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.entries))
	for path := range a.entries {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// ListExt returns the sorted paths whose extension matches ext
// (case-insensitive, with the leading dot).
func (a *Archive) ListExt(ext string) []string {
	ext = strings.ToLower(ext)
	var result []string
	for _, path := range a.List() {
		if strings.HasSuffix(path, ext) {
			result = append(result, path)
		}
	}
	return result
}

// Contains reports whether path is stored in the archive.
func (a *Archive) Contains(path string) bool {
	_, ok := a.entries[encoding.NormalizeGRFPath(path)]
	return ok
}

// Stat returns the entry for path.
func (a *Archive) Stat(path string) (*Entry, error) {
	entry, ok := a.entries[encoding.NormalizeGRFPath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return entry, nil
}

// Read returns the uncompressed contents of path.
func (a *Archive) Read(path string) ([]byte, error) {
	entry, err := a.Stat(path)
	if err != nil {
		return nil, err
	}
	if entry.Flags&entryFlagEncrypted != 0 {
		return nil, fmt.Errorf("%w: %s", ErrEncrypted, path)
	}
	if entry.CompressedSize > entry.AlignedSize {
		return nil, fmt.Errorf("%w: %s: compressed size exceeds aligned size", ErrCorruptTable, path)
	}

	stored := make([]byte, entry.CompressedSize)
	if err := a.readAt(stored, int64(entry.Offset)+headerSize); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if entry.CompressedSize == entry.UncompressedSize {
		return stored, nil
	}

	data, err := inflate(stored, entry.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("inflating %s: %w", path, err)
	}
	return data, nil
}

// readAt fills b from off. A full read that ends at EOF is not an error.
func (a *Archive) readAt(b []byte, off int64) error {
	n, err := a.r.ReadAt(b, off)
	if n == len(b) {
		return nil
	}
	return err
}

func inflate(data []byte, size uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, err
	}
	return out, nil
}
