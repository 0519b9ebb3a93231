// Package importer reads source models into raw meshes ready for the RCM
// writer.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/rcmconv/pkg/rcm"
)

// Import errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrImportFailure     = errors.New("import failed")
	ErrEmptyMeshes       = errors.New("input contains no meshes")
)

// Importer turns a source path into meshes.
type Importer interface {
	Import(path string) ([]*rcm.RawMesh, error)
}

// Format decodes one source format from memory.
type Format interface {
	// Extensions lists the lower-case extensions handled, with the dot.
	Extensions() []string
	Decode(name string, data []byte, opts Options) ([]*rcm.RawMesh, error)
}

// Options controls attribute generation for every format.
type Options struct {
	FlipV           bool // v = 1 - v
	GenerateNormals bool // face normals when the source has none
}

// Registry dispatches inputs to formats by extension. It resolves
// "grf:<archive>:<inner path>" inputs and bare inner paths against its
// archives. A Registry is safe for concurrent use once populated.
type Registry struct {
	opts     Options
	formats  map[string]Format
	archives *archiveSet
}

// NewRegistry returns an empty registry.
func NewRegistry(opts Options, grfPaths []string) *Registry {
	return &Registry{
		opts:     opts,
		formats:  make(map[string]Format),
		archives: newArchiveSet(grfPaths),
	}
}

// Default returns a registry with the OBJ, STL and RSM formats.
func Default(opts Options, grfPaths []string) *Registry {
	r := NewRegistry(opts, grfPaths)
	r.Register(OBJ{})
	r.Register(STL{})
	r.Register(RSM{})
	return r
}

// Register adds f, replacing earlier formats for the same extensions.
func (r *Registry) Register(f Format) {
	for _, ext := range f.Extensions() {
		r.formats[strings.ToLower(ext)] = f
	}
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.formats))
	for ext := range r.formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.formats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Import reads and decodes path. Every returned mesh passes Validate.
func (r *Registry) Import(path string) ([]*rcm.RawMesh, error) {
	_, inner, _ := splitGRFPath(path)
	name := path
	if inner != "" {
		name = inner
	}

	format, ok := r.formats[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	data, err := r.read(path)
	if err != nil {
		return nil, err
	}

	meshes, err := format.Decode(baseName(name), data, r.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyMeshes, path)
	}
	for _, m := range meshes {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrImportFailure, path, err)
		}
	}
	return meshes, nil
}

// read loads path from disk or from a GRF archive.
func (r *Registry) read(path string) ([]byte, error) {
	if archive, inner, ok := splitGRFPath(path); ok {
		return r.archives.readFrom(archive, inner)
	}

	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, os.ErrNotExist) && r.archives.len() > 0 {
		if data, gerr := r.archives.find(path); gerr == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("reading input: %w", err)
}

// Close releases any archives opened by Import.
func (r *Registry) Close() error {
	return r.archives.close()
}

// splitGRFPath parses "grf:<archive>:<inner path>".
func splitGRFPath(path string) (archive, inner string, ok bool) {
	rest, found := strings.CutPrefix(path, "grf:")
	if !found {
		return "", "", false
	}
	archive, inner, found = strings.Cut(rest, ":")
	if !found || archive == "" || inner == "" {
		return "", "", false
	}
	return archive, inner, true
}

func baseName(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
