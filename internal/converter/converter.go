// Package converter turns source models into RCM files.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/rcmconv/internal/importer"
	"github.com/Faultbox/rcmconv/pkg/rcm"
)

// ErrOutputExists is returned when an output path is used by two jobs.
var ErrOutputExists = errors.New("output path used more than once")

// Options controls encoding and output naming.
type Options struct {
	Write           rcm.WriteOptions
	OutputExtension string // default ".rcm"
}

// Converter imports models and writes them as RCM files.
type Converter struct {
	Importer importer.Importer
	Options  Options
	Log      *zap.Logger
}

// New returns a converter. A nil log discards output.
func New(imp importer.Importer, opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.OutputExtension == "" {
		opts.OutputExtension = ".rcm"
	}
	return &Converter{Importer: imp, Options: opts, Log: log}
}

// Result summarizes one conversion.
type Result struct {
	Input    string
	Output   string
	Objects  int
	Vertices int // stored vertices, after welding
	Indices  int
	Bytes    int
	Elapsed  time.Duration
}

// Job is one input and its output path. An empty Output uses OutputPath.
type Job struct {
	Input  string
	Output string
}

// Render imports in and encodes it in memory.
func (c *Converter) Render(ctx context.Context, in string) ([]*rcm.RawMesh, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	meshes, err := c.Importer.Import(in)
	if err != nil {
		return nil, nil, err
	}
	data, err := rcm.Encode(meshes, c.Options.Write)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding %s: %w", in, err)
	}
	return meshes, data, nil
}

// ConvertFile converts in and atomically writes the result to out. An
// empty out uses OutputPath.
func (c *Converter) ConvertFile(ctx context.Context, in, out string) (*Result, error) {
	start := time.Now()
	if out == "" {
		out = c.OutputPath(in)
	}

	meshes, data, err := c.Render(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := WriteAtomic(out, data); err != nil {
		return nil, err
	}

	res, err := summarize(in, out, data)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)

	c.Log.Info("converted",
		zap.String("input", in),
		zap.String("output", out),
		zap.Int("objects", res.Objects),
		zap.Int("vertices", res.Vertices),
		zap.Int("bytes", res.Bytes),
		zap.Duration("elapsed", res.Elapsed))
	for _, m := range meshes {
		c.Log.Debug("mesh",
			zap.String("name", m.Name),
			zap.Stringer("flags", m.Flags),
			zap.Int("raw_vertices", m.VertexCount),
			zap.Int("indices", m.IndexCount))
	}
	return res, nil
}

// ConvertAll converts jobs with at most workers running at once. progress,
// if set, is called after each successful job. The first failure cancels
// the jobs not yet started and is returned. Results are in job order.
func (c *Converter) ConvertAll(ctx context.Context, jobs []Job, workers int, progress func()) ([]*Result, error) {
	jobs = slices.Clone(jobs)
	seen := make(map[string]string, len(jobs))
	for i := range jobs {
		if jobs[i].Output == "" {
			jobs[i].Output = c.OutputPath(jobs[i].Input)
		}
		key := filepath.Clean(jobs[i].Output)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: %s from %s and %s", ErrOutputExists, key, prev, jobs[i].Input)
		}
		seen[key] = jobs[i].Input
	}

	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res, err := c.ConvertFile(ctx, job.Input, job.Output)
			if err != nil {
				c.Log.Error("conversion failed", zap.String("input", job.Input), zap.Error(err))
				return err
			}
			results[i] = res
			if progress != nil {
				progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Verify re-imports in and checks that data, an encoded RCM file,
// reproduces every mesh.
func (c *Converter) Verify(ctx context.Context, in string, data []byte) error {
	meshes, err := c.Importer.Import(in)
	if err != nil {
		return err
	}
	fh, err := rcm.DecodeFileHeader(data)
	if err != nil {
		return err
	}
	objects, err := rcm.DecodeObjects(ctx, data, 0)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	if err := rcm.VerifyFile(meshes, &rcm.File{Header: fh, Objects: objects}); err != nil {
		return fmt.Errorf("verifying %s: %w", in, err)
	}
	c.Log.Debug("verified", zap.String("input", in), zap.Int("objects", len(objects)))
	return nil
}

// OutputPath returns the default output for in: the input's base name with
// the output extension, next to the input. Archive inputs land in the
// current directory.
func (c *Converter) OutputPath(in string) string {
	ext := c.Options.OutputExtension
	if rest, ok := strings.CutPrefix(in, "grf:"); ok {
		if _, inner, found := strings.Cut(rest, ":"); found {
			inner = strings.ReplaceAll(inner, `\`, "/")
			base := filepath.Base(inner)
			return strings.TrimSuffix(base, filepath.Ext(base)) + ext
		}
	}
	return strings.TrimSuffix(in, filepath.Ext(in)) + ext
}

// summarize reads the object headers back out of data.
func summarize(in, out string, data []byte) (*Result, error) {
	spans, err := rcm.IndexObjects(data)
	if err != nil {
		return nil, fmt.Errorf("indexing output: %w", err)
	}
	res := &Result{Input: in, Output: out, Objects: len(spans), Bytes: len(data)}
	for _, s := range spans {
		res.Vertices += int(s.Header.VertexCount)
		res.Indices += int(s.Header.IndexCount)
	}
	return res, nil
}

// WriteAtomic writes data to a temp file next to path and renames it into
// place. On failure the temp file is removed and path is untouched.
func WriteAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
