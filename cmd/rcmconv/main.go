// rcmconv converts 3D models into the RCM binary mesh format and inspects
// RCM files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Faultbox/rcmconv/internal/config"
	"github.com/Faultbox/rcmconv/internal/converter"
	"github.com/Faultbox/rcmconv/internal/importer"
	"github.com/Faultbox/rcmconv/internal/logger"
	"github.com/Faultbox/rcmconv/pkg/grf"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Commands that read a config re-initialize with its settings.
	if err := logger.Init("info", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "convert", "c":
		err = cmdConvert(ctx, args)
	case "info", "i":
		err = cmdInfo(args)
	case "verify":
		err = cmdVerify(ctx, args)
	case "list", "ls":
		err = cmdList(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error(command+" failed", zap.Error(err))
		logger.Sync()
		stop()
		os.Exit(1)
	}
	logger.Sync()
}

func printUsage() {
	fmt.Println(`rcmconv - RCM binary mesh converter

Usage:
  rcmconv <command> [options]

Commands:
  convert [flags] <input>...   Convert models (.obj, .stl, .rsm) to .rcm
  info <file.rcm>...           Show file and object headers
  verify [flags] <input>       Convert in memory and check the round trip
  list [-n N] <file.grf>       List convertible models in a GRF archive

Convert flags:
  -o FILE      Output file (single input only)
  -n           Do not optimize (weld) vertices
  -a           Export as struct of arrays [-a | -s]
  -s           Export as array of structs (default) [-s | -a]
  -workers N   Parallel conversions
  -grf FILE    GRF archive searched for model paths (repeatable)
  -config FILE Config file (default ./rcmconv.yaml)
  -debug       Debug logging

Inputs may be files, directories, or grf:<archive>:<path>.

Examples:
  rcmconv convert -a models/box.obj
  rcmconv convert -o wall.rcm grf:data.grf:data/model/prontera/wall.rsm
  rcmconv info box.rcm`)
}

// setup parses the shared flags and installs the logger.
func setup(fs *flag.FlagSet, args []string) (*config.Config, error) {
	f := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load(f)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func newConverter(cfg *config.Config) (*converter.Converter, *importer.Registry) {
	reg := importer.Default(importer.Options{
		FlipV:           cfg.Import.FlipV,
		GenerateNormals: cfg.Import.GenerateNormals,
	}, cfg.Import.GRFPaths)

	conv := converter.New(reg, converter.Options{
		Write:           cfg.Convert.WriteOptions(),
		OutputExtension: cfg.Convert.OutputExtension,
	}, logger.Log)
	return conv, reg
}

func logOptions(cfg *config.Config) {
	logger.Debug("exporting with options",
		zap.Bool("optimize", cfg.Convert.Optimize),
		zap.Bool("struct_of_arrays", cfg.Convert.StructOfArrays),
		zap.Bool("array_of_structs", !cfg.Convert.StructOfArrays),
		zap.Bool("flip_v", cfg.Import.FlipV),
		zap.Bool("generate_normals", cfg.Import.GenerateNormals),
		zap.Strings("grf_paths", cfg.Import.GRFPaths),
		zap.Int("workers", cfg.Convert.Workers))
}

func cmdConvert(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	output := fs.String("o", "", "Output file (single input only)")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: rcmconv convert [flags] <input>...")
	}

	conv, reg := newConverter(cfg)
	defer reg.Close()
	logOptions(cfg)

	inputs, err := expandInputs(fs.Args(), reg)
	if err != nil {
		return err
	}
	if *output != "" && len(inputs) > 1 {
		return fmt.Errorf("-o needs exactly one input, got %d", len(inputs))
	}

	if len(inputs) == 1 {
		_, err := conv.ConvertFile(ctx, inputs[0], *output)
		return err
	}

	jobs := make([]converter.Job, len(inputs))
	for i, in := range inputs {
		jobs[i] = converter.Job{Input: in}
	}

	var progress func()
	if term.IsTerminal(int(os.Stderr.Fd())) {
		bar := progressbar.Default(int64(len(jobs)), "converting")
		defer bar.Close()
		progress = func() { bar.Add(1) }
	}

	results, err := conv.ConvertAll(ctx, jobs, cfg.Convert.Workers, progress)
	if err != nil {
		return err
	}

	var vertices, size int
	for _, r := range results {
		vertices += r.Vertices
		size += r.Bytes
	}
	logger.Info("batch complete",
		zap.Int("files", len(results)),
		zap.Int("vertices", vertices),
		zap.Int("bytes", size))
	return nil
}

// expandInputs replaces directories with the supported files inside them.
func expandInputs(args []string, reg *importer.Registry) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && reg.Supports(path) {
				inputs = append(inputs, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(inputs) == 0 {
		return nil, errors.New("no supported inputs found")
	}
	return inputs, nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: rcmconv info <file.rcm>...")
	}
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := printInfo(os.Stdout, path, data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func cmdVerify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: rcmconv verify [flags] <input>")
	}
	in := fs.Arg(0)

	conv, reg := newConverter(cfg)
	defer reg.Close()
	logOptions(cfg)

	_, data, err := conv.Render(ctx, in)
	if err != nil {
		return err
	}
	if err := conv.Verify(ctx, in, data); err != nil {
		return err
	}
	fmt.Printf("%s: ok (%d bytes)\n", in, len(data))
	return nil
}

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: rcmconv list [-n N] <file.grf>")
	}

	archive, err := grf.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer archive.Close()

	reg := importer.Default(importer.Options{}, nil)
	count := 0
	for _, path := range archive.List() {
		if !reg.Supports(path) {
			continue
		}
		entry, err := archive.Stat(path)
		if err != nil {
			return err
		}
		fmt.Printf("%10d  %s\n", entry.UncompressedSize, path)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}
	fmt.Fprintf(os.Stderr, "%d models (%s)\n", count, strings.Join(reg.Extensions(), ", "))
	return nil
}
