package config

import (
	"flag"
	"strings"
)

// Flags holds the command line overrides registered on one FlagSet.
type Flags struct {
	config  *string
	debug   *bool
	noOpt   *bool
	soa     *bool
	aos     *bool
	workers *int
	grf     stringList
}

// RegisterFlags adds the shared converter flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{
		config:  fs.String("config", "", "Path to config file"),
		debug:   fs.Bool("debug", false, "Enable debug logging"),
		noOpt:   fs.Bool("n", false, "Do not optimize (weld) vertices"),
		soa:     fs.Bool("a", false, "Export as struct of arrays [-a | -s]"),
		aos:     fs.Bool("s", false, "Export as array of structs (default) [-s | -a]"),
		workers: fs.Int("workers", 0, "Number of parallel conversions"),
	}
	fs.Var(&f.grf, "grf", "GRF archive searched for model paths (repeatable)")
	return f
}

// ConfigPath returns the explicit config path given by -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply applies flag overrides to cfg.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.noOpt {
		cfg.Convert.Optimize = false
	}
	switch {
	case *f.aos:
		cfg.Convert.StructOfArrays = false
	case *f.soa:
		cfg.Convert.StructOfArrays = true
	}
	if *f.workers > 0 {
		cfg.Convert.Workers = *f.workers
	}
	cfg.Import.GRFPaths = append(cfg.Import.GRFPaths, f.grf...)
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
