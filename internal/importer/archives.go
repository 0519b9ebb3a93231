package importer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Faultbox/rcmconv/pkg/grf"
)

// archiveSet opens GRF archives on first use and keeps them open for the
// registry's lifetime.
type archiveSet struct {
	paths []string

	mu   sync.Mutex
	open map[string]*grf.Archive
}

func newArchiveSet(paths []string) *archiveSet {
	return &archiveSet{paths: paths, open: make(map[string]*grf.Archive)}
}

func (s *archiveSet) len() int {
	return len(s.paths)
}

func (s *archiveSet) get(path string) (*grf.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.open[path]; ok {
		return a, nil
	}
	a, err := grf.Open(path)
	if err != nil {
		return nil, err
	}
	s.open[path] = a
	return a, nil
}

// readFrom reads inner from the archive at path.
func (s *archiveSet) readFrom(path, inner string) ([]byte, error) {
	a, err := s.get(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	data, err := a.Read(inner)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return data, nil
}

// find reads inner from the first configured archive that holds it.
func (s *archiveSet) find(inner string) ([]byte, error) {
	var errs []error
	for _, path := range s.paths {
		a, err := s.get(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if a.Contains(inner) {
			return a.Read(inner)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, fmt.Errorf("%w: %s", grf.ErrNotFound, inner)
}

func (s *archiveSet) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for path, a := range s.open {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.open, path)
	}
	return errors.Join(errs...)
}
