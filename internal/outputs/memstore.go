package outputs

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mmdione/reV/internal/sitetable"
)

// MemStore is an in-memory Store keyed by file path. It backs tests and
// local experimentation; production deployments inject a store bound to a
// real dataset container.
type MemStore struct {
	mu    sync.RWMutex
	files map[string]*memFile
}

type memFile struct {
	meta      *sitetable.Table
	order     []string
	datasets  map[string][]float64
	attrs     map[string]Attrs
	precision map[string]string
	prov      Provenance
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string]*memFile)}
}

// Put registers a result source at path with the given metadata, replacing
// any existing entry.
func (s *MemStore) Put(path string, meta *sitetable.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = &memFile{
		meta:      meta,
		datasets:  make(map[string][]float64),
		attrs:     make(map[string]Attrs),
		precision: make(map[string]string),
	}
}

// PutDataset attaches a named dataset to an existing path.
func (s *MemStore) PutDataset(path, name string, values []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[path]
	if !ok {
		return fmt.Errorf("no result source at path %s", path)
	}
	if _, dup := f.datasets[name]; !dup {
		f.order = append(f.order, name)
	}
	f.datasets[name] = slices.Clone(values)
	return nil
}

// Exists reports whether a path is present in the store.
func (s *MemStore) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[path]
	return ok
}

// Provenance returns the provenance snapshot written to a path.
func (s *MemStore) Provenance(path string) (Provenance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[path]
	if !ok {
		return Provenance{}, false
	}
	return f.prov, true
}

// Attrs returns the attributes written for a dataset at a path.
func (s *MemStore) Attrs(path, name string) (Attrs, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[path]
	if !ok {
		return nil, false
	}
	a, ok := f.attrs[name]
	return a, ok
}

// Open returns scoped read access to the source at path.
func (s *MemStore) Open(path string) (ResultsSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("no result source at path %s", path)
	}
	return &memSource{file: f}, nil
}

// WriteMeans persists one aggregated variable at path, honoring the write
// mode: Create fails when the path already exists, Overwrite replaces it,
// Append adds to it.
func (s *MemStore) WriteMeans(path string, meta *sitetable.Table, name string,
	values []float64, attrs Attrs, precision string, prov Provenance, mode WriteMode) error {

	if meta != nil && len(values) != meta.Len() {
		return fmt.Errorf("dataset %q has %d values for %d meta rows", name, len(values), meta.Len())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, exists := s.files[path]
	switch mode {
	case Create:
		if exists {
			return fmt.Errorf("refusing to overwrite existing output %s (mode %q)", path, mode)
		}
		fallthrough
	case Overwrite:
		f = &memFile{
			meta:      meta,
			datasets:  make(map[string][]float64),
			attrs:     make(map[string]Attrs),
			precision: make(map[string]string),
		}
		s.files[path] = f
	case Append:
		if !exists {
			f = &memFile{
				meta:      meta,
				datasets:  make(map[string][]float64),
				attrs:     make(map[string]Attrs),
				precision: make(map[string]string),
			}
			s.files[path] = f
		}
	default:
		return fmt.Errorf("unknown write mode %q", mode)
	}

	if _, dup := f.datasets[name]; !dup {
		f.order = append(f.order, name)
	}
	f.datasets[name] = slices.Clone(values)
	f.attrs[name] = attrs
	f.precision[name] = precision
	f.prov = prov
	return nil
}

type memSource struct {
	file *memFile
}

func (m *memSource) Meta() (*sitetable.Table, error) {
	if m.file.meta == nil {
		return nil, fmt.Errorf("result source has no site metadata")
	}
	return m.file.meta, nil
}

func (m *memSource) Datasets() ([]string, error) {
	return slices.Clone(m.file.order), nil
}

func (m *memSource) Dataset(name string) ([]float64, error) {
	vals, ok := m.file.datasets[name]
	if !ok {
		return nil, fmt.Errorf("no dataset %q in result source", name)
	}
	return slices.Clone(vals), nil
}

func (m *memSource) Close() error { return nil }
