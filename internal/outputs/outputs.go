// Package outputs defines the contracts consumed from the output-handler
// collaborator: read access to a persisted multi-site result source and a
// single "write aggregated means" operation. The container format itself
// (file layout, dataset schema) is owned by the collaborator, not by this
// module.
package outputs

import (
	"time"

	"github.com/mmdione/reV/internal/sitetable"
)

// MeansDataset is the name of the precomputed multi-year-mean capacity
// factor dataset. The multi-year mean is computed upstream; this module
// only selects it by this explicit name.
const MeansDataset = "cf_means"

// Attrs carries per-dataset attributes such as units and scale factors.
type Attrs map[string]string

// WriteMode selects the disk behavior of a means write.
type WriteMode string

const (
	// Overwrite replaces an existing file.
	Overwrite WriteMode = "w"
	// Create fails if the target already exists. Overwriting requires
	// explicit opt-in via Overwrite.
	Create WriteMode = "w-"
	// Append adds datasets to an existing file.
	Append WriteMode = "a"
)

// Provenance is the reproducibility snapshot attached to every flushed
// aggregate.
type Provenance struct {
	RunID      string
	Technology string
	SAMConfigs map[string]string
	CreatedAt  time.Time
}

// ResultsSource is scoped read access to one persisted multi-site result
// set (for example a generation capacity-factor file).
type ResultsSource interface {
	// Meta returns the gid-indexed site metadata table.
	Meta() (*sitetable.Table, error)
	// Datasets lists the named result datasets present in the source.
	Datasets() ([]string, error)
	// Dataset returns a named result dataset aligned with Meta row order.
	Dataset(name string) ([]float64, error)
	Close() error
}

// Store is the full output-handler contract: open result sources by path
// and write aggregated means.
type Store interface {
	Open(path string) (ResultsSource, error)

	// WriteMeans persists one aggregated result variable: site metadata,
	// the variable name, its value array in meta row order, unit/scale
	// attributes, a numeric precision tag, and the provenance snapshot.
	WriteMeans(path string, meta *sitetable.Table, name string, values []float64,
		attrs Attrs, precision string, prov Provenance, mode WriteMode) error
}
