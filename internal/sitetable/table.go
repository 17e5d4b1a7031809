// Package sitetable implements a small column-oriented table keyed by site
// gid. It is the in-memory shape for site metadata, per-site input
// parameters and merged analysis results: rows are sites, columns are
// variables, and the gid index is the join key for every merge.
package sitetable

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// GidIndex is the canonical label of the site-identity index.
const GidIndex = "gid"

// Table holds columns of equal length, optionally indexed by site gid.
// The index carries a label so callers can detect tables whose identity
// column has been promoted but mislabeled.
type Table struct {
	indexName string
	gids      []int
	pos       map[int]int
	nrows     int
	cols      []string
	data      map[string][]any
}

// New creates an unindexed table with a fixed row count.
func New(nrows int) *Table {
	return &Table{
		nrows: nrows,
		data:  make(map[string][]any),
	}
}

// NewIndexed creates a table indexed by the given gids under the given
// index label. Gids must be unique; a duplicate site identity would make
// every downstream merge ambiguous.
func NewIndexed(indexName string, gids []int) (*Table, error) {
	t := New(len(gids))
	t.indexName = indexName
	t.gids = slices.Clone(gids)
	t.pos = make(map[int]int, len(gids))
	for i, gid := range gids {
		if _, dup := t.pos[gid]; dup {
			return nil, fmt.Errorf("duplicate site gid %d in table index", gid)
		}
		t.pos[gid] = i
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.nrows }

// Indexed reports whether the table has a site index.
func (t *Table) Indexed() bool { return t.gids != nil }

// IndexName returns the label of the index, or "" when unindexed or
// unlabeled.
func (t *Table) IndexName() string { return t.indexName }

// Gids returns a copy of the site index in row order.
func (t *Table) Gids() []int { return slices.Clone(t.gids) }

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string { return slices.Clone(t.cols) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.data[name]
	return ok
}

// AddColumn appends a named column. The length must match the row count
// and the name must not collide with an existing column.
func (t *Table) AddColumn(name string, values []any) error {
	if len(values) != t.nrows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.nrows)
	}
	if t.HasColumn(name) {
		return fmt.Errorf("column %q already exists", name)
	}
	t.cols = append(t.cols, name)
	t.data[name] = slices.Clone(values)
	return nil
}

// SetColumn adds or replaces a named column. The length must match the
// row count.
func (t *Table) SetColumn(name string, values []any) error {
	if len(values) != t.nrows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.nrows)
	}
	if !t.HasColumn(name) {
		t.cols = append(t.cols, name)
	}
	t.data[name] = slices.Clone(values)
	return nil
}

// SetFloatColumn adds or replaces a numeric column.
func (t *Table) SetFloatColumn(name string, values []float64) error {
	if len(values) != t.nrows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.nrows)
	}
	boxed := make([]any, len(values))
	for i, v := range values {
		boxed[i] = v
	}
	if !t.HasColumn(name) {
		t.cols = append(t.cols, name)
	}
	t.data[name] = boxed
	return nil
}

// AddFloatColumn is AddColumn for a float64 slice.
func (t *Table) AddFloatColumn(name string, values []float64) error {
	boxed := make([]any, len(values))
	for i, v := range values {
		boxed[i] = v
	}
	return t.AddColumn(name, boxed)
}

// Column returns the named column's values in row order.
func (t *Table) Column(name string) ([]any, bool) {
	vals, ok := t.data[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(vals), true
}

// FloatColumn returns the named column converted to float64. Integral and
// float values convert; anything else is an error.
func (t *Table) FloatColumn(name string) ([]float64, error) {
	vals, ok := t.data[name]
	if !ok {
		return nil, fmt.Errorf("no column %q in table", name)
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("column %q is not numeric: row %d holds %T", name, i, v)
		}
		out[i] = f
	}
	return out, nil
}

// Value returns the cell at (gid, column).
func (t *Table) Value(gid int, name string) (any, bool) {
	if !t.Indexed() {
		return nil, false
	}
	i, ok := t.pos[gid]
	if !ok {
		return nil, false
	}
	vals, ok := t.data[name]
	if !ok {
		return nil, false
	}
	return vals[i], true
}

// Row returns the full row for a gid as a column-name to value mapping.
func (t *Table) Row(gid int) (map[string]any, bool) {
	if !t.Indexed() {
		return nil, false
	}
	i, ok := t.pos[gid]
	if !ok {
		return nil, false
	}
	row := make(map[string]any, len(t.cols))
	for _, c := range t.cols {
		row[c] = t.data[c][i]
	}
	return row, true
}

// SetIndex promotes the named column to the table index, removing it from
// the regular columns. Values must be integral site gids.
func (t *Table) SetIndex(name string) error {
	vals, ok := t.data[name]
	if !ok {
		return fmt.Errorf("no column %q to promote to index", name)
	}
	gids := make([]int, len(vals))
	pos := make(map[int]int, len(vals))
	for i, v := range vals {
		f, ok := toFloat(v)
		if !ok || f != float64(int(f)) {
			return fmt.Errorf("index column %q holds non-integral value at row %d: %v", name, i, v)
		}
		gid := int(f)
		if _, dup := pos[gid]; dup {
			return fmt.Errorf("duplicate site gid %d in index column %q", gid, name)
		}
		gids[i] = gid
		pos[gid] = i
	}
	t.indexName = name
	t.gids = gids
	t.pos = pos
	delete(t.data, name)
	t.cols = slices.DeleteFunc(t.cols, func(c string) bool { return c == name })
	return nil
}

// Filter returns a new table holding only the rows whose gid is in keep,
// preserving the receiver's row order.
func (t *Table) Filter(keep []int) (*Table, error) {
	if !t.Indexed() {
		return nil, fmt.Errorf("cannot filter an unindexed table by gid")
	}
	keepSet := make(map[int]struct{}, len(keep))
	for _, gid := range keep {
		keepSet[gid] = struct{}{}
	}
	var gids []int
	for _, gid := range t.gids {
		if _, ok := keepSet[gid]; ok {
			gids = append(gids, gid)
		}
	}
	out, err := NewIndexed(t.indexName, gids)
	if err != nil {
		return nil, err
	}
	for _, c := range t.cols {
		vals := make([]any, len(gids))
		for i, gid := range gids {
			vals[i] = t.data[c][t.pos[gid]]
		}
		if err := out.AddColumn(c, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// LeftJoin merges other into the receiver on the gid index with strict 1:1
// cardinality: the result has exactly the receiver's rows and index. Rows
// of other without a matching gid contribute nil cells. Column-name
// collisions on the right side are disambiguated with the suffix.
func (t *Table) LeftJoin(other *Table, suffix string) (*Table, error) {
	if !t.Indexed() || !other.Indexed() {
		return nil, fmt.Errorf("left join requires both tables to be gid-indexed")
	}
	out, err := NewIndexed(t.indexName, t.gids)
	if err != nil {
		return nil, err
	}
	for _, c := range t.cols {
		if err := out.AddColumn(c, t.data[c]); err != nil {
			return nil, err
		}
	}
	for _, c := range other.cols {
		name := c
		if out.HasColumn(name) {
			name = c + suffix
		}
		vals := make([]any, t.nrows)
		for i, gid := range t.gids {
			if j, ok := other.pos[gid]; ok {
				vals[i] = other.data[c][j]
			}
		}
		if err := out.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Mean returns the arithmetic mean of a numeric column.
func (t *Table) Mean(name string) (float64, error) {
	vals, err := t.FloatColumn(name)
	if err != nil {
		return 0, err
	}
	return stat.Mean(vals, nil), nil
}

// MeanStdDev returns the mean and sample standard deviation of a numeric
// column.
func (t *Table) MeanStdDev(name string) (mean, std float64, err error) {
	vals, err := t.FloatColumn(name)
	if err != nil {
		return 0, 0, err
	}
	mean, std = stat.MeanStdDev(vals, nil)
	return mean, std, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
