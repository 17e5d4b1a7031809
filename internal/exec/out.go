package exec

import (
	"fmt"
	"slices"

	"github.com/mmdione/reV/internal/sam"
)

// Out is the merged aggregate of an execution run: per-site results in a
// stable, reproducible order (partition index, then site order within the
// partition).
type Out struct {
	gids    []int
	results map[int]sam.SiteResult
}

// Len returns the number of sites with results.
func (o *Out) Len() int {
	if o == nil {
		return 0
	}
	return len(o.gids)
}

// Empty reports whether the aggregate holds no results.
func (o *Out) Empty() bool { return o.Len() == 0 }

// Gids returns the analyzed site gids in merge order.
func (o *Out) Gids() []int {
	if o == nil {
		return nil
	}
	return slices.Clone(o.gids)
}

// Result returns one site's outputs.
func (o *Out) Result(gid int) (sam.SiteResult, bool) {
	if o == nil {
		return nil, false
	}
	res, ok := o.results[gid]
	return res, ok
}

// Unpack extracts one output variable aligned to the given gid order.
// Every requested gid must have a value for the variable.
func (o *Out) Unpack(name string, order []int) ([]float64, error) {
	vals := make([]float64, len(order))
	for i, gid := range order {
		res, ok := o.results[gid]
		if !ok {
			return nil, fmt.Errorf("no results for site %d", gid)
		}
		v, ok := res[name]
		if !ok {
			return nil, fmt.Errorf("site %d has no output variable %q", gid, name)
		}
		vals[i] = v
	}
	return vals, nil
}

// Vars returns the union of output variable names across sites, sorted.
func (o *Out) Vars() []string {
	if o == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, res := range o.results {
		for name := range res {
			seen[name] = struct{}{}
		}
	}
	vars := make([]string, 0, len(seen))
	for name := range seen {
		vars = append(vars, name)
	}
	slices.Sort(vars)
	return vars
}
