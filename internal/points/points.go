// Package points implements the project-points and points-control
// primitives: the ordered set of analysis sites and its division into
// disjoint, order-preserving chunks sized for parallel execution.
package points

import (
	"fmt"
	"slices"

	"github.com/mmdione/reV/internal/sitetable"
)

// ProjectPoints is the ordered set of sites under analysis, each mapped to
// the id of the SAM parameter bundle that configures its simulation.
type ProjectPoints struct {
	gids    []int
	configs map[int]string
}

// FromSlice builds project points from an explicit gid list, assigning
// every site the same SAM bundle id.
func FromSlice(gids []int, samID string) (*ProjectPoints, error) {
	pp := &ProjectPoints{configs: make(map[int]string, len(gids))}
	seen := make(map[int]struct{}, len(gids))
	for _, gid := range gids {
		if _, dup := seen[gid]; dup {
			return nil, fmt.Errorf("duplicate site gid %d in project points", gid)
		}
		seen[gid] = struct{}{}
		pp.gids = append(pp.gids, gid)
		pp.configs[gid] = samID
	}
	return pp, nil
}

// FromRange builds project points for the half-open gid range [start, stop).
func FromRange(start, stop int, samID string) (*ProjectPoints, error) {
	if stop <= start {
		return nil, fmt.Errorf("invalid project points range [%d, %d)", start, stop)
	}
	gids := make([]int, 0, stop-start)
	for gid := start; gid < stop; gid++ {
		gids = append(gids, gid)
	}
	return FromSlice(gids, samID)
}

// FromCSV loads project points from a delimited file with a "gid" column
// and an optional "config" column naming the SAM bundle per site.
func FromCSV(path, defaultSAMID string) (*ProjectPoints, error) {
	t, err := sitetable.ReadCSV(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load project points: %w", err)
	}
	gidCol, ok := t.Column(sitetable.GidIndex)
	if !ok {
		return nil, fmt.Errorf("project points file %s has no %q column", path, sitetable.GidIndex)
	}
	cfgCol, hasCfg := t.Column("config")

	pp := &ProjectPoints{configs: make(map[int]string, len(gidCol))}
	seen := make(map[int]struct{}, len(gidCol))
	for i, v := range gidCol {
		f, isNum := v.(float64)
		if !isNum || f != float64(int(f)) {
			return nil, fmt.Errorf("project points row %d has non-integral gid %v", i, v)
		}
		gid := int(f)
		if _, dup := seen[gid]; dup {
			return nil, fmt.Errorf("duplicate site gid %d in project points", gid)
		}
		seen[gid] = struct{}{}
		pp.gids = append(pp.gids, gid)
		samID := defaultSAMID
		if hasCfg {
			if s, ok := cfgCol[i].(string); ok && s != "" {
				samID = s
			}
		}
		pp.configs[gid] = samID
	}
	return pp, nil
}

// Len returns the number of sites.
func (pp *ProjectPoints) Len() int { return len(pp.gids) }

// Gids returns a copy of the site gids in analysis order.
func (pp *ProjectPoints) Gids() []int { return slices.Clone(pp.gids) }

// SAMID returns the SAM bundle id assigned to a site.
func (pp *ProjectPoints) SAMID(gid int) (string, bool) {
	id, ok := pp.configs[gid]
	return id, ok
}

// subset returns project points restricted to the given gids, keeping each
// site's bundle assignment.
func (pp *ProjectPoints) subset(gids []int) *ProjectPoints {
	sub := &ProjectPoints{
		gids:    slices.Clone(gids),
		configs: make(map[int]string, len(gids)),
	}
	for _, gid := range gids {
		sub.configs[gid] = pp.configs[gid]
	}
	return sub
}
