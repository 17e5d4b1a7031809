package points

import (
	"fmt"
)

// Control pairs project points with a chunk size. Splitting a Control
// yields ordered, disjoint sub-controls whose concatenation reproduces the
// original site sequence exactly once, in order.
type Control struct {
	pp            *ProjectPoints
	sitesPerSplit int
	splitIndex    int
}

// NewControl creates a points control with an explicit chunk size.
func NewControl(pp *ProjectPoints, sitesPerSplit int) (*Control, error) {
	if sitesPerSplit < 1 {
		return nil, fmt.Errorf("sites per split must be >= 1, got %d", sitesPerSplit)
	}
	return &Control{pp: pp, sitesPerSplit: sitesPerSplit, splitIndex: -1}, nil
}

// NewControlForDivisor sizes chunks as ceil(total/divisor); divisor is the
// node count for cluster execution or the process count for local
// execution.
func NewControlForDivisor(pp *ProjectPoints, divisor int) (*Control, error) {
	if divisor < 1 {
		return nil, fmt.Errorf("partition divisor must be >= 1, got %d", divisor)
	}
	sitesPerSplit := (pp.Len() + divisor - 1) / divisor
	if sitesPerSplit < 1 {
		sitesPerSplit = 1
	}
	return NewControl(pp, sitesPerSplit)
}

// Points returns the underlying project points.
func (c *Control) Points() *ProjectPoints { return c.pp }

// Sites returns the gids governed by this control, in order.
func (c *Control) Sites() []int { return c.pp.Gids() }

// Len returns the number of sites governed by this control.
func (c *Control) Len() int { return c.pp.Len() }

// SitesPerSplit returns the configured chunk size.
func (c *Control) SitesPerSplit() int { return c.sitesPerSplit }

// SplitIndex returns the position of this chunk within its parent plan, or
// -1 for an unsplit control.
func (c *Control) SplitIndex() int { return c.splitIndex }

// NumSplits returns the number of chunks Splits will produce.
func (c *Control) NumSplits() int {
	if c.pp.Len() == 0 {
		return 0
	}
	return (c.pp.Len() + c.sitesPerSplit - 1) / c.sitesPerSplit
}

// Splits divides the control into ordered chunks of at most sitesPerSplit
// sites. Order is preserved within and across chunks.
func (c *Control) Splits() []*Control {
	gids := c.pp.gids
	var out []*Control
	for start := 0; start < len(gids); start += c.sitesPerSplit {
		end := min(start+c.sitesPerSplit, len(gids))
		out = append(out, &Control{
			pp:            c.pp.subset(gids[start:end]),
			sitesPerSplit: c.sitesPerSplit,
			splitIndex:    len(out),
		})
	}
	return out
}

// String describes the control for logs.
func (c *Control) String() string {
	if c.splitIndex >= 0 {
		return fmt.Sprintf("PointsControl(split=%d, sites=%d)", c.splitIndex, c.pp.Len())
	}
	return fmt.Sprintf("PointsControl(sites=%d, sites_per_split=%d)", c.pp.Len(), c.sitesPerSplit)
}
