// Package econ orchestrates levelized-cost-of-energy analysis: it binds a
// resolved configuration to a capacity factor source, assembles the
// per-site input table, dispatches the simulation engine over the
// partition plan and flushes the merged aggregate through the output
// handler.
package econ

import "strconv"

// multiYearTag is the textual form of the multi-year aggregate year.
const multiYearTag = "my"

// Year identifies the capacity factor vintage of one run: a concrete
// analysis year, the multi-year aggregate, or unspecified (the zero
// value), in which case the source's single vintage is implied.
type Year struct {
	value int
	multi bool
	set   bool
}

// YearOf tags a run with a concrete analysis year.
func YearOf(y int) Year { return Year{value: y, set: true} }

// MultiYear tags a run as the multi-year aggregate.
func MultiYear() Year { return Year{multi: true, set: true} }

// IsZero reports whether the year is unspecified.
func (y Year) IsZero() bool { return !y.set }

// Multi reports whether the year is the multi-year aggregate.
func (y Year) Multi() bool { return y.multi }

// Value returns the concrete year; ok is false for the multi-year
// aggregate and the unspecified year.
func (y Year) Value() (int, bool) {
	if !y.set || y.multi {
		return 0, false
	}
	return y.value, true
}

// String returns the year's textual form as used in dataset names and
// output filename tags, or "" when unspecified.
func (y Year) String() string {
	switch {
	case !y.set:
		return ""
	case y.multi:
		return multiYearTag
	default:
		return strconv.Itoa(y.value)
	}
}
