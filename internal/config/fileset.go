package config

import (
	"strconv"
	"strings"

	"github.com/mmdione/reV/internal/pipeline"
)

// yearPlaceholder is the literal token in a configured path that is
// substituted with each analysis year.
const yearPlaceholder = "{}"

// SourceKind tags the three ways a configured file-path field resolves
// into concrete paths.
type SourceKind int

const (
	// SourceLiteral is a single concrete path.
	SourceLiteral SourceKind = iota
	// SourceYearTemplate is a path containing a year placeholder, expanded
	// once per analysis year.
	SourceYearTemplate
	// SourcePipeline defers resolution to a prior stage's recorded output.
	SourcePipeline
)

// FileSource is the tagged form of a configured file-path field. The tag
// is decided once at parse time; resolution dispatches over it rather
// than re-searching the string.
type FileSource struct {
	kind SourceKind
	raw  string
}

// ParseFileSource classifies a raw configured path.
func ParseFileSource(raw string) FileSource {
	switch {
	case strings.Contains(raw, yearPlaceholder):
		return FileSource{kind: SourceYearTemplate, raw: raw}
	case strings.Contains(raw, pipeline.Sentinel):
		return FileSource{kind: SourcePipeline, raw: raw}
	default:
		return FileSource{kind: SourceLiteral, raw: raw}
	}
}

// Kind returns the source tag.
func (s FileSource) Kind() SourceKind { return s.kind }

// Raw returns the configured path as written.
func (s FileSource) Raw() string { return s.raw }

// ExpandYears substitutes each year into the template, in year order, so
// the i-th path carries the i-th year's textual form.
func ExpandYears(template string, years []int) []string {
	out := make([]string, len(years))
	for i, year := range years {
		out[i] = strings.Replace(template, yearPlaceholder, strconv.Itoa(year), 1)
	}
	return out
}

// yearInPaths reports whether a year's textual form appears anywhere in
// the resolved path set.
func yearInPaths(year int, paths []string) bool {
	text := strconv.Itoa(year)
	for _, p := range paths {
		if strings.Contains(p, text) {
			return true
		}
	}
	return false
}
