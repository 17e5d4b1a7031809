// Package config resolves declarative analysis configurations into typed,
// validated execution inputs: technology, SAM parameter bundles, the site
// partition plan, requested output variables and year-templated file sets.
// Derived fields are computed at most once per instance and cached;
// resolution is idempotent over the same raw input.
package config

import (
	"context"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/mmdione/reV/internal/ctxlog"
	"github.com/mmdione/reV/internal/points"
	"github.com/mmdione/reV/internal/sam"
)

// Recognized execution control options. Cluster options partition by node
// count; the local option partitions by process count.
const (
	OptionLocal     = "local"
	OptionEagle     = "eagle"
	OptionPeregrine = "peregrine"
)

// AnalysisConfig is the shared base of every SAM-driven analysis
// configuration. It holds the raw decoded mapping plus lazily memoized
// derived fields.
type AnalysisConfig struct {
	path string
	raw  fileSchema

	years       []int
	yearsSet    bool
	yearsWarned bool

	tech          string
	samFiles      map[string]string
	samLib        *sam.Library
	pc            *points.Control
	outputRequest []string
}

// Load reads and decodes an analysis configuration file.
func Load(path string) (*AnalysisConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, configErrorf("failed to parse %s: %v", path, diags)
	}
	return decode(file.Body, path)
}

// Parse decodes an in-memory analysis configuration.
func Parse(src []byte, filename string) (*AnalysisConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, configErrorf("failed to parse %s: %v", filename, diags)
	}
	return decode(file.Body, filename)
}

func decode(body hcl.Body, path string) (*AnalysisConfig, error) {
	c := &AnalysisConfig{path: path}
	if diags := gohcl.DecodeBody(body, nil, &c.raw); diags.HasErrors() {
		return nil, configErrorf("invalid analysis config %s: %v", path, diags)
	}
	return c, nil
}

// Path returns the source file of the configuration, or the synthetic
// filename for in-memory configs.
func (c *AnalysisConfig) Path() string { return c.path }

// Name returns the analysis name used for output naming.
func (c *AnalysisConfig) Name() string {
	if c.raw.ProjectControl != nil && c.raw.ProjectControl.Name != "" {
		return c.raw.ProjectControl.Name
	}
	return "rev"
}

// Dirout returns the configured output directory, defaulting to the
// working directory.
func (c *AnalysisConfig) Dirout() string {
	if c.raw.Dirout == "" {
		return "./"
	}
	return c.raw.Dirout
}

// Fout returns the configured output filename, or "" when unset.
func (c *AnalysisConfig) Fout() string { return c.raw.Fout }

// Years returns the analysis years. When unspecified it warns once and
// returns nil; single-file inputs then run as an implicit single-year
// analysis whose year is owned by the resource data.
func (c *AnalysisConfig) Years(ctx context.Context) ([]int, error) {
	if c.yearsSet {
		return c.years, nil
	}
	var v cty.Value
	if c.raw.ProjectControl != nil {
		v = c.raw.ProjectControl.AnalysisYears
	}
	years, err := ctyInts(v, "project_control.analysis_years")
	if err != nil {
		return nil, err
	}
	if years == nil && !c.yearsWarned {
		ctxlog.FromContext(ctx).Warn("Analysis years were not specified; may default to the year(s) in the resource files.")
		c.yearsWarned = true
	}
	c.years = years
	c.yearsSet = true
	return c.years, nil
}

// Technology returns the analysis technology string, lowercased and
// stripped of whitespace.
func (c *AnalysisConfig) Technology() (string, error) {
	if c.tech != "" {
		return c.tech, nil
	}
	if c.raw.ProjectControl == nil || c.raw.ProjectControl.Technology == "" {
		return "", configErrorf("project_control.technology is required")
	}
	c.tech = strings.ReplaceAll(strings.ToLower(c.raw.ProjectControl.Technology), " ", "")
	return c.tech, nil
}

// SAMFiles returns the SAM bundle id-to-path mapping. A single path is
// registered under the "default" id.
func (c *AnalysisConfig) SAMFiles() (map[string]string, error) {
	if c.samFiles != nil {
		return c.samFiles, nil
	}
	v := c.raw.SAMFiles
	if v.IsNull() {
		return nil, configErrorf("sam_files is required")
	}
	if v.Type() == cty.String {
		c.samFiles = map[string]string{"default": v.AsString()}
		return c.samFiles, nil
	}
	files, err := ctyStringMap(v, "sam_files")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, configErrorf("sam_files must name at least one bundle")
	}
	c.samFiles = files
	return c.samFiles, nil
}

// SAMLibrary loads the SAM parameter bundles referenced by sam_files,
// once.
func (c *AnalysisConfig) SAMLibrary(ctx context.Context) (*sam.Library, error) {
	if c.samLib != nil {
		return c.samLib, nil
	}
	files, err := c.SAMFiles()
	if err != nil {
		return nil, err
	}
	lib, err := sam.LoadLibrary(files)
	if err != nil {
		return nil, configErrorf("failed to load SAM bundles: %v", err)
	}
	ctxlog.FromContext(ctx).Debug("SAM parameter bundles loaded.", "count", lib.Len(), "ids", lib.IDs())
	c.samLib = lib
	return c.samLib, nil
}

// defaultSAMID picks the bundle id assigned to sites that do not name one
// explicitly: the lexically first id, so the choice is deterministic.
func (c *AnalysisConfig) defaultSAMID() (string, error) {
	files, err := c.SAMFiles()
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[0], nil
}

// projectPoints builds the full site set from the project_points value:
// a csv path, an explicit gid list, or a {start, stop} range object.
func (c *AnalysisConfig) projectPoints() (*points.ProjectPoints, error) {
	v := c.raw.ProjectPoints
	if v.IsNull() {
		return nil, configErrorf("project_points is required")
	}
	samID, err := c.defaultSAMID()
	if err != nil {
		return nil, err
	}

	switch {
	case v.Type() == cty.String:
		pp, err := points.FromCSV(v.AsString(), samID)
		if err != nil {
			return nil, configErrorf("%v", err)
		}
		return pp, nil

	case v.Type().IsTupleType() || v.Type().IsListType():
		gids, err := ctyInts(v, "project_points")
		if err != nil {
			return nil, err
		}
		pp, err := points.FromSlice(gids, samID)
		if err != nil {
			return nil, configErrorf("%v", err)
		}
		return pp, nil

	case v.Type().IsObjectType():
		var start, stop int
		attrs := v.AsValueMap()
		sv, okStart := attrs["start"]
		ev, okStop := attrs["stop"]
		if !okStart || !okStop {
			return nil, configErrorf("project_points range must have start and stop")
		}
		if err := gocty.FromCtyValue(sv, &start); err != nil {
			return nil, configErrorf("project_points start must be an integer: %v", err)
		}
		if err := gocty.FromCtyValue(ev, &stop); err != nil {
			return nil, configErrorf("project_points stop must be an integer: %v", err)
		}
		pp, err := points.FromRange(start, stop, samID)
		if err != nil {
			return nil, configErrorf("%v", err)
		}
		return pp, nil

	default:
		return nil, configErrorf("project_points must be a csv path, a gid list, or a {start, stop} range")
	}
}

// PointsControl resolves the site partition plan. Chunk size is
// ceil(total/divisor), where the divisor is the node count for cluster
// execution options and the process count for local execution.
func (c *AnalysisConfig) PointsControl(ctx context.Context) (*points.Control, error) {
	if c.pc != nil {
		return c.pc, nil
	}
	if c.raw.ExecutionControl == nil {
		return nil, configErrorf("execution_control block is required")
	}

	pp, err := c.projectPoints()
	if err != nil {
		return nil, err
	}

	var divisor int
	option := c.raw.ExecutionControl.Option
	switch option {
	case OptionEagle, OptionPeregrine:
		divisor = c.raw.ExecutionControl.Nodes
		if divisor < 1 {
			return nil, configErrorf("execution_control.nodes must be >= 1 for option %q", option)
		}
	case OptionLocal:
		divisor = c.raw.ExecutionControl.PPN
		if divisor < 1 {
			divisor = 1
		}
	default:
		return nil, configErrorf("execution control option %q is not recognized; expected %q, %q or %q",
			option, OptionEagle, OptionPeregrine, OptionLocal)
	}

	pc, err := points.NewControlForDivisor(pp, divisor)
	if err != nil {
		return nil, configErrorf("%v", err)
	}
	ctxlog.FromContext(ctx).Debug("Points control resolved.",
		"sites", pc.Len(), "sites_per_split", pc.SitesPerSplit(), "option", option)
	c.pc = pc
	return c.pc, nil
}

// ExecutionOption returns the configured execution control option.
func (c *AnalysisConfig) ExecutionOption() (string, error) {
	if c.raw.ExecutionControl == nil {
		return "", configErrorf("execution_control block is required")
	}
	return c.raw.ExecutionControl.Option, nil
}

// OutputRequest resolves the requested output variables through the
// synonym table, defaulting to the mean capacity factor.
func (c *AnalysisConfig) OutputRequest(ctx context.Context) ([]string, error) {
	if c.outputRequest != nil {
		return c.outputRequest, nil
	}
	var v cty.Value
	if c.raw.ProjectControl != nil {
		v = c.raw.ProjectControl.OutputRequest
	}
	requested, err := ctyStrings(v, "project_control.output_request")
	if err != nil {
		return nil, err
	}
	if requested == nil {
		requested = DefaultOutputRequest
	}
	c.outputRequest = ResolveOutputRequest(ctx, requested)
	return c.outputRequest, nil
}
