package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// fileSchema is the decode target for an analysis configuration file. The
// struct tags are the allow-list: gohcl rejects attributes and blocks that
// are not named here, so an unknown key is a load-time diagnostic instead
// of a silently accepted attribute.
type fileSchema struct {
	Dirout       string    `hcl:"dirout,optional"`
	Fout         string    `hcl:"fout,optional"`
	ResourceFile string    `hcl:"resource_file,optional"`
	CFFile       string    `hcl:"cf_file,optional"`
	SiteData     string    `hcl:"site_data,optional"`
	UseBlocks    bool      `hcl:"use_blocks,optional"`
	Filter       cty.Value `hcl:"filter,optional"`

	// project_points accepts a path to a points csv, an explicit gid list,
	// or a {start, stop} range object.
	ProjectPoints cty.Value `hcl:"project_points,optional"`
	// sam_files accepts a single bundle path or an id-to-path mapping.
	SAMFiles cty.Value `hcl:"sam_files,optional"`

	ProjectControl   *projectControlSchema   `hcl:"project_control,block"`
	ExecutionControl *executionControlSchema `hcl:"execution_control,block"`
	Curtailment      *curtailmentSchema      `hcl:"curtailment,block"`
	Exclusions       []*exclusionSchema      `hcl:"exclusion,block"`
}

type projectControlSchema struct {
	Name          string    `hcl:"name,optional"`
	Technology    string    `hcl:"technology,optional"`
	AnalysisYears cty.Value `hcl:"analysis_years,optional"`
	OutputRequest cty.Value `hcl:"output_request,optional"`
	Downscale     string    `hcl:"downscale,optional"`
}

type executionControlSchema struct {
	Option string `hcl:"option"`
	Nodes  int    `hcl:"nodes,optional"`
	PPN    int    `hcl:"ppn,optional"`
}

// curtailmentSchema keeps the curtailment parameters as a raw body; the
// parameter set is technology-specific and owned by the engine.
type curtailmentSchema struct {
	Body hcl.Body `hcl:",remain"`
}

type exclusionSchema struct {
	Layer string   `hcl:"layer,label"`
	Body  hcl.Body `hcl:",remain"`
}

// --- cty decoding helpers ---

// ctyInts accepts a single number or a list/tuple of numbers.
func ctyInts(v cty.Value, field string) ([]int, error) {
	if v.IsNull() {
		return nil, nil
	}
	if v.Type() == cty.Number {
		var n int
		if err := gocty.FromCtyValue(v, &n); err != nil {
			return nil, configErrorf("%s must be an integer: %v", field, err)
		}
		return []int{n}, nil
	}
	if !v.Type().IsTupleType() && !v.Type().IsListType() {
		return nil, configErrorf("%s must be a number or a list of numbers", field)
	}
	var out []int
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		var n int
		if err := gocty.FromCtyValue(ev, &n); err != nil {
			return nil, configErrorf("%s element must be an integer: %v", field, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// ctyStrings accepts a single string or a list/tuple of strings; a single
// string is treated as a one-element list.
func ctyStrings(v cty.Value, field string) ([]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	if v.Type() == cty.String {
		return []string{v.AsString()}, nil
	}
	if !v.Type().IsTupleType() && !v.Type().IsListType() {
		return nil, configErrorf("%s must be a string or a list of strings", field)
	}
	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		if ev.Type() != cty.String {
			return nil, configErrorf("%s element must be a string", field)
		}
		out = append(out, ev.AsString())
	}
	return out, nil
}

// ctyStringMap accepts an object/map of string values.
func ctyStringMap(v cty.Value, field string) (map[string]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, configErrorf("%s must be a mapping of strings", field)
	}
	out := make(map[string]string)
	for it := v.ElementIterator(); it.Next(); {
		kv, ev := it.Element()
		if ev.Type() != cty.String {
			return nil, configErrorf("%s values must be strings", field)
		}
		out[kv.AsString()] = ev.AsString()
	}
	return out, nil
}

// bodyAttributes evaluates a raw HCL body as a flat attribute set.
func bodyAttributes(body hcl.Body, what string) (map[string]cty.Value, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s must be a flat attribute set: %w", what, diags)
	}
	out := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(&hcl.EvalContext{})
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate %s attribute %q: %w", what, name, diags)
		}
		out[name] = val
	}
	return out, nil
}
