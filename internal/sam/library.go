// Package sam loads site-agnostic simulation parameter bundles and defines
// the contract of the external single-site simulation engine. The physics
// and economics formulas live behind the Engine interface; this module
// only routes inputs to it and collects what it returns.
package sam

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Bundle is one site-agnostic simulation parameter set, loaded from a
// configuration-referenced file and indexed by its configuration id.
type Bundle struct {
	ID     string
	Path   string
	Params map[string]cty.Value
}

// Library indexes parameter bundles by configuration id.
type Library struct {
	bundles map[string]*Bundle
}

// LoadLibrary parses every referenced bundle file. Bundle files are flat
// HCL attribute sets; malformed files surface as diagnostics errors.
func LoadLibrary(files map[string]string) (*Library, error) {
	lib := &Library{bundles: make(map[string]*Bundle, len(files))}
	parser := hclparse.NewParser()
	for id, path := range files {
		bundle, err := loadBundle(parser, id, path)
		if err != nil {
			return nil, err
		}
		lib.bundles[id] = bundle
	}
	return lib, nil
}

func loadBundle(parser *hclparse.Parser, id, path string) (*Bundle, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse SAM bundle %q (%s): %w", id, path, diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("SAM bundle %q (%s) must be a flat attribute set: %w", id, path, diags)
	}

	params := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(&hcl.EvalContext{})
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate SAM parameter %q in bundle %q: %w", name, id, diags)
		}
		params[name] = val
	}

	return &Bundle{ID: id, Path: path, Params: params}, nil
}

// Bundle returns the parameter bundle for a configuration id.
func (l *Library) Bundle(id string) (*Bundle, bool) {
	b, ok := l.bundles[id]
	return b, ok
}

// IDs returns the bundle ids in sorted order.
func (l *Library) IDs() []string {
	ids := make([]string, 0, len(l.bundles))
	for id := range l.bundles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of bundles.
func (l *Library) Len() int { return len(l.bundles) }

// Snapshot returns the id-to-path mapping recorded in output provenance.
func (l *Library) Snapshot() map[string]string {
	snap := make(map[string]string, len(l.bundles))
	for id, b := range l.bundles {
		snap[id] = b.Path
	}
	return snap
}
