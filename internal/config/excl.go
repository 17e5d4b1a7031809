package config

import (
	"path/filepath"

	"github.com/zclconf/go-cty/cty"
)

// ExclConfig is the exclusions analysis configuration. It extends the base
// analysis config with per-layer exclusion parameters and raster output
// options.
type ExclConfig struct {
	*AnalysisConfig

	layers []*ExclusionLayer
}

// ExclusionLayer is one named exclusion layer and its parameter set. The
// parameters are layer-specific and passed through uninterpreted.
type ExclusionLayer struct {
	Layer  string
	Params map[string]cty.Value
}

// LoadExcl reads an exclusions analysis configuration file.
func LoadExcl(path string) (*ExclConfig, error) {
	base, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &ExclConfig{AnalysisConfig: base}, nil
}

// ParseExcl decodes an in-memory exclusions analysis configuration.
func ParseExcl(src []byte, filename string) (*ExclConfig, error) {
	base, err := Parse(src, filename)
	if err != nil {
		return nil, err
	}
	return &ExclConfig{AnalysisConfig: base}, nil
}

// Exclusions returns the configured exclusion layers in file order.
func (c *ExclConfig) Exclusions() ([]*ExclusionLayer, error) {
	if c.layers != nil {
		return c.layers, nil
	}
	if len(c.raw.Exclusions) == 0 {
		return nil, configErrorf("at least one exclusion block is required")
	}
	layers := make([]*ExclusionLayer, 0, len(c.raw.Exclusions))
	for _, block := range c.raw.Exclusions {
		params, err := bodyAttributes(block.Body, "exclusion "+block.Layer)
		if err != nil {
			return nil, configErrorf("%v", err)
		}
		layers = append(layers, &ExclusionLayer{Layer: block.Layer, Params: params})
	}
	c.layers = layers
	return c.layers, nil
}

// Fout returns the exclusions raster output path, defaulting to
// exclusions.tif under the output directory.
func (c *ExclConfig) Fout() string {
	if c.raw.Fout != "" {
		return c.raw.Fout
	}
	return filepath.Join(c.Dirout(), "exclusions.tif")
}

// UseBlocks reports whether the exclusions raster is computed blockwise.
func (c *ExclConfig) UseBlocks() bool { return c.raw.UseBlocks }

// Filter returns the optional post-exclusion filter value, null when
// unset.
func (c *ExclConfig) Filter() cty.Value { return c.raw.Filter }
