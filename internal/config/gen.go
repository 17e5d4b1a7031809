package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/mmdione/reV/internal/fsutil"
)

// GenConfig is the generation analysis configuration. It extends the base
// analysis config with resource file resolution, curtailment parameters
// and temporal downscaling.
type GenConfig struct {
	*AnalysisConfig

	resFiles    []string
	curtailment *Curtailment
}

// Curtailment holds the technology-specific curtailment parameter set,
// passed through to the engine uninterpreted.
type Curtailment struct {
	Params map[string]cty.Value
}

// LoadGen reads a generation analysis configuration file.
func LoadGen(path string) (*GenConfig, error) {
	base, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &GenConfig{AnalysisConfig: base}, nil
}

// ParseGen decodes an in-memory generation analysis configuration.
func ParseGen(src []byte, filename string) (*GenConfig, error) {
	base, err := Parse(src, filename)
	if err != nil {
		return nil, err
	}
	return &GenConfig{AnalysisConfig: base}, nil
}

// Curtailment returns the curtailment parameters, or nil when the config
// carries no curtailment block.
func (c *GenConfig) Curtailment() (*Curtailment, error) {
	if c.curtailment != nil {
		return c.curtailment, nil
	}
	if c.raw.Curtailment == nil {
		return nil, nil
	}
	params, err := bodyAttributes(c.raw.Curtailment.Body, "curtailment")
	if err != nil {
		return nil, configErrorf("%v", err)
	}
	c.curtailment = &Curtailment{Params: params}
	return c.curtailment, nil
}

// Downscale returns the temporal downscaling frequency, or "" when
// downscaling is not requested.
func (c *GenConfig) Downscale() string {
	if c.raw.ProjectControl == nil {
		return ""
	}
	return c.raw.ProjectControl.Downscale
}

// ResFiles resolves the weather resource file set. A year-templated path
// expands once per analysis year; a literal path is a single-file set.
// Every resolved path must exist, and for templated sets the file count
// must match the year count.
func (c *GenConfig) ResFiles(ctx context.Context) ([]string, error) {
	if c.resFiles != nil {
		return c.resFiles, nil
	}
	if c.raw.ResourceFile == "" {
		return nil, configErrorf("resource_file is required")
	}

	source := ParseFileSource(c.raw.ResourceFile)
	years, err := c.Years(ctx)
	if err != nil {
		return nil, err
	}

	var files []string
	switch source.Kind() {
	case SourceYearTemplate:
		if years == nil {
			return nil, configErrorf("resource_file %q is year-templated but analysis_years is not set", source.Raw())
		}
		files = ExpandYears(source.Raw(), years)
	case SourcePipeline:
		return nil, configErrorf("resource_file does not support pipeline resolution")
	default:
		files = []string{source.Raw()}
	}

	if years != nil && len(files) != len(years) {
		return nil, configErrorf("the number of resource files (%d: %v) does not match the number of analysis years (%d: %v)",
			len(files), files, len(years), years)
	}
	if err := fsutil.CheckFiles(files); err != nil {
		return nil, configErrorf("%v", err)
	}

	c.resFiles = files
	return c.resFiles, nil
}
