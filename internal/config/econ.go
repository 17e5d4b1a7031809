package config

import (
	"context"

	"github.com/mmdione/reV/internal/fsutil"
	"github.com/mmdione/reV/internal/pipeline"
)

// EconConfig is the econ analysis configuration. It extends the base
// analysis config with capacity factor input resolution and optional
// site-specific input data.
type EconConfig struct {
	*AnalysisConfig

	cfFiles []string
}

// LoadEcon reads an econ analysis configuration file.
func LoadEcon(path string) (*EconConfig, error) {
	base, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &EconConfig{AnalysisConfig: base}, nil
}

// ParseEcon decodes an in-memory econ analysis configuration.
func ParseEcon(src []byte, filename string) (*EconConfig, error) {
	base, err := Parse(src, filename)
	if err != nil {
		return nil, err
	}
	return &EconConfig{AnalysisConfig: base}, nil
}

// SiteData returns the configured site data csv path, or "" when unset.
func (c *EconConfig) SiteData() string { return c.raw.SiteData }

// CFFiles resolves the capacity factor input file set. A year-templated
// path expands once per analysis year and every resolved path must exist.
// A pipeline sentinel defers to the resolver and skips the existence and
// year checks, since the prior stage's outputs are trusted as recorded. A
// literal path is a single-file set. For non-pipeline sets, a configured
// year whose text appears in none of the resolved paths is a fatal
// configuration error: a cf file that cannot be tied to its year would
// silently misattribute every result derived from it.
func (c *EconConfig) CFFiles(ctx context.Context, resolver pipeline.Resolver) ([]string, error) {
	if c.cfFiles != nil {
		return c.cfFiles, nil
	}
	if c.raw.CFFile == "" {
		return nil, configErrorf("cf_file is required")
	}

	source := ParseFileSource(c.raw.CFFile)
	years, err := c.Years(ctx)
	if err != nil {
		return nil, err
	}

	if source.Kind() == SourcePipeline {
		if resolver == nil {
			return nil, configErrorf("cf_file %q requires pipeline resolution but no pipeline status is available", source.Raw())
		}
		files, err := resolver.ParsePrevious(c.Dirout(), pipeline.EconStage)
		if err != nil {
			return nil, configErrorf("failed to resolve cf files from pipeline: %v", err)
		}
		if len(files) == 0 {
			return nil, configErrorf("pipeline resolution for cf_file returned no files")
		}
		c.cfFiles = files
		return c.cfFiles, nil
	}

	var files []string
	if source.Kind() == SourceYearTemplate {
		if years == nil {
			return nil, configErrorf("cf_file %q is year-templated but analysis_years is not set", source.Raw())
		}
		files = ExpandYears(source.Raw(), years)
	} else {
		files = []string{source.Raw()}
	}

	if years != nil && len(files) != len(years) {
		return nil, configErrorf("the number of cf files (%d: %v) does not match the number of analysis years (%d: %v)",
			len(files), files, len(years), years)
	}
	if err := fsutil.CheckFiles(files); err != nil {
		return nil, configErrorf("%v", err)
	}
	for _, year := range years {
		if !yearInPaths(year, files) {
			return nil, configErrorf("analysis year %d was not found in the cf files: %v", year, files)
		}
	}

	c.cfFiles = files
	return c.cfFiles, nil
}
