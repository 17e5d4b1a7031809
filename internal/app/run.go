package app

import (
	"context"
	"fmt"

	"github.com/mmdione/reV/internal/config"
	"github.com/mmdione/reV/internal/ctxlog"
	"github.com/mmdione/reV/internal/econ"
	"github.com/mmdione/reV/internal/outputs"
	"github.com/mmdione/reV/internal/sam"
)

// Run executes the main application logic: resolve the econ analysis
// configuration, then run one analysis per capacity factor input file.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	cfg, err := config.LoadEcon(a.config.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load analysis config: %w", err)
	}
	a.logger.Info("Analysis config loaded.", "path", cfg.Path(), "name", cfg.Name())

	tech, err := cfg.Technology()
	if err != nil {
		return err
	}
	samLib, err := cfg.SAMLibrary(ctx)
	if err != nil {
		return err
	}
	pc, err := cfg.PointsControl(ctx)
	if err != nil {
		return err
	}
	outputRequest, err := cfg.OutputRequest(ctx)
	if err != nil {
		return err
	}
	years, err := cfg.Years(ctx)
	if err != nil {
		return err
	}
	cfFiles, err := cfg.CFFiles(ctx, a.resolver)
	if err != nil {
		return err
	}

	if a.config.ValidateOnly {
		a.logger.Info("Configuration is valid.",
			"technology", tech, "sites", pc.Len(), "partitions", pc.NumSplits(),
			"cf_files", cfFiles, "output_request", outputRequest)
		return nil
	}

	engine, ok := sam.Lookup(tech)
	if !ok {
		return fmt.Errorf("no simulation engine registered for technology %q", tech)
	}

	// Pair each cf file with its analysis year. Pipeline-resolved file sets
	// are not guaranteed to align with the configured years, so they run
	// with the year left unspecified.
	cfYears := make([]econ.Year, len(cfFiles))
	if years != nil && len(years) == len(cfFiles) {
		for i, y := range years {
			cfYears[i] = econ.YearOf(y)
		}
	} else if years != nil {
		a.logger.Warn("Analysis years do not align with the cf file set; running with unspecified years.",
			"years", years, "cf_files", cfFiles)
	}

	a.logger.Info("Starting econ analysis.",
		"technology", tech, "sites", pc.Len(), "partitions", pc.NumSplits(), "workers", a.config.Workers)

	for i, cfFile := range cfFiles {
		params := econ.Params{
			PointsControl: pc,
			CFFile:        cfFile,
			CFYear:        cfYears[i],
			SiteData:      cfg.SiteData(),
			OutputRequest: outputRequest,
			Fout:          cfg.Fout(),
			Dirout:        cfg.Dirout(),
			Technology:    tech,
			SAMConfigs:    samLib.Snapshot(),
			Store:         a.store,
			Engine:        engine,
		}
		if _, err := econ.RunDirect(ctx, params, a.config.Workers, outputs.Create); err != nil {
			return fmt.Errorf("econ analysis failed for %s: %w", cfFile, err)
		}
	}

	a.logger.Info("All econ analyses finished.", "cf_files", len(cfFiles))
	a.logger.Debug("App.Run method finished.")
	return nil
}
