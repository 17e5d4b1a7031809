package econ

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/mmdione/reV/internal/ctxlog"
	"github.com/mmdione/reV/internal/exec"
	"github.com/mmdione/reV/internal/outputs"
	"github.com/mmdione/reV/internal/points"
	"github.com/mmdione/reV/internal/sam"
	"github.com/mmdione/reV/internal/sitetable"
)

// ErrLookup tags failures to locate a required per-site input, such as a
// capacity factor dataset or a site data identity column.
var ErrLookup = errors.New("site input lookup error")

// DefaultDirout is the output directory used when none is configured.
const DefaultDirout = "./lcoe_out"

// lcoeDataset is the canonical levelized-cost output variable.
const lcoeDataset = "lcoe_fcr"

// DefaultOutputRequest is the econ output request used when none is
// configured.
var DefaultOutputRequest = []string{lcoeDataset}

// offshoreColumn flags sites whose inputs are owned by the offshore
// balance-of-system model.
const offshoreColumn = "offshore"

// Params collects the inputs of one LCOE analysis. Store and Engine are
// injected collaborators; SiteData accepts a csv path or an assembled
// *sitetable.Table.
type Params struct {
	PointsControl *points.Control
	CFFile        string
	CFYear        Year
	SiteData      any
	OutputRequest []string
	Fout          string
	Dirout        string
	Technology    string
	SAMConfigs    map[string]string

	Store  outputs.Store
	Engine sam.Engine
}

// LCOE is the econ analysis orchestrator. It is configured once, run
// once, and flushed at most once; the derived site table and metadata are
// memoized across those phases.
type LCOE struct {
	pc            *points.Control
	cfFile        string
	cfYear        Year
	outputRequest []string
	fout          string
	dirout        string
	technology    string
	samConfigs    map[string]string

	store  outputs.Store
	engine sam.Engine

	siteData        *sitetable.Table
	meta            *sitetable.Table
	siteDF          *sitetable.Table
	offshoreChecked bool
	out             *exec.Out
}

// New validates and binds the analysis inputs.
func New(p Params) (*LCOE, error) {
	if p.PointsControl == nil {
		return nil, fmt.Errorf("econ analysis requires a points control")
	}
	if p.CFFile == "" {
		return nil, fmt.Errorf("econ analysis requires a capacity factor file")
	}
	if p.Store == nil {
		return nil, fmt.Errorf("econ analysis requires an output store")
	}
	if p.Engine == nil {
		return nil, fmt.Errorf("econ analysis requires a simulation engine")
	}

	l := &LCOE{
		pc:            p.PointsControl,
		cfFile:        p.CFFile,
		cfYear:        p.CFYear,
		outputRequest: p.OutputRequest,
		fout:          p.Fout,
		dirout:        p.Dirout,
		technology:    p.Technology,
		samConfigs:    p.SAMConfigs,
		store:         p.Store,
		engine:        p.Engine,
	}
	if len(l.outputRequest) == 0 {
		l.outputRequest = DefaultOutputRequest
	}
	if l.dirout == "" {
		l.dirout = DefaultDirout
	}
	if err := l.setSiteData(p.SiteData); err != nil {
		return nil, err
	}
	return l, nil
}

// setSiteData normalizes the site data input into a gid-indexed table.
func (l *LCOE) setSiteData(sd any) error {
	switch v := sd.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		table, err := sitetable.ReadCSV(v)
		if err != nil {
			return fmt.Errorf("failed to read site data %s: %w", v, err)
		}
		if err := table.SetIndex(sitetable.GidIndex); err != nil {
			return fmt.Errorf("%w: site data %s has no usable %q column: %v",
				ErrLookup, v, sitetable.GidIndex, err)
		}
		l.siteData = table
		return nil
	case *sitetable.Table:
		if !v.Indexed() {
			if err := v.SetIndex(sitetable.GidIndex); err != nil {
				return fmt.Errorf("%w: site data table has no usable %q column: %v",
					ErrLookup, sitetable.GidIndex, err)
			}
		}
		l.siteData = v
		return nil
	default:
		return fmt.Errorf("site data must be a csv path or a site table, got %T", sd)
	}
}

// Meta returns the site metadata of the capacity factor source, gid
// indexed, reading it at most once.
func (l *LCOE) Meta() (*sitetable.Table, error) {
	if l.meta != nil {
		return l.meta, nil
	}
	src, err := l.store.Open(l.cfFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open cf file %s: %w", l.cfFile, err)
	}
	defer src.Close()

	meta, err := src.Meta()
	if err != nil {
		return nil, fmt.Errorf("failed to read meta from %s: %w", l.cfFile, err)
	}
	if !meta.Indexed() {
		if err := meta.SetIndex(sitetable.GidIndex); err != nil {
			return nil, fmt.Errorf("%w: meta of %s has no usable %q column: %v",
				ErrLookup, l.cfFile, sitetable.GidIndex, err)
		}
	}
	l.meta = meta
	return l.meta, nil
}

// SiteDF assembles the per-site input table handed to the engine: site
// metadata, the capacity factor column, and the joined site data. It is
// built at most once.
func (l *LCOE) SiteDF(ctx context.Context) (*sitetable.Table, error) {
	if l.siteDF != nil {
		return l.siteDF, nil
	}
	meta, err := l.Meta()
	if err != nil {
		return nil, err
	}
	df, err := meta.Filter(meta.Gids())
	if err != nil {
		return nil, err
	}

	cf, err := l.capacityFactors(ctx, df)
	if err != nil {
		return nil, err
	}
	if cf != nil {
		// A dataset takes precedence over a stale means column in the meta.
		if err := df.SetFloatColumn(outputs.MeansDataset, cf); err != nil {
			return nil, err
		}
	}

	if l.siteData != nil {
		df, err = df.LeftJoin(l.siteData, "_site")
		if err != nil {
			return nil, fmt.Errorf("failed to join site data: %w", err)
		}
	}
	if err := l.checkOffshore(ctx, df); err != nil {
		return nil, err
	}

	l.siteDF = df
	return l.siteDF, nil
}

// capacityFactors resolves the capacity factor inputs, in preference
// order: the year-specific dataset, the precomputed means dataset, and
// finally a means column already present in the metadata (in which case
// nil is returned since the table already carries the values).
func (l *LCOE) capacityFactors(ctx context.Context, df *sitetable.Table) ([]float64, error) {
	logger := ctxlog.FromContext(ctx)
	src, err := l.store.Open(l.cfFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open cf file %s: %w", l.cfFile, err)
	}
	defer src.Close()

	if year, ok := l.cfYear.Value(); ok {
		name := fmt.Sprintf("cf_%d", year)
		if vals, err := src.Dataset(name); err == nil {
			logger.Debug("Using year-specific capacity factor dataset.", "dataset", name)
			return vals, nil
		}
	}
	if vals, err := src.Dataset(outputs.MeansDataset); err == nil {
		logger.Debug("Using precomputed capacity factor means dataset.", "dataset", outputs.MeansDataset)
		return vals, nil
	}
	if df.HasColumn(outputs.MeansDataset) {
		logger.Debug("Using capacity factor means column from site metadata.", "column", outputs.MeansDataset)
		return nil, nil
	}
	return nil, fmt.Errorf("%w: no capacity factor input for year %q: %s has no year dataset, no %q dataset, and no %q meta column",
		ErrLookup, l.cfYear, l.cfFile, outputs.MeansDataset, outputs.MeansDataset)
}

// checkOffshore normalizes the offshore flag to booleans, once per
// analysis. Stored files carry the flag as 0/1 numerics; downstream
// consumers branch on it, so the column is cast in place. When any site
// is flagged, a log line records that its cost inputs are owned by the
// offshore balance-of-system model.
func (l *LCOE) checkOffshore(ctx context.Context, df *sitetable.Table) error {
	if l.offshoreChecked || !df.HasColumn(offshoreColumn) {
		return nil
	}
	l.offshoreChecked = true

	vals, _ := df.Column(offshoreColumn)
	flags := make([]any, len(vals))
	offshore := 0
	for i, v := range vals {
		b := truthy(v)
		flags[i] = b
		if b {
			offshore++
		}
	}
	if err := df.SetColumn(offshoreColumn, flags); err != nil {
		return err
	}
	if offshore > 0 {
		ctxlog.FromContext(ctx).Info("Found offshore sites in the project points; offshore inputs will be handled by ORCA.",
			"offshore_sites", offshore)
	}
	return nil
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case float32:
		return b != 0
	case int:
		return b != 0
	case int64:
		return b != 0
	}
	return false
}

// RunPartition computes one partition's results: the site table is
// narrowed to the partition's sites and handed to the engine along with
// the output request.
func (l *LCOE) RunPartition(ctx context.Context, split *points.Control, siteDF *sitetable.Table) (map[int]sam.SiteResult, error) {
	if siteDF.IndexName() != sitetable.GidIndex {
		ctxlog.FromContext(ctx).Warn("Site table index label is not the site gid; results may be misaligned.",
			"index", siteDF.IndexName(), "expected", sitetable.GidIndex)
	}
	partSites, err := siteDF.Filter(split.Sites())
	if err != nil {
		return nil, err
	}
	return l.engine.Run(ctx, split, partSites, l.outputRequest)
}

// Run executes the analysis over the partition plan, serially when
// workers <= 1 and across a bounded worker pool otherwise. Every
// requested site must exist in the capacity factor source before any
// worker is dispatched, and every site in the plan must come back with
// results; either violation is fatal.
func (l *LCOE) Run(ctx context.Context, workers int) (*exec.Out, error) {
	logger := ctxlog.FromContext(ctx)
	df, err := l.SiteDF(ctx)
	if err != nil {
		return nil, err
	}

	meta, err := l.Meta()
	if err != nil {
		return nil, err
	}
	known := make(map[int]struct{}, meta.Len())
	for _, gid := range meta.Gids() {
		known[gid] = struct{}{}
	}
	var absent []int
	for _, gid := range l.pc.Sites() {
		if _, ok := known[gid]; !ok {
			absent = append(absent, gid)
		}
	}
	if len(absent) > 0 {
		return nil, fmt.Errorf("site gids %v are not present in the capacity factor source %s", absent, l.cfFile)
	}

	fn := func(ctx context.Context, split *points.Control) (map[int]sam.SiteResult, error) {
		return l.RunPartition(ctx, split, df)
	}

	var out *exec.Out
	if workers <= 1 {
		out, err = exec.Single(ctx, fn, l.pc)
	} else {
		out, err = exec.Parallel(ctx, fn, l.pc, workers)
	}
	if err != nil {
		return nil, err
	}

	var missing []int
	for _, gid := range l.pc.Sites() {
		if _, ok := out.Result(gid); !ok {
			missing = append(missing, gid)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("results are missing for sites %v", missing)
	}

	logger.Info("Econ analysis complete.", "sites", out.Len(), "vars", out.Vars())
	l.out = out
	return out, nil
}

// Out returns the merged aggregate of the last run, or nil before Run.
func (l *LCOE) Out() *exec.Out { return l.out }

// Flush persists the merged aggregate through the output store. It is a
// no-op when no output file is configured or no results exist, so a
// dry-run or an empty analysis never touches disk.
func (l *LCOE) Flush(ctx context.Context, mode outputs.WriteMode) error {
	logger := ctxlog.FromContext(ctx)
	if l.fout == "" || l.out.Empty() {
		logger.Debug("Flush skipped.", "fout", l.fout, "results", l.out.Len())
		return nil
	}

	path := handleFout(l.fout, l.dirout, l.cfYear)
	meta, err := l.Meta()
	if err != nil {
		return err
	}
	flushMeta, err := meta.Filter(l.out.Gids())
	if err != nil {
		return err
	}

	prov := outputs.Provenance{
		RunID:      uuid.NewString(),
		Technology: l.technology,
		SAMConfigs: l.samConfigs,
		CreatedAt:  time.Now().UTC(),
	}

	present := make(map[string]struct{})
	for _, name := range l.out.Vars() {
		present[name] = struct{}{}
	}

	writeMode := mode
	for _, name := range l.outputRequest {
		if _, ok := present[name]; !ok {
			logger.Warn("Requested output variable has no results; not flushing it.", "var", name)
			continue
		}
		vals, err := l.out.Unpack(name, flushMeta.Gids())
		if err != nil {
			return err
		}
		var attrs outputs.Attrs
		if name == lcoeDataset {
			attrs = outputs.Attrs{"scale_factor": "1", "units": "dol/MWh"}
		}
		if err := l.store.WriteMeans(path, flushMeta, name, vals, attrs, "float32", prov, writeMode); err != nil {
			return fmt.Errorf("failed to flush %q to %s: %w", name, path, err)
		}
		writeMode = outputs.Append
	}

	logger.Info("Flushed econ outputs to disk.", "path", path, "run_id", prov.RunID)
	return nil
}

// Summary logs per-variable aggregate statistics of the merged results.
func (l *LCOE) Summary(ctx context.Context) {
	if l.out.Empty() {
		return
	}
	logger := ctxlog.FromContext(ctx)
	gids := l.out.Gids()
	for _, name := range l.out.Vars() {
		vals, err := l.out.Unpack(name, gids)
		if err != nil {
			continue
		}
		mean, std := stat.MeanStdDev(vals, nil)
		logger.Info("Output summary.", "var", name, "sites", len(vals), "mean", mean, "stdev", std)
	}
}

// RunDirect is the one-shot driver: bind, run, flush, summarize.
func RunDirect(ctx context.Context, p Params, workers int, mode outputs.WriteMode) (*LCOE, error) {
	l, err := New(p)
	if err != nil {
		return nil, err
	}
	if _, err := l.Run(ctx, workers); err != nil {
		return nil, err
	}
	if err := l.Flush(ctx, mode); err != nil {
		return nil, err
	}
	l.Summary(ctx)
	return l, nil
}

// handleFout normalizes the configured output filename: the container
// extension is appended when absent, and the year tag is injected before
// the extension when the name does not already carry it.
func handleFout(fout, dirout string, year Year) string {
	name := fout
	if !strings.HasSuffix(name, ".h5") {
		name += ".h5"
	}
	if tag := year.String(); tag != "" {
		stem := strings.TrimSuffix(name, ".h5")
		if !strings.Contains(stem, tag) {
			name = stem + "_" + tag + ".h5"
		}
	}
	return filepath.Join(dirout, name)
}
