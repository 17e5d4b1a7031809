package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmdione/reV/internal/outputs"
	"github.com/mmdione/reV/internal/points"
	"github.com/mmdione/reV/internal/sam"
	"github.com/mmdione/reV/internal/sitetable"
	"github.com/mmdione/reV/internal/testutil"
)

type appTestEngine struct{}

func (appTestEngine) Run(ctx context.Context, pc *points.Control, siteParams *sitetable.Table,
	request []string) (map[int]sam.SiteResult, error) {

	out := make(map[int]sam.SiteResult, pc.Len())
	for _, gid := range pc.Sites() {
		v, ok := siteParams.Value(gid, outputs.MeansDataset)
		if !ok {
			return nil, fmt.Errorf("no capacity factor for site %d", gid)
		}
		res := make(sam.SiteResult, len(request))
		for _, name := range request {
			res[name] = 100 / v.(float64)
		}
		out[gid] = res
	}
	return out, nil
}

func init() {
	// The registry is process-global; register the test technology once.
	sam.Register("econtest", appTestEngine{})
}

func writeAppFixture(t *testing.T) (dir, cfgPath, cfPath string) {
	t.Helper()
	dir = testutil.WriteFiles(t, map[string]string{
		"sam.hcl":    "system_capacity = 5\nfixed_charge_rate = 0.096\n",
		"cf_2012.h5": "",
	})
	cfPath = filepath.Join(dir, "cf_2012.h5")
	cfgPath = filepath.Join(dir, "config.hcl")
	cfg := fmt.Sprintf(`
dirout  = %q
fout    = "econ_out"
cf_file = %q

project_points = { start = 0, stop = 4 }
sam_files      = %q

project_control {
  name           = "app_test"
  technology     = "Econ Test"
  analysis_years = 2012
  output_request = ["lcoe"]
}

execution_control {
  option = "local"
  ppn    = 2
}
`, dir, cfPath, filepath.Join(dir, "sam.hcl"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	return dir, cfgPath, cfPath
}

func TestAppRunEndToEnd(t *testing.T) {
	dir, cfgPath, cfPath := writeAppFixture(t)

	gids := []int{0, 1, 2, 3}
	store := testutil.CFStore(t, cfPath, gids, []float64{0.2, 0.25, 0.4, 0.5})

	appConfig, err := NewConfig(Config{
		ConfigPath: cfgPath,
		LogFormat:  "text",
		LogLevel:   "debug",
		Workers:    2,
	})
	require.NoError(t, err)

	buf := &testutil.SafeBuffer{}
	a := NewApp(buf, appConfig, store, nil)
	require.NoError(t, a.Run(context.Background()))

	outPath := filepath.Join(dir, "econ_out_2012.h5")
	require.True(t, store.Exists(outPath))

	src, err := store.Open(outPath)
	require.NoError(t, err)
	defer src.Close()

	vals, err := src.Dataset("lcoe_fcr")
	require.NoError(t, err)
	assert.InDelta(t, 500.0, vals[0], 1e-9)

	logs := buf.String()
	assert.Contains(t, logs, "Correcting output request.")
	assert.Contains(t, logs, "Econ analysis complete.")
	assert.Contains(t, logs, "Output summary.")
}

func TestAppValidateOnly(t *testing.T) {
	dir, cfgPath, cfPath := writeAppFixture(t)

	store := testutil.CFStore(t, cfPath, []int{0, 1, 2, 3}, []float64{0.2, 0.25, 0.4, 0.5})

	appConfig, err := NewConfig(Config{
		ConfigPath:   cfgPath,
		LogFormat:    "text",
		LogLevel:     "info",
		Workers:      1,
		ValidateOnly: true,
	})
	require.NoError(t, err)

	buf := &testutil.SafeBuffer{}
	a := NewApp(buf, appConfig, store, nil)
	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, buf.String(), "Configuration is valid.")
	assert.False(t, store.Exists(filepath.Join(dir, "econ_out_2012.h5")),
		"validation must not touch the output store")
}

func TestLoggerConfiguration(t *testing.T) {
	t.Run("json handler honors the configured level", func(t *testing.T) {
		buf := &testutil.SafeBuffer{}
		logger := newLogger(&Config{LogFormat: "json", LogLevel: "warn"}, buf)

		logger.Info("hidden")
		logger.Warn("shown")

		logs := buf.String()
		assert.NotContains(t, logs, "hidden")
		assert.Contains(t, logs, `"msg":"shown"`)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		buf := &testutil.SafeBuffer{}
		logger := newLogger(&Config{LogFormat: "text", LogLevel: "chatty"}, buf)

		logger.Debug("hidden")
		logger.Info("shown")

		logs := buf.String()
		assert.NotContains(t, logs, "hidden")
		assert.Contains(t, logs, "shown")
	})
}

func TestAppRunFailsWithoutEngine(t *testing.T) {
	_, cfgPath, cfPath := writeAppFixture(t)

	// Rewrite the config with a technology that has no registered engine.
	raw, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	cfg := string(raw)
	require.Contains(t, cfg, `technology     = "Econ Test"`)
	cfg = strings.Replace(cfg, `technology     = "Econ Test"`, `technology     = "unwired"`, 1)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	store := testutil.CFStore(t, cfPath, []int{0}, []float64{0.2})
	appConfig, err := NewConfig(Config{ConfigPath: cfgPath, LogFormat: "text", LogLevel: "error", Workers: 1})
	require.NoError(t, err)

	a := NewApp(&testutil.SafeBuffer{}, appConfig, store, nil)
	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no simulation engine registered for technology "unwired"`)
}
