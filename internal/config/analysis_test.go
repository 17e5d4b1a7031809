package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmdione/reV/internal/testutil"
)

const baseConfig = `
dirout         = "./out"
project_points = [3, 1, 2]
sam_files      = "./sam.hcl"

project_control {
  name           = "test_run"
  technology     = "PV Watts"
  analysis_years = [2012, 2013]
  output_request = ["cf", "lcoe"]
}

execution_control {
  option = "eagle"
  nodes  = 2
}
`

func TestAnalysisConfigResolution(t *testing.T) {
	ctx, _ := testutil.LogContext()
	cfg, err := Parse([]byte(baseConfig), "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "test_run", cfg.Name())
	assert.Equal(t, "./out", cfg.Dirout())

	tech, err := cfg.Technology()
	require.NoError(t, err)
	assert.Equal(t, "pvwatts", tech, "technology must be lowercased and stripped of whitespace")

	years, err := cfg.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2012, 2013}, years)

	files, err := cfg.SAMFiles()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"default": "./sam.hcl"}, files,
		"a single sam file is registered under the default id")

	request, err := cfg.OutputRequest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cf_mean", "lcoe_fcr"}, request)

	pc, err := cfg.PointsControl(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, pc.Sites(), "configured gid order is preserved")
	assert.Equal(t, 2, pc.SitesPerSplit(), "ceil(3 sites / 2 nodes)")
}

func TestPointsControlDivisors(t *testing.T) {
	t.Run("local uses ppn", func(t *testing.T) {
		ctx, _ := testutil.LogContext()
		cfg, err := Parse([]byte(`
project_points = { start = 0, stop = 10 }
sam_files      = "./sam.hcl"
execution_control {
  option = "local"
  ppn    = 4
}
`), "test.hcl")
		require.NoError(t, err)

		pc, err := cfg.PointsControl(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, pc.Len())
		assert.Equal(t, 3, pc.SitesPerSplit(), "ceil(10 sites / 4 processes)")
	})

	t.Run("local defaults ppn to 1", func(t *testing.T) {
		ctx, _ := testutil.LogContext()
		cfg, err := Parse([]byte(`
project_points = { start = 0, stop = 10 }
sam_files      = "./sam.hcl"
execution_control {
  option = "local"
}
`), "test.hcl")
		require.NoError(t, err)

		pc, err := cfg.PointsControl(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, pc.SitesPerSplit())
	})

	t.Run("unrecognized option is fatal", func(t *testing.T) {
		ctx, _ := testutil.LogContext()
		cfg, err := Parse([]byte(`
project_points = [0, 1]
sam_files      = "./sam.hcl"
execution_control {
  option = "slurm"
}
`), "test.hcl")
		require.NoError(t, err)

		_, err = cfg.PointsControl(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfig)
		assert.Contains(t, err.Error(), `"slurm" is not recognized`)
	})
}

func TestUnknownKeyIsRejected(t *testing.T) {
	_, err := Parse([]byte(baseConfig+"\nbogus_key = 1\n"), "test.hcl")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "bogus_key")
}

func TestMissingYearsWarnsOnce(t *testing.T) {
	ctx, buf := testutil.LogContext()
	cfg, err := Parse([]byte(`
project_points = [0, 1]
sam_files      = "./sam.hcl"
execution_control {
  option = "local"
}
`), "test.hcl")
	require.NoError(t, err)

	years, err := cfg.Years(ctx)
	require.NoError(t, err)
	assert.Nil(t, years)

	// Memoized accessor must not repeat the warning.
	_, err = cfg.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "Analysis years were not specified"))
}

func TestDefaultOutputRequest(t *testing.T) {
	ctx, _ := testutil.LogContext()
	cfg, err := Parse([]byte(`
project_points = [0]
sam_files      = "./sam.hcl"
execution_control {
  option = "local"
}
`), "test.hcl")
	require.NoError(t, err)

	request, err := cfg.OutputRequest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cf_mean"}, request)
}

func TestRequiredFields(t *testing.T) {
	t.Run("technology", func(t *testing.T) {
		cfg, err := Parse([]byte(`sam_files = "./sam.hcl"`), "test.hcl")
		require.NoError(t, err)
		_, err = cfg.Technology()
		assert.ErrorIs(t, err, ErrConfig)
	})

	t.Run("sam files", func(t *testing.T) {
		cfg, err := Parse([]byte(`project_points = [0]`), "test.hcl")
		require.NoError(t, err)
		_, err = cfg.SAMFiles()
		assert.ErrorIs(t, err, ErrConfig)
	})

	t.Run("project points", func(t *testing.T) {
		ctx, _ := testutil.LogContext()
		cfg, err := Parse([]byte(`
sam_files = "./sam.hcl"
execution_control {
  option = "local"
}
`), "test.hcl")
		require.NoError(t, err)
		_, err = cfg.PointsControl(ctx)
		assert.ErrorIs(t, err, ErrConfig)
	})
}
