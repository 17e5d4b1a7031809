package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmdione/reV/internal/testutil"
)

func TestResolveOutputRequest(t *testing.T) {
	t.Run("canonical names pass through", func(t *testing.T) {
		ctx, buf := testutil.LogContext()
		got := ResolveOutputRequest(ctx, []string{"cf_mean", "lcoe_fcr"})
		assert.Equal(t, []string{"cf_mean", "lcoe_fcr"}, got)
		assert.NotContains(t, buf.String(), "Correcting output request.")
	})

	t.Run("aliases are corrected with a warning", func(t *testing.T) {
		ctx, buf := testutil.LogContext()
		got := ResolveOutputRequest(ctx, []string{"cf", "lcoe", "plane_of_array"})
		assert.Equal(t, []string{"cf_mean", "lcoe_fcr", "poa"}, got)
		assert.Equal(t, 3, strings.Count(buf.String(), "Correcting output request."))
	})

	t.Run("resolution is idempotent", func(t *testing.T) {
		ctx, _ := testutil.LogContext()
		once := ResolveOutputRequest(ctx, []string{"cf", "generation"})

		ctx2, buf := testutil.LogContext()
		twice := ResolveOutputRequest(ctx2, once)
		assert.Equal(t, once, twice)
		assert.NotContains(t, buf.String(), "Correcting output request.")
	})

	t.Run("unrecognized names pass through with a warning", func(t *testing.T) {
		ctx, buf := testutil.LogContext()
		got := ResolveOutputRequest(ctx, []string{"frobnicate"})
		assert.Equal(t, []string{"frobnicate"}, got)
		assert.Contains(t, buf.String(), "Did not recognize requested output variable.")
	})

	t.Run("order is preserved", func(t *testing.T) {
		ctx, _ := testutil.LogContext()
		got := ResolveOutputRequest(ctx, []string{"lcoe", "cf", "npv"})
		assert.Equal(t, []string{"lcoe_fcr", "cf_mean", "npv"}, got)
	})
}

func TestCanonicalOutputsSortedUnique(t *testing.T) {
	outs := CanonicalOutputs()
	require.NotEmpty(t, outs)
	assert.True(t, sortedUnique(outs))
	assert.Contains(t, outs, "cf_mean")
	assert.Contains(t, outs, "lcoe_fcr")
}

func sortedUnique(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] <= s[i-1] {
			return false
		}
	}
	return true
}
