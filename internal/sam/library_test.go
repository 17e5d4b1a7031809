package sam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/mmdione/reV/internal/points"
	"github.com/mmdione/reV/internal/sitetable"
)

func writeBundle(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadLibrary(t *testing.T) {
	onshore := writeBundle(t, "onshore.hcl", "system_capacity = 20000\nfixed_charge_rate = 0.096\n")
	offshore := writeBundle(t, "offshore.hcl", "system_capacity = 600000\n")

	lib, err := LoadLibrary(map[string]string{"onshore": onshore, "offshore": offshore})
	require.NoError(t, err)

	assert.Equal(t, 2, lib.Len())
	assert.Equal(t, []string{"offshore", "onshore"}, lib.IDs())

	bundle, ok := lib.Bundle("onshore")
	require.True(t, ok)
	assert.Equal(t, onshore, bundle.Path)
	assert.True(t, bundle.Params["system_capacity"].RawEquals(cty.NumberIntVal(20000)))

	_, ok = lib.Bundle("floating")
	assert.False(t, ok)

	snap := lib.Snapshot()
	assert.Equal(t, map[string]string{"onshore": onshore, "offshore": offshore}, snap)
}

func TestLoadLibraryRejectsMalformedBundle(t *testing.T) {
	bad := writeBundle(t, "bad.hcl", "block \"nope\" {\n  x = 1\n}\n")

	_, err := LoadLibrary(map[string]string{"bad": bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flat attribute set")
}

type noopEngine struct{}

func (noopEngine) Run(ctx context.Context, pc *points.Control, siteParams *sitetable.Table,
	request []string) (map[int]SiteResult, error) {
	return map[int]SiteResult{}, nil
}

func TestEngineRegistry(t *testing.T) {
	Register("registry_test_tech", noopEngine{})

	_, ok := Lookup("registry_test_tech")
	assert.True(t, ok)
	_, ok = Lookup("unregistered_tech")
	assert.False(t, ok)

	assert.Panics(t, func() { Register("registry_test_tech", noopEngine{}) })
}
