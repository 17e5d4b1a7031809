package exec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmdione/reV/internal/points"
	"github.com/mmdione/reV/internal/sam"
)

func doubler(ctx context.Context, pc *points.Control) (map[int]sam.SiteResult, error) {
	out := make(map[int]sam.SiteResult, pc.Len())
	for _, gid := range pc.Sites() {
		out[gid] = sam.SiteResult{"lcoe_fcr": float64(gid * 2)}
	}
	return out, nil
}

func newControl(t *testing.T, n, sitesPerSplit int) *points.Control {
	t.Helper()
	pp, err := points.FromRange(0, n, "default")
	require.NoError(t, err)
	pc, err := points.NewControl(pp, sitesPerSplit)
	require.NoError(t, err)
	return pc
}

func TestSerialAndParallelAgree(t *testing.T) {
	pc := newControl(t, 17, 4)
	ctx := context.Background()

	serial, err := Single(ctx, doubler, pc)
	require.NoError(t, err)
	parallel, err := Parallel(ctx, doubler, pc, 4)
	require.NoError(t, err)

	assert.Equal(t, serial.Gids(), parallel.Gids())
	sv, err := serial.Unpack("lcoe_fcr", serial.Gids())
	require.NoError(t, err)
	pv, err := parallel.Unpack("lcoe_fcr", parallel.Gids())
	require.NoError(t, err)
	assert.Equal(t, sv, pv)
}

func TestMergeOrderIsSiteOrder(t *testing.T) {
	pp, err := points.FromSlice([]int{9, 3, 7, 1}, "default")
	require.NoError(t, err)
	pc, err := points.NewControl(pp, 2)
	require.NoError(t, err)

	out, err := Single(context.Background(), doubler, pc)
	require.NoError(t, err)
	assert.Equal(t, []int{9, 3, 7, 1}, out.Gids())
}

func TestPartitionFailurePropagates(t *testing.T) {
	pc := newControl(t, 10, 3)
	failing := func(ctx context.Context, split *points.Control) (map[int]sam.SiteResult, error) {
		for _, gid := range split.Sites() {
			if gid == 5 {
				return nil, errors.New("simulation blew up")
			}
		}
		return doubler(ctx, split)
	}

	t.Run("serial", func(t *testing.T) {
		_, err := Single(context.Background(), failing, pc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "partition 1 failed")
	})

	t.Run("parallel", func(t *testing.T) {
		_, err := Parallel(context.Background(), failing, pc, 4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulation blew up")
	})
}

func TestNilPartitionResultIsFatal(t *testing.T) {
	pc := newControl(t, 4, 2)
	silent := func(ctx context.Context, split *points.Control) (map[int]sam.SiteResult, error) {
		if split.SplitIndex() == 1 {
			return nil, nil
		}
		return doubler(ctx, split)
	}

	_, err := Single(context.Background(), silent, pc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "partition 1 returned no results")
}

func TestCancelledContextStopsSerialRun(t *testing.T) {
	pc := newControl(t, 4, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Single(ctx, doubler, pc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnpack(t *testing.T) {
	pc := newControl(t, 3, 2)
	out, err := Single(context.Background(), doubler, pc)
	require.NoError(t, err)

	vals, err := out.Unpack("lcoe_fcr", []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 0}, vals)

	_, err = out.Unpack("ppa_price", out.Gids())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ppa_price")

	assert.Equal(t, []string{"lcoe_fcr"}, out.Vars())
}
