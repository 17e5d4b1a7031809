package sam

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmdione/reV/internal/points"
	"github.com/mmdione/reV/internal/sitetable"
)

// SiteResult holds one site's scalar outputs keyed by output variable.
type SiteResult map[string]float64

// Engine is the external single-site simulation engine. One call computes
// the requested output variables for every site in the partition, using
// the gid-indexed siteParams table as an auxiliary per-site parameter
// source. Implementations must be pure with respect to their inputs: no
// shared mutable state across partitions.
type Engine interface {
	Run(ctx context.Context, pc *points.Control, siteParams *sitetable.Table,
		request []string) (map[int]SiteResult, error)
}

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]Engine)
)

// Register makes an engine available under a name. Registering the same
// name twice is a programmer error.
func Register(name string, e Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	if _, exists := engines[name]; exists {
		panic(fmt.Sprintf("simulation engine %q already registered", name))
	}
	slog.Debug("Registering simulation engine.", "name", name)
	engines[name] = e
}

// Lookup returns the engine registered under name.
func Lookup(name string) (Engine, bool) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	e, ok := engines[name]
	return e, ok
}
