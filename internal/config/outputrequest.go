package config

import (
	"context"
	"sort"

	"github.com/mmdione/reV/internal/ctxlog"
)

// outputCorrections maps commonly expected aliases and typos of output
// variable names to their canonical SAM names.
var outputCorrections = map[string]string{
	"cf_means":                  "cf_mean",
	"cf":                        "cf_mean",
	"capacity_factor":           "cf_mean",
	"capacityfactor":            "cf_mean",
	"cf_profiles":               "cf_profile",
	"profiles":                  "cf_profile",
	"profile":                   "cf_profile",
	"generation":                "annual_energy",
	"yield":                     "energy_yield",
	"generation_profile":        "gen_profile",
	"generation_profiles":       "gen_profile",
	"gen_profiles":              "gen_profile",
	"plane_of_array":            "poa",
	"plane_of_array_irradiance": "poa",
	"lcoe":                      "lcoe_fcr",
	"lcoe_nominal":              "lcoe_nom",
	"real_lcoe":                 "lcoe_real",
	"net_present_value":         "npv",
	"ppa":                       "ppa_price",
	"single_owner":              "ppa_price",
	"singleowner":               "ppa_price",
}

// DefaultOutputRequest is the output request used when none is configured.
var DefaultOutputRequest = []string{"cf_mean"}

// CanonicalOutputs returns the sorted set of known canonical output
// variable names.
func CanonicalOutputs() []string {
	seen := make(map[string]struct{})
	for _, canonical := range outputCorrections {
		seen[canonical] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ResolveOutputRequest canonicalizes requested output variable names.
// Canonical names pass through unchanged. Known aliases are rewritten with
// a warning naming both forms. Unrecognized names also pass through, with
// a warning listing the known canonical names, since they may fail in a
// downstream stage. Order is preserved; resolution is deterministic and
// idempotent.
func ResolveOutputRequest(ctx context.Context, requests []string) []string {
	logger := ctxlog.FromContext(ctx)
	canonical := make(map[string]struct{})
	for _, c := range outputCorrections {
		canonical[c] = struct{}{}
	}

	resolved := make([]string, 0, len(requests))
	for _, request := range requests {
		if _, ok := canonical[request]; ok {
			resolved = append(resolved, request)
			continue
		}
		if corrected, ok := outputCorrections[request]; ok {
			logger.Warn("Correcting output request.", "from", request, "to", corrected)
			resolved = append(resolved, corrected)
			continue
		}
		logger.Warn("Did not recognize requested output variable. Passing forward, but this may cause a downstream error.",
			"request", request, "known", CanonicalOutputs())
		resolved = append(resolved, request)
	}
	return resolved
}
