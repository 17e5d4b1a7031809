// Package pipeline defines the contract consumed from the pipeline
// resolver collaborator: turning the PIPELINE sentinel in a configured
// file path into the concrete output path(s) of a named prior analysis
// stage. Stage bookkeeping (which run produced what, in which years) is
// owned by the resolver, not by this module.
package pipeline

// Sentinel is the literal token in a configured file path that signals
// deferred resolution to a prior stage's output.
const Sentinel = "PIPELINE"

// EconStage is the prior-stage name requested when resolving capacity
// factor inputs for an econ analysis.
const EconStage = "econ"

// Resolver resolves the output file path(s) produced by a named prior
// analysis stage under the given output directory.
type Resolver interface {
	ParsePrevious(dirout, stage string) ([]string, error)
}
