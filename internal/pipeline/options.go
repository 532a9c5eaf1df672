package pipeline

import (
	"time"

	"github.com/sprite-ai/pickgo/internal/patchtool"
	"github.com/sprite-ai/pickgo/internal/validate"
)

// Options configures one Pick call. LLM repair limits and the interactive
// approval gate are configured once on the Repair Engine at construction
// time instead of per call, since they don't vary across a Pick's own
// recursive dependency picks.
type Options struct {
	// LLMEnabled, if false, skips the LLM stage entirely: a patch stage
	// that leaves rejects fails the pick immediately.
	LLMEnabled bool
	LLMModel   string
	LLMRegion  string
	LLMProject string

	// PathRewrites is an ordered list of "old_prefix:new_prefix" rules,
	// first match wins.
	PathRewrites []string

	// ValidationCommand is the executable plus fixed arguments; changed
	// file paths are appended at run time.
	ValidationCommand  []string
	ValidationTimeout  time.Duration
	RunValidationAfter validate.Scope

	Signoff         bool
	RecordOrigin    bool
	DependencyDepth int

	// FuzzLadder overrides patchtool.DefaultLadder when non-empty.
	FuzzLadder []int

	// ExtraCherryPickArgs carries flags recognized by the native
	// cherry-pick itself (e.g. "--mainline"), passed through verbatim.
	ExtraCherryPickArgs []string
}

func (o Options) fuzzLadder() []int {
	if len(o.FuzzLadder) > 0 {
		return o.FuzzLadder
	}
	return patchtool.DefaultLadder
}
