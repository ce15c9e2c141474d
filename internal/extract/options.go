package extract

import (
	"runtime"

	"github.com/vk/nixgraphgo/internal/nix"
)

// Options configures one extraction run.
type Options struct {
	// FlakeRef is the flake to extract, e.g. "nixpkgs" or
	// "github:NixOS/nix".
	FlakeRef string
	// System is the platform to evaluate for; empty means the evaluating
	// machine's own system.
	System string
	// AttributePath restricts extraction to one subtree of the flake's
	// packages; empty extracts everything.
	AttributePath string
	// Offline forbids nix from touching the network during evaluation.
	Offline bool
	// RuntimeOnly limits dependency expansion to run-time input kinds.
	RuntimeOnly bool

	// IncludeNarInfo enriches every described derivation that has a
	// resolved output path with the narinfo record of its artifact.
	IncludeNarInfo bool
	// BinaryCaches are the cache servers to fetch narinfo records from.
	// Empty with IncludeNarInfo set means "resolve the configured
	// substituters once at startup".
	BinaryCaches []string

	// Workers bounds how many derivations are described concurrently.
	// Zero or negative means one per CPU.
	Workers int

	// Progress requests the secondary lifecycle event stream. When unset
	// no events are produced at all.
	Progress bool

	// Runner overrides the subprocess runner, for tests. Nil means the
	// real nix binary.
	Runner nix.Runner
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}
