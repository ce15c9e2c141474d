package extract

import (
	"context"

	"resty.dev/v3"

	"github.com/vk/nixgraphgo/internal/ctxlog"
	"github.com/vk/nixgraphgo/internal/derivation"
	"github.com/vk/nixgraphgo/internal/narinfo"
	"github.com/vk/nixgraphgo/internal/nix"
)

// Run performs one extraction: it resolves the binary cache list when
// enrichment needs one, discovers the root derivations, seeds the engine
// with one unit of work per root, and returns the stream. It returns as
// soon as discovery completes; the traversal itself proceeds on background
// goroutines.
func Run(ctx context.Context, opts Options) (*Stream, error) {
	logger := ctxlog.FromContext(ctx)

	runner := opts.Runner
	if runner == nil {
		runner = nix.ExecRunner{}
	}

	lib, err := nix.NewHelperLib()
	if err != nil {
		return nil, err
	}

	evalOpts := nix.EvalOptions{
		FlakeRef:    opts.FlakeRef,
		System:      opts.System,
		Offline:     opts.Offline,
		RuntimeOnly: opts.RuntimeOnly,
		Lib:         lib,
		Runner:      runner,
	}

	var enricher Enricher
	var client *resty.Client
	if opts.IncludeNarInfo {
		servers := opts.BinaryCaches
		if len(servers) == 0 {
			servers, err = nix.Substituters(ctx, runner, opts.FlakeRef)
			if err != nil {
				lib.Remove()
				return nil, err
			}
			logger.Info("Resolved binary caches from configuration.", "count", len(servers))
		}
		client = resty.New()
		enricher = &cacheEnricher{client: client, servers: servers}
	}

	logger.Info("Discovering root derivations.", "flake_ref", opts.FlakeRef, "attribute_path", opts.AttributePath)
	found, err := nix.FindAttributePaths(ctx, evalOpts, opts.AttributePath)
	if err != nil {
		lib.Remove()
		if client != nil {
			client.Close()
		}
		return nil, err
	}
	logger.Info("Discovered root derivations.", "count", len(found))

	roots := make([]string, 0, len(found))
	for _, drv := range found {
		roots = append(roots, drv.AttributePath)
	}

	eng := newEngine(&nixDescriber{opts: evalOpts}, enricher, opts.workers(), opts.Progress)
	return eng.start(ctx, roots, func() {
		lib.Remove()
		if client != nil {
			client.Close()
		}
	}), nil
}

// nixDescriber adapts the nix package's describe call to the engine's
// Describer interface.
type nixDescriber struct {
	opts nix.EvalOptions
}

func (d *nixDescriber) Describe(ctx context.Context, attributePath string) (*derivation.Description, error) {
	return nix.DescribeDerivation(ctx, d.opts, attributePath)
}

// cacheEnricher fetches narinfo records over the resolved server list.
type cacheEnricher struct {
	client  *resty.Client
	servers []string
}

func (c *cacheEnricher) Enrich(ctx context.Context, outputPath string) (*derivation.NarInfo, error) {
	return narinfo.Fetch(ctx, c.client, outputPath, c.servers)
}
