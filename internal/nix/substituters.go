package nix

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Substituters resolves the binary caches the local nix install and the
// target flake are configured with. The local configuration's caches come
// first, then the flake's extra-substituters. This is queried once per run,
// by the driver, when narinfo enrichment is requested without an explicit
// cache list.
func Substituters(ctx context.Context, runner Runner, flakeRef string) ([]string, error) {
	var fromConf, fromFlake []string

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		fromConf, err = substitutersFromConf(groupCtx, runner)
		return err
	})
	group.Go(func() error {
		var err error
		fromFlake, err = substitutersFromFlakeRef(groupCtx, runner, flakeRef)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return append(fromConf, fromFlake...), nil
}

// substitutersFromConf reads the substituters setting of the local nix
// configuration.
func substitutersFromConf(ctx context.Context, runner Runner) ([]string, error) {
	stdout, _, err := runner.Run(ctx, nil, "show-config", "--json")
	if err != nil {
		return nil, err
	}

	var config struct {
		Substituters struct {
			Value []string `json:"value"`
		} `json:"substituters"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &config); err != nil {
		return nil, &PayloadError{AttributePath: "nix.conf", Err: err}
	}
	return config.Substituters.Value, nil
}

// substitutersFromFlakeRef reads the extra-substituters the flake itself
// declares in its nixConfig block.
func substitutersFromFlakeRef(ctx context.Context, runner Runner, flakeRef string) ([]string, error) {
	expr := fmt.Sprintf(
		"(import ((builtins.getFlake %q).outPath + \"/flake.nix\")).nixConfig.extra-substituters or []",
		flakeRef,
	)

	stdout, _, err := runner.Run(ctx, nil, "eval", "--json", "--impure", "--expr", expr)
	if err != nil {
		return nil, err
	}

	var extra []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &extra); err != nil {
		return nil, &PayloadError{AttributePath: flakeRef, Err: err}
	}
	return extra, nil
}
