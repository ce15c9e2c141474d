package nix

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/vk/nixgraphgo/internal/ctxlog"
	"github.com/vk/nixgraphgo/internal/derivation"
)

// DescribeDerivation evaluates a single derivation and returns its full
// description. One nix subprocess is spawned per call; there is no
// batching. A non-zero exit is returned as *CommandError and undecodable
// output as *PayloadError, both node-local failures the traversal engine
// treats as "abandon this branch".
func DescribeDerivation(ctx context.Context, opts EvalOptions, attributePath string) (*derivation.Description, error) {
	logger := ctxlog.FromContext(ctx)

	env := opts.evalEnv()
	env["TARGET_ATTRIBUTE_PATH"] = attributePath
	if opts.RuntimeOnly {
		env["RUNTIME_ONLY"] = "1"
	} else {
		env["RUNTIME_ONLY"] = "0"
	}

	stdout, _, err := opts.Runner.Run(ctx, env, opts.evalArgs(describeExpr)...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Described derivation.", "attribute_path", attributePath, "bytes", len(stdout))

	var description derivation.Description
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &description); err != nil {
		return nil, &PayloadError{AttributePath: attributePath, Err: err}
	}
	return &description, nil
}
