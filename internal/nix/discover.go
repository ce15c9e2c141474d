package nix

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/vk/nixgraphgo/internal/ctxlog"
)

// LoosePath is an optional store path that decodes any non-string JSON
// value to the empty string. Discovery output occasionally reports false
// instead of null for paths it could not resolve, and those must be
// discarded rather than failing the whole chunk.
type LoosePath string

func (p *LoosePath) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*p = ""
		return nil
	}
	*p = LoosePath(s)
	return nil
}

// FoundDrv is one root derivation reported by discovery.
type FoundDrv struct {
	AttributePath  string    `json:"attributePath"`
	DerivationPath LoosePath `json:"derivationPath"`
	OutputPath     LoosePath `json:"outputPath"`
}

// foundDrvChunk is one trace line of discovery output.
type foundDrvChunk struct {
	FoundDrvs []FoundDrv `json:"foundDrvs"`
}

// FindAttributePaths lists the root derivations of the flake, optionally
// restricted to the subtree below attributePathFilter. The evaluation
// reports its findings as `trace: `-prefixed JSON lines on stderr;
// malformed lines are logged and skipped so one bad chunk never aborts
// discovery.
func FindAttributePaths(ctx context.Context, opts EvalOptions, attributePathFilter string) ([]FoundDrv, error) {
	env := opts.evalEnv()
	if attributePathFilter != "" {
		env["TARGET_ATTRIBUTE_PATH"] = attributePathFilter
	}

	_, stderr, err := opts.Runner.Run(ctx, env, opts.evalArgs(findAttributePathsExpr)...)
	if err != nil {
		return nil, err
	}

	return parseFoundDrvs(ctx, stderr), nil
}

// parseFoundDrvs decodes the trace lines of a discovery run.
func parseFoundDrvs(ctx context.Context, stderr string) []FoundDrv {
	logger := ctxlog.FromContext(ctx)

	var found []FoundDrv
	for line := range strings.Lines(stderr) {
		line = strings.TrimRight(line, "\n")
		if line == "" {
			continue
		}

		payload, ok := strings.CutPrefix(line, "trace: ")
		if !ok {
			logger.Warn("Unexpected discovery output, attempting to continue.", "line", line)
			continue
		}

		var chunk foundDrvChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			logger.Warn("Could not parse discovery chunk, attempting to continue.", "error", err)
			continue
		}
		found = append(found, chunk.FoundDrvs...)
	}
	return found
}
