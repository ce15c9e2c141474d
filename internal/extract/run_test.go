package extract

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner plays the nix side of one extraction run: discovery
// answers with canned trace lines, description answers per attribute path.
type scriptedRunner struct {
	discoveryStderr string
	describeStdout  map[string]string
}

func (r *scriptedRunner) Run(_ context.Context, env map[string]string, _ ...string) (string, string, error) {
	// Description calls are the ones carrying the RUNTIME_ONLY toggle.
	if _, ok := env["RUNTIME_ONLY"]; ok {
		attributePath := env["TARGET_ATTRIBUTE_PATH"]
		stdout, ok := r.describeStdout[attributePath]
		if !ok {
			return "", "", fmt.Errorf("unexpected describe of %q", attributePath)
		}
		return stdout, "", nil
	}
	return "", r.discoveryStderr, nil
}

func describePayload(attributePath, outputPath string, inputs string) string {
	return fmt.Sprintf(`{
		"attribute_path": %q,
		"derivation_path": null,
		"output_path": %q,
		"outputs": [],
		"name": %q,
		"parsed_name": {"name": %q, "version": ""},
		"nixpkgs_metadata": {"description": "", "pname": "", "version": "", "broken": false, "homepage": "", "licenses": []},
		"src": null,
		"build_inputs": [%s]
	}`, attributePath, outputPath, attributePath, attributePath, inputs)
}

func TestRun_EndToEndWithScriptedNix(t *testing.T) {
	runner := &scriptedRunner{
		discoveryStderr: `trace: {"foundDrvs":[{"attributePath":"hello","outputPath":"/nix/store/aaa-hello"},{"attributePath":"figlet","outputPath":"/nix/store/bbb-figlet"}]}
`,
		describeStdout: map[string]string{
			"hello": describePayload("hello", "/nix/store/aaa-hello",
				`{"attribute_path": "glibc", "build_input_type": "buildInputs", "output_path": "/nix/store/ccc-glibc"}`),
			"figlet": describePayload("figlet", "/nix/store/bbb-figlet", ``),
			"glibc":  describePayload("glibc", "/nix/store/ccc-glibc", ``),
		},
	}

	stream, err := Run(context.Background(), Options{
		FlakeRef: "nixpkgs",
		System:   "x86_64-linux",
		Workers:  2,
		Runner:   runner,
	})
	require.NoError(t, err)

	emitted := make(map[string]int)
	for description := range stream.Results() {
		emitted[description.AttributePath]++
	}
	assert.Equal(t, map[string]int{"hello": 1, "figlet": 1, "glibc": 1}, emitted)
}

func TestRun_EmptyDiscoveryTerminates(t *testing.T) {
	runner := &scriptedRunner{describeStdout: map[string]string{}}
	// Discovery succeeds but reports nothing; the stream must still
	// terminate cleanly with zero results.
	stream, err := Run(context.Background(), Options{FlakeRef: "nixpkgs", Runner: runner})
	require.NoError(t, err)
	for range stream.Results() {
		t.Fatal("no results expected")
	}
}
