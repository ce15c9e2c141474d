package main

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_OutputSchema(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, io.Discard, []string{"--output-schema"})
	require.NoError(t, err)

	// The schema must be a valid JSON document describing the output.
	var schema map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &schema))
	assert.Contains(t, out.String(), "attribute_path")
}

func TestRun_UnknownFlag(t *testing.T) {
	t.Parallel()

	err := run(io.Discard, io.Discard, []string{"--no-such-flag"})
	require.Error(t, err)
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, io.Discard, []string{"--help"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "nixgraph discovers the derivations of a flake")
}
