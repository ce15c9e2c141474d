// Package config loads the optional extraction config file. The file is
// HCL and may reference process environment variables through the `env`
// map, e.g. `servers = [env.NIXGRAPH_CACHE]`. Command line flags always
// take precedence over file values.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// File is the decoded config file. Every field is optional; nil means
// "not set here", so the CLI can tell file values from defaults.
type File struct {
	Target     *TargetBlock     `hcl:"target,block"`
	Caches     *CachesBlock     `hcl:"caches,block"`
	Extraction *ExtractionBlock `hcl:"extraction,block"`
}

// TargetBlock selects what to extract.
type TargetBlock struct {
	FlakeRef      *string `hcl:"flake_ref,optional"`
	System        *string `hcl:"system,optional"`
	AttributePath *string `hcl:"attribute_path,optional"`
}

// CachesBlock configures narinfo enrichment.
type CachesBlock struct {
	Servers        []string `hcl:"servers,optional"`
	IncludeNarInfo *bool    `hcl:"include_nar_info,optional"`
}

// ExtractionBlock tunes the traversal itself.
type ExtractionBlock struct {
	Workers     *int  `hcl:"workers,optional"`
	Offline     *bool `hcl:"offline,optional"`
	RuntimeOnly *bool `hcl:"runtime_only,optional"`
}

// Load parses and decodes one config file.
func Load(path string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("could not parse config file %s: %w", path, diags)
	}

	var file File
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("could not decode config file %s: %w", path, diags)
	}
	return &file, nil
}

// evalContext exposes the process environment to expressions as `env`.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = cty.StringVal(value)
	}

	vars := map[string]cty.Value{"env": cty.MapValEmpty(cty.String)}
	if len(env) > 0 {
		vars["env"] = cty.MapVal(env)
	}
	return &hcl.EvalContext{Variables: vars}
}
