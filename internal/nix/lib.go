// Package nix adapts the external nix binary behind narrow, fallible
// calls: root discovery, per-derivation description, and resolution of the
// configured binary caches. All evaluation logic lives in the embedded
// .nix expressions; this package only runs them and decodes their output.
package nix

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed expr/lib.nix
var helperLibSource string

//go:embed expr/describe_derivation.nix
var describeExpr string

//go:embed expr/find_attribute_paths.nix
var findAttributePathsExpr string

// HelperLib is the on-disk copy of the embedded helper library. Nix only
// accepts files for -I includes, so the source is written to a temporary
// file once per run and shared by every evaluation.
type HelperLib struct {
	path string
}

// NewHelperLib writes the helper library to a temporary file.
func NewHelperLib() (*HelperLib, error) {
	file, err := os.CreateTemp("", "nixgraph-lib-*.nix")
	if err != nil {
		return nil, fmt.Errorf("could not create helper lib file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(helperLibSource); err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("could not write helper lib file: %w", err)
	}
	return &HelperLib{path: file.Name()}, nil
}

// Path returns the location of the helper library file.
func (l *HelperLib) Path() string {
	return l.path
}

// Remove deletes the helper library file.
func (l *HelperLib) Remove() error {
	return os.Remove(l.path)
}
