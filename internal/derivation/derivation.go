// Package derivation defines the document model produced for every
// extracted derivation. Field names follow the extraction schema used by
// downstream indexers, so changing a JSON tag here is a breaking change.
package derivation

// Description is everything we know about one derivation after a
// successful evaluation, plus the optional narinfo record of its
// already-built artifact.
type Description struct {
	AttributePath   string          `json:"attribute_path"`
	DerivationPath  *string         `json:"derivation_path"`
	OutputPath      *string         `json:"output_path"`
	Outputs         []Output        `json:"outputs"`
	Name            string          `json:"name"`
	ParsedName      ParsedName      `json:"parsed_name"`
	NixpkgsMetadata NixpkgsMetadata `json:"nixpkgs_metadata"`
	Src             *Source         `json:"src"`
	BuildInputs     []BuildInput    `json:"build_inputs"`
	NarInfo         *NarInfo        `json:"nar_info,omitempty"`
}

// Output is one named output of a derivation. The output path is absent
// when the evaluation could not resolve it.
type Output struct {
	Name       string  `json:"name"`
	OutputPath *string `json:"output_path"`
}

// ParsedName is the package name split from its version.
type ParsedName struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NixpkgsMetadata carries the package metadata declared in nixpkgs.
type NixpkgsMetadata struct {
	Description string    `json:"description"`
	Pname       string    `json:"pname"`
	Version     string    `json:"version"`
	Broken      bool      `json:"broken"`
	Homepage    string    `json:"homepage"`
	Licenses    []License `json:"licenses"`
}

// License is one license entry. Not every license in nixpkgs has an
// associated SPDX id.
type License struct {
	SpdxID   *string `json:"spdx_id"`
	FullName string  `json:"full_name"`
}

// Source points at the repository a derivation was fetched from.
type Source struct {
	GitRepoURL string `json:"git_repo_url"`
	// Revision or tag of the git repo.
	Rev string `json:"rev"`
}

// BuildInput is one declared dependency edge: the child attribute path,
// the kind of dependency (buildInputs, nativeBuildInputs, ...), and the
// child's output path when it is known.
type BuildInput struct {
	AttributePath  string  `json:"attribute_path"`
	BuildInputType string  `json:"build_input_type"`
	OutputPath     *string `json:"output_path"`
}

// NarInfo is the parsed narinfo record of a realized store path served by
// a binary cache.
type NarInfo struct {
	StorePath   string   `json:"store_path"`
	URL         string   `json:"url"`
	Compression string   `json:"compression"`
	FileHash    string   `json:"file_hash"`
	FileSize    uint64   `json:"file_size"`
	NarHash     string   `json:"nar_hash"`
	NarSize     uint64   `json:"nar_size"`
	Deriver     *string  `json:"deriver"`
	System      *string  `json:"system"`
	References  []string `json:"references"`
	Sig         string   `json:"sig"`
	CA          *string  `json:"ca"`
}
