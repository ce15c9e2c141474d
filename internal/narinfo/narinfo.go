// Package narinfo fetches and parses the narinfo records binary caches
// keep for realized store paths. It is a self-contained enrichment step:
// the traversal engine only calls Fetch for derivations whose output path
// resolved, and a record that cannot be found anywhere is "no metadata",
// not a failure.
package narinfo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/nixgraphgo/internal/ctxlog"
	"github.com/vk/nixgraphgo/internal/derivation"
)

// Parse decodes the line-oriented `Key: Value` narinfo format. Unknown
// keys are logged and ignored so new server-side fields never break
// enrichment; missing required fields are an error.
func Parse(ctx context.Context, text string) (*derivation.NarInfo, error) {
	logger := ctxlog.FromContext(ctx)

	var (
		storePath   *string
		url         *string
		compression *string
		fileHash    *string
		fileSize    *uint64
		narHash     *string
		narSize     *uint64
		deriver     *string
		system      *string
		references  []string
		sig         *string
		ca          *string
	)

	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\n")
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("narinfo line has no delimiter: %q", line)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch key {
		case "StorePath":
			storePath = &value
		case "URL":
			url = &value
		case "Compression":
			compression = &value
		case "FileHash":
			fileHash = &value
		case "FileSize":
			size, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("narinfo field FileSize is not an integer: %w", err)
			}
			fileSize = &size
		case "NarHash":
			narHash = &value
		case "NarSize":
			size, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("narinfo field NarSize is not an integer: %w", err)
			}
			narSize = &size
		case "Deriver":
			deriver = &value
		case "System":
			system = &value
		case "References":
			references = strings.Fields(value)
		case "Sig":
			sig = &value
		case "CA":
			ca = &value
		default:
			logger.Warn("Ignoring unknown narinfo key.", "key", key)
		}
	}

	for field, present := range map[string]bool{
		"StorePath":   storePath != nil,
		"URL":         url != nil,
		"Compression": compression != nil,
		"FileHash":    fileHash != nil,
		"FileSize":    fileSize != nil,
		"NarHash":     narHash != nil,
		"NarSize":     narSize != nil,
		"Sig":         sig != nil,
	} {
		if !present {
			return nil, fmt.Errorf("narinfo is missing required field %s", field)
		}
	}

	return &derivation.NarInfo{
		StorePath:   *storePath,
		URL:         *url,
		Compression: *compression,
		FileHash:    *fileHash,
		FileSize:    *fileSize,
		NarHash:     *narHash,
		NarSize:     *narSize,
		Deriver:     deriver,
		System:      system,
		References:  references,
		Sig:         *sig,
		CA:          ca,
	}, nil
}
