package narinfo

import (
	"context"
	"fmt"
	"strings"

	"resty.dev/v3"

	"github.com/vk/nixgraphgo/internal/ctxlog"
	"github.com/vk/nixgraphgo/internal/derivation"
)

// Fetch looks up the narinfo record for outputPath on the given cache
// servers, in order. The first server that answers successfully wins; a
// server that is unreachable or answers with an error status is skipped.
// Exhausting the list returns (nil, nil): an artifact no cache knows about
// simply has no metadata.
func Fetch(ctx context.Context, client *resty.Client, outputPath string, servers []string) (*derivation.NarInfo, error) {
	logger := ctxlog.FromContext(ctx)

	hash, err := storeHash(outputPath)
	if err != nil {
		return nil, err
	}

	for _, server := range servers {
		url := fmt.Sprintf("%s/%s.narinfo", serverBase(server), hash)
		logger.Debug("Fetching narinfo.", "url", url)

		response, err := client.R().SetContext(ctx).Get(url)
		if err != nil {
			logger.Warn("Cache unreachable, trying next server.", "server", server, "error", err)
			continue
		}
		if !response.IsSuccess() {
			logger.Warn("Cache responded with error status, trying next server.", "server", server, "status", response.StatusCode())
			continue
		}

		return Parse(ctx, response.String())
	}

	return nil, nil
}

// storeHash extracts the hash part of a store path, the key narinfo
// records are addressed by.
func storeHash(outputPath string) (string, error) {
	rest, ok := strings.CutPrefix(outputPath, "/nix/store/")
	if !ok {
		return "", fmt.Errorf("store path is malformed: %q", outputPath)
	}
	hash, _, ok := strings.Cut(rest, "-")
	if !ok {
		return "", fmt.Errorf("store path is malformed: %q", outputPath)
	}
	return hash, nil
}

// serverBase normalizes a configured cache server to a URL base.
// Substituter lists carry full URLs while hand-supplied values are often
// bare hostnames.
func serverBase(server string) string {
	if strings.Contains(server, "://") {
		return strings.TrimRight(server, "/")
	}
	return "https://" + server
}
