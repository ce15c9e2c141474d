package narinfo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"

	"github.com/vk/nixgraphgo/internal/derivation"
)

const helloNarInfo = `StorePath: /nix/store/cg8a576pz2yfc1wbhxm1zy4x7lrk8pix-hello-2.12.1
URL: nar/1wjh5hhqfi30fx8pqi0901c9n035qbwsv1rmizvmpydva2lpri2g.nar.xz
Compression: xz
FileHash: sha256:1wjh5hhqfi30fx8pqi0901c9n035qbwsv1rmizvmpydva2lpri2g
FileSize: 50184
NarHash: sha256:0scilhfg9qij3wiz1irrln5nb5nk3nxfkns6yqfh2kvbaixywv26
NarSize: 226552
References: cg8a576pz2yfc1wbhxm1zy4x7lrk8pix-hello-2.12.1 gqghjch4p1s69sv4mcjksb2kb65rwqjy-glibc-2.38-23
Deriver: 57677sld6ja212hkv1gh8bdm0amnk1hz-hello-2.12.1.drv
Sig: cache.nixos.org-1:WzRvexDdRP62D8j/4rAk73vAc4gUtAN7qpZesuRc74+My03WcvWxg/LUztmWikOaMqJQJMvB1ria6AIX30yrDw==
`

func helloExpected() *derivation.NarInfo {
	deriver := "57677sld6ja212hkv1gh8bdm0amnk1hz-hello-2.12.1.drv"
	return &derivation.NarInfo{
		StorePath:   "/nix/store/cg8a576pz2yfc1wbhxm1zy4x7lrk8pix-hello-2.12.1",
		URL:         "nar/1wjh5hhqfi30fx8pqi0901c9n035qbwsv1rmizvmpydva2lpri2g.nar.xz",
		Compression: "xz",
		FileHash:    "sha256:1wjh5hhqfi30fx8pqi0901c9n035qbwsv1rmizvmpydva2lpri2g",
		FileSize:    50184,
		NarHash:     "sha256:0scilhfg9qij3wiz1irrln5nb5nk3nxfkns6yqfh2kvbaixywv26",
		NarSize:     226552,
		Deriver:     &deriver,
		References: []string{
			"cg8a576pz2yfc1wbhxm1zy4x7lrk8pix-hello-2.12.1",
			"gqghjch4p1s69sv4mcjksb2kb65rwqjy-glibc-2.38-23",
		},
		Sig: "cache.nixos.org-1:WzRvexDdRP62D8j/4rAk73vAc4gUtAN7qpZesuRc74+My03WcvWxg/LUztmWikOaMqJQJMvB1ria6AIX30yrDw==",
	}
}

func TestParse(t *testing.T) {
	parsed, err := Parse(context.Background(), helloNarInfo)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(helloExpected(), parsed))
}

func TestParse_UnknownKeyIgnored(t *testing.T) {
	parsed, err := Parse(context.Background(), helloNarInfo+"SomeFutureKey: whatever\n")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(helloExpected(), parsed))
}

func TestParse_MissingRequiredField(t *testing.T) {
	_, err := Parse(context.Background(), "StorePath: /nix/store/abc-hello\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field")
}

func TestParse_NoDelimiter(t *testing.T) {
	_, err := Parse(context.Background(), "this line has no delimiter\n")
	require.Error(t, err)
}

func newTestClient(t *testing.T) *resty.Client {
	t.Helper()
	client := resty.New()
	t.Cleanup(func() { client.Close() })
	return client
}

func TestFetch_FirstSuccessWins(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cg8a576pz2yfc1wbhxm1zy4x7lrk8pix.narinfo", r.URL.Path)
		w.Write([]byte(helloNarInfo))
	}))
	defer working.Close()

	parsed, err := Fetch(
		context.Background(),
		newTestClient(t),
		"/nix/store/cg8a576pz2yfc1wbhxm1zy4x7lrk8pix-hello-2.12.1",
		[]string{failing.URL, working.URL},
	)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(helloExpected(), parsed))
}

func TestFetch_ExhaustedServersIsNotAnError(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	unreachable := httptest.NewServer(http.HandlerFunc(nil))
	unreachable.Close() // connection refused

	defer notFound.Close()

	parsed, err := Fetch(
		context.Background(),
		newTestClient(t),
		"/nix/store/cg8a576pz2yfc1wbhxm1zy4x7lrk8pix-hello-2.12.1",
		[]string{notFound.URL, unreachable.URL},
	)
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestFetch_MalformedStorePath(t *testing.T) {
	_, err := Fetch(context.Background(), newTestClient(t), "not-a-store-path", nil)
	require.Error(t, err)
}
