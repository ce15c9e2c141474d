package claimset

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaim_FirstWins(t *testing.T) {
	s := New()

	assert.True(t, s.Claim("/nix/store/abc-hello-2.12.1"))
	assert.False(t, s.Claim("/nix/store/abc-hello-2.12.1"))
	assert.True(t, s.Claim("/nix/store/def-glibc-2.38"))
	assert.Equal(t, 2, s.Len())
}

func TestClaim_EmptyPathNeverDeduplicates(t *testing.T) {
	s := New()

	// A missing output path can never establish identity, so every
	// occurrence must be granted.
	assert.True(t, s.Claim(""))
	assert.True(t, s.Claim(""))
	assert.Equal(t, 0, s.Len())
}

// TestClaim_ExactlyOneWinnerUnderContention races many goroutines for the
// same path and verifies a single claim is granted.
func TestClaim_ExactlyOneWinnerUnderContention(t *testing.T) {
	s := New()
	const racers = 100

	var granted atomic.Int32
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			if s.Claim("/nix/store/contended-path") {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), granted.Load())
	assert.Equal(t, 1, s.Len())
}

func TestClaim_ConcurrentDistinctPaths(t *testing.T) {
	s := New()
	const n = 100

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			assert.True(t, s.Claim(fmt.Sprintf("/nix/store/path-%d", i)))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, s.Len())
}
