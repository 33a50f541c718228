package idgen

import (
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_ParsesAsULID(t *testing.T) {
	id := RequestID()
	_, err := ulid.Parse(id)
	require.NoError(t, err)
	assert.Len(t, id, 26)
}

func TestRequestID_MonotonicAndUnique(t *testing.T) {
	prev := RequestID()
	for i := 0; i < 100; i++ {
		next := RequestID()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestRequestID_Concurrent(t *testing.T) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := RequestID()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}
