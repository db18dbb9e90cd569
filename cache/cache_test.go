package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/llehouerou/gqlselect/document"
)

func doc(key, body string) *document.Document {
	d := document.Assemble(document.Query, "", nil, nil, body)
	d.NormalizedKey = key
	return d
}

func TestDocuments_AddReturnsExisting(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	first := doc("q => q.Me", "me { id }")
	second := doc("q => q.Me", "me { id }")

	assert.Same(t, first, c.Add(first))
	assert.Same(t, first, c.Add(second))
	assert.Equal(t, 1, c.Len())

	got, ok := c.Get("q => q.Me")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestDocuments_GetMiss(t *testing.T) {
	c, err := New(0)
	require.NoError(t, err)

	_, ok := c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, Stats{Misses: 1}, c.Stats())
}

func TestDocuments_GetOrCompileOnce(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	compiles := atomic.NewInt32(0)
	start := make(chan struct{})
	compile := func() (*document.Document, error) {
		compiles.Inc()
		<-start
		return doc("key", "me { id }"), nil
	}

	const workers = 16
	results := make([]*document.Document, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := c.GetOrCompile("key", compile)
			assert.NoError(t, err)
			results[i] = d
		}(i)
	}
	close(start)
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, int32(1), compiles.Load())
	assert.Equal(t, 1, c.Len())

	again, err := c.GetOrCompile("key", func() (*document.Document, error) {
		t.Fatal("unexpected compile on hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Same(t, results[0], again)
	assert.GreaterOrEqual(t, c.Stats().Hits, uint64(1))
}

func TestDocuments_GetOrCompileError(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = c.GetOrCompile("key", func() (*document.Document, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	_, err = c.GetOrCompile("key", func() (*document.Document, error) { return doc("other", "me { id }"), nil })
	assert.Error(t, err)
}

func TestDocuments_Eviction(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	c.Add(doc("a", "a"))
	c.Add(doc("b", "b"))
	c.Add(doc("c", "c"))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}
