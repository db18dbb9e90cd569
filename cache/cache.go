// Package cache holds compiled documents keyed by the normalized key of
// their selection.
package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"github.com/llehouerou/gqlselect/document"
)

// DefaultSize is the number of documents kept by New(0).
const DefaultSize = 1024

// CompileFunc compiles the document for a key on a cache miss.
type CompileFunc func() (*document.Document, error)

// Stats are the cache counters.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Compiles uint64
	Entries  int
}

// Documents is a bounded cache of compiled documents. It keeps at most one
// document per normalized key: inserts return the document already present
// instead of replacing it, and concurrent misses on one key compile once.
// It is safe for concurrent use.
type Documents struct {
	entries *lru.Cache
	group   singleflight.Group

	hits     *atomic.Uint64
	misses   *atomic.Uint64
	compiles *atomic.Uint64
}

// New returns a cache holding up to size documents.
func New(size int) (*Documents, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("document cache: %w", err)
	}
	return &Documents{
		entries:  entries,
		hits:     atomic.NewUint64(0),
		misses:   atomic.NewUint64(0),
		compiles: atomic.NewUint64(0),
	}, nil
}

// keyHash is the 64-bit digest the entries are stored under. The full key
// is kept with the document and compared on every hit.
func keyHash(key string) uint64 {
	return xxhash.Sum64String(key)
}

// Get returns the document stored for key.
func (d *Documents) Get(key string) (*document.Document, bool) {
	v, ok := d.entries.Get(keyHash(key))
	if !ok {
		d.misses.Inc()
		return nil, false
	}
	doc := v.(*document.Document)
	if doc.NormalizedKey != key {
		d.misses.Inc()
		return nil, false
	}
	d.hits.Inc()
	return doc, true
}

// Add stores doc under its normalized key unless a document is already
// present, and returns the document that is in the cache afterwards.
func (d *Documents) Add(doc *document.Document) *document.Document {
	h := keyHash(doc.NormalizedKey)
	previous, found, _ := d.entries.PeekOrAdd(h, doc)
	if !found {
		return doc
	}
	existing := previous.(*document.Document)
	if existing.NormalizedKey != doc.NormalizedKey {
		// 64-bit collision: the newer key wins the slot.
		d.entries.Add(h, doc)
		return doc
	}
	return existing
}

// GetOrCompile returns the cached document for key, compiling and storing
// it on a miss. Concurrent calls for one key share a single compile.
func (d *Documents) GetOrCompile(key string, compile CompileFunc) (*document.Document, error) {
	if doc, ok := d.Get(key); ok {
		return doc, nil
	}
	v, err, _ := d.group.Do(key, func() (any, error) {
		if v, ok := d.entries.Peek(keyHash(key)); ok {
			if doc := v.(*document.Document); doc.NormalizedKey == key {
				return doc, nil
			}
		}
		d.compiles.Inc()
		doc, err := compile()
		if err != nil {
			return nil, err
		}
		if doc.NormalizedKey != key {
			return nil, fmt.Errorf("document cache: compiled key %q does not match %q", doc.NormalizedKey, key)
		}
		return d.Add(doc), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*document.Document), nil
}

// Len returns the number of cached documents.
func (d *Documents) Len() int {
	return d.entries.Len()
}

// Purge drops every document.
func (d *Documents) Purge() {
	d.entries.Purge()
}

// Stats returns a snapshot of the counters.
func (d *Documents) Stats() Stats {
	return Stats{
		Hits:     d.hits.Load(),
		Misses:   d.misses.Load(),
		Compiles: d.compiles.Load(),
		Entries:  d.entries.Len(),
	}
}
