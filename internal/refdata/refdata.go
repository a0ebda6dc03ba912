// Package refdata consumes the reference-data service as opaque id → label
// lookups feeding display surfaces. The CRUD side of that service is an
// external collaborator and not modelled here.
package refdata

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// KindSMI is the lookup kind for SMI (subject-matter insured) codes.
const KindSMI = "smi"

// Lookup resolves a reference-data id to its display label.
type Lookup interface {
	Label(ctx context.Context, kind, id string) (string, error)
}

// SMICodes returns the built-in SMI code label feed. Used as the label
// source when no reference-data service is configured.
func SMICodes() StaticLookup {
	return StaticLookup{
		KindSMI: {
			"SMI-01": "Buildings",
			"SMI-02": "General Contents",
			"SMI-03": "Stock in Trade",
			"SMI-04": "Plant and Machinery",
			"SMI-05": "Electronic Equipment",
			"SMI-06": "Gross Profit",
		},
	}
}

// StaticLookup is an in-memory lookup keyed by kind then id. Used for tests
// and offline runs.
type StaticLookup map[string]map[string]string

// Label implements Lookup.
func (sl StaticLookup) Label(_ context.Context, kind, id string) (string, error) {
	if labels, ok := sl[kind]; ok {
		if label, ok := labels[id]; ok {
			return label, nil
		}
	}
	return "", fmt.Errorf("no %s with id %q", kind, id)
}

// CachedLookup wraps a Lookup with a TTL cache so dropdown feeds don't
// re-fetch the same labels on every render.
type CachedLookup struct {
	inner Lookup
	cache *gocache.Cache
}

// NewCachedLookup creates a caching wrapper with the given TTL.
func NewCachedLookup(inner Lookup, ttl time.Duration) *CachedLookup {
	return &CachedLookup{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Label implements Lookup. Failed lookups are not cached.
func (cl *CachedLookup) Label(ctx context.Context, kind, id string) (string, error) {
	key := kind + "|" + id
	if v, ok := cl.cache.Get(key); ok {
		return v.(string), nil
	}
	label, err := cl.inner.Label(ctx, kind, id)
	if err != nil {
		return "", err
	}
	cl.cache.Set(key, label, gocache.DefaultExpiration)
	return label, nil
}
