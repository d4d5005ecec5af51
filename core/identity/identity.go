// Package identity maps platform-local handles to canonical participant ids.
package identity

import (
	"maps"
	"slices"
	"strings"

	"github.com/huangsam/govscope/internal/contract"
)

// Table is the raw identity mapping: canonical id -> platform -> platform ids.
type Table map[string]map[string][]string

// Resolver is a read-only platform id to canonical id lookup.
// The zero value resolves every id to itself.
type Resolver struct {
	exact map[string]string
}

var _ contract.IdentityResolver = &Resolver{}

// New flattens a mapping table into a resolver.
// Canonical ids always resolve to themselves. When two canonical ids claim
// the same platform id, the first in sorted order keeps it and a warning is
// logged, so the mapping stays a function.
func New(table Table) *Resolver {
	r := &Resolver{exact: make(map[string]string)}
	canonicals := slices.Sorted(maps.Keys(table))
	for _, canonical := range canonicals {
		r.add(canonical, canonical)
	}
	for _, canonical := range canonicals {
		platforms := table[canonical]
		for _, platform := range slices.Sorted(maps.Keys(platforms)) {
			for _, id := range platforms[platform] {
				r.add(strings.TrimSpace(id), canonical)
			}
		}
	}
	return r
}

func (r *Resolver) add(id, canonical string) {
	if id == "" {
		return
	}
	if existing, ok := r.exact[id]; ok {
		if existing != canonical {
			contract.Named("identity").Warn().
				Str("platform_id", id).
				Str("kept", existing).
				Str("ignored", canonical).
				Msg("platform id claimed by more than one canonical identity")
		}
		return
	}
	r.exact[id] = canonical
}

// Resolve returns the canonical id for platformID, or platformID itself when
// it is not in the table. Matching is exact, so a differently cased handle
// is a different participant.
func (r *Resolver) Resolve(platformID string) string {
	if r == nil || platformID == "" {
		return platformID
	}
	if canonical, ok := r.exact[platformID]; ok {
		return canonical
	}
	return platformID
}

// Len returns the number of platform ids known to the resolver.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.exact)
}
