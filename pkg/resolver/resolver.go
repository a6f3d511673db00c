// Package resolver turns a normalized folder key into a single metadata
// record, consulting the cache, the search provider and, when the result is
// ambiguous, a disambiguation capability.
package resolver

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/comicmeta/cmi/pkg/anilist"
	"github.com/comicmeta/cmi/pkg/metacache"
	"github.com/comicmeta/cmi/pkg/titlekey"
)

// Searcher is the search capability (AniList in production).
type Searcher interface {
	Search(ctx context.Context, term string) ([]anilist.Media, error)
}

// Chooser is the disambiguation capability. The CLI blocks on user input;
// tests script an answer. Given zero candidates it owns the manual
// identifier-lookup path. A nil record with a nil error means declined.
type Chooser interface {
	Choose(ctx context.Context, candidates []anilist.Media, normalized string) (*anilist.Media, error)
}

type Resolver struct {
	cache   *metacache.Store
	search  Searcher
	chooser Chooser
	log     *logrus.Entry
}

func New(cache *metacache.Store, search Searcher, chooser Chooser, log *logrus.Entry) *Resolver {
	return &Resolver{
		cache:   cache,
		search:  search,
		chooser: chooser,
		log:     log,
	}
}

// Resolve returns the record for a key and whether one was selected.
// Search failures degrade to zero candidates; a decline is not an error.
// Every selection is cached and the cache flushed immediately.
func (r *Resolver) Resolve(ctx context.Context, key string) (*anilist.Media, bool, error) {
	if cached, ok := r.cache.Get(key); ok {
		r.log.Debugf("Cache hit for %q", key)
		return &cached, true, nil
	}

	candidates, err := r.search.Search(ctx, key)
	if err != nil {
		r.log.WithError(err).Warnf("Search failed for %q, continuing with zero candidates", key)
		candidates = nil
	}

	selected := exactMatch(candidates, key)
	if selected == nil {
		selected, err = r.chooser.Choose(ctx, candidates, key)
		if err != nil {
			return nil, false, err
		}
		if selected == nil {
			return nil, false, nil
		}
	} else {
		r.log.Debugf("Exact title match for %q: %s", key, selected.DisplayTitle())
	}

	r.cache.Put(key, *selected)
	if err := r.cache.Flush(); err != nil {
		r.log.WithError(err).Warn("Failed persisting metadata cache")
	}

	return selected, true, nil
}

// exactMatch returns the candidate whose normalized primary title equals the
// key, but only when exactly one candidate matches.
func exactMatch(candidates []anilist.Media, key string) *anilist.Media {
	var match *anilist.Media
	for i := range candidates {
		if titlekey.Normalize(candidates[i].PrimaryTitle()) != key {
			continue
		}
		if match != nil {
			return nil
		}
		match = &candidates[i]
	}

	return match
}
