package resolver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comicmeta/cmi/pkg/anilist"
	"github.com/comicmeta/cmi/pkg/logger"
	"github.com/comicmeta/cmi/pkg/metacache"
)

type scriptedSearcher struct {
	results []anilist.Media
	err     error
	calls   int
}

func (s *scriptedSearcher) Search(_ context.Context, _ string) ([]anilist.Media, error) {
	s.calls++
	return s.results, s.err
}

type scriptedChooser struct {
	pick       *anilist.Media
	err        error
	calls      int
	candidates []anilist.Media
}

func (c *scriptedChooser) Choose(_ context.Context, candidates []anilist.Media, _ string) (*anilist.Media, error) {
	c.calls++
	c.candidates = candidates
	return c.pick, c.err
}

func testCache(t *testing.T) *metacache.Store {
	t.Helper()
	return metacache.New(filepath.Join(t.TempDir(), "manga_cache.json"), logger.GetLogger("test"))
}

func TestResolve_CacheHitSkipsSearch(t *testing.T) {
	cache := testCache(t)
	cache.Put("berserk", anilist.Media{ID: 30002, TitleRomaji: "Berserk"})

	search := &scriptedSearcher{}
	chooser := &scriptedChooser{}
	r := New(cache, search, chooser, logger.GetLogger("test"))

	m, ok, err := r.Resolve(context.Background(), "berserk")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30002, m.ID)
	assert.Equal(t, 0, search.calls)
	assert.Equal(t, 0, chooser.calls)
}

func TestResolve_ExactMatchSkipsChooser(t *testing.T) {
	cache := testCache(t)
	search := &scriptedSearcher{results: []anilist.Media{
		{ID: 1, TitleRomaji: "Berserk Gaiden"},
		{ID: 30002, TitleRomaji: "Berserk"},
	}}
	chooser := &scriptedChooser{}
	r := New(cache, search, chooser, logger.GetLogger("test"))

	m, ok, err := r.Resolve(context.Background(), "berserk")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30002, m.ID)
	assert.Equal(t, 0, chooser.calls)

	// selection is cached
	cached, hit := cache.Get("berserk")
	require.True(t, hit)
	assert.Equal(t, 30002, cached.ID)
}

func TestResolve_AmbiguousMatchGoesToChooser(t *testing.T) {
	cache := testCache(t)
	// two candidates normalize to the same key, so neither is an exact match
	search := &scriptedSearcher{results: []anilist.Media{
		{ID: 1, TitleRomaji: "Berserk (1989)"},
		{ID: 2, TitleRomaji: "BERSERK"},
	}}
	chooser := &scriptedChooser{pick: &anilist.Media{ID: 2, TitleRomaji: "BERSERK"}}
	r := New(cache, search, chooser, logger.GetLogger("test"))

	m, ok, err := r.Resolve(context.Background(), "berserk")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, m.ID)
	assert.Equal(t, 1, chooser.calls)
	assert.Len(t, chooser.candidates, 2)
}

func TestResolve_DeclineIsNotAnError(t *testing.T) {
	cache := testCache(t)
	search := &scriptedSearcher{results: []anilist.Media{{ID: 1, TitleRomaji: "Something Else"}}}
	chooser := &scriptedChooser{pick: nil}
	r := New(cache, search, chooser, logger.GetLogger("test"))

	m, ok, err := r.Resolve(context.Background(), "berserk")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m)

	// nothing written to the cache on a decline
	_, hit := cache.Get("berserk")
	assert.False(t, hit)
}

func TestResolve_SearchFailureDegradesToZeroCandidates(t *testing.T) {
	cache := testCache(t)
	search := &scriptedSearcher{err: errors.New("connection refused")}
	chooser := &scriptedChooser{pick: &anilist.Media{ID: 30002, TitleRomaji: "Berserk"}}
	r := New(cache, search, chooser, logger.GetLogger("test"))

	m, ok, err := r.Resolve(context.Background(), "berserk")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30002, m.ID)

	// the chooser still ran, with no candidates to offer
	assert.Equal(t, 1, chooser.calls)
	assert.Empty(t, chooser.candidates)
}

func TestResolve_ChooserErrorPropagates(t *testing.T) {
	cache := testCache(t)
	search := &scriptedSearcher{}
	chooser := &scriptedChooser{err: errors.New("stdin closed")}
	r := New(cache, search, chooser, logger.GetLogger("test"))

	_, ok, err := r.Resolve(context.Background(), "berserk")
	assert.Error(t, err)
	assert.False(t, ok)
}
