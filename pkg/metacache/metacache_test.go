package metacache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comicmeta/cmi/pkg/anilist"
	"github.com/comicmeta/cmi/pkg/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "manga_cache.json"), logger.GetLogger("test"))
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Load())
	assert.Equal(t, 0, s.Len())
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manga_cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := New(path, logger.GetLogger("test"))

	// a corrupt file is reported but leaves the store empty and usable
	assert.Error(t, s.Load())
	assert.Equal(t, 0, s.Len())

	s.Put("berserk", anilist.Media{ID: 30002})
	_, ok := s.Get("berserk")
	assert.True(t, ok)
}

func TestStore_FlushAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manga_cache.json")

	s := New(path, logger.GetLogger("test"))
	s.Put("berserk", anilist.Media{
		ID:          30002,
		TitleRomaji: "Berserk",
		Year:        1989,
		Staff:       []string{"Kentarou Miura"},
	})
	require.NoError(t, s.Flush())

	reloaded := New(path, logger.GetLogger("test"))
	require.NoError(t, reloaded.Load())

	m, ok := reloaded.Get("berserk")
	require.True(t, ok)
	assert.Equal(t, 30002, m.ID)
	assert.Equal(t, "Berserk", m.TitleRomaji)
	assert.Equal(t, []string{"Kentarou Miura"}, m.Staff)
}

func TestStore_GetMissing(t *testing.T) {
	s := testStore(t)

	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestStore_PutOverwritesWhole(t *testing.T) {
	s := testStore(t)

	s.Put("key", anilist.Media{ID: 1, TitleRomaji: "Old"})
	s.Put("key", anilist.Media{ID: 2})

	m, ok := s.Get("key")
	require.True(t, ok)
	assert.Equal(t, 2, m.ID)
	assert.Empty(t, m.TitleRomaji)
	assert.Equal(t, 1, s.Len())
}

func TestStore_CacheFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manga_cache.json")

	s := New(path, logger.GetLogger("test"))
	s.Put("berserk", anilist.Media{ID: 30002, TitleRomaji: "Berserk"})
	require.NoError(t, s.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// on-disk field names are the legacy cache format
	assert.Contains(t, string(data), `"title_romaji": "Berserk"`)
	assert.Contains(t, string(data), `"berserk"`)
}
