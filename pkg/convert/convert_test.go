package convert

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comicmeta/cmi/pkg/extract"
	"github.com/comicmeta/cmi/pkg/ledger"
	"github.com/comicmeta/cmi/pkg/logger"
)

// fakeExtractor simulates a tool that unpacks the given files into dest.
func fakeExtractor(files map[string]string) *extract.Extractor {
	return extract.New(time.Minute, logger.GetLogger("test")).
		WithStrategies([]extract.Strategy{{
			Name: "fake",
			Args: func(archive, dest string) []string {
				return []string{"fake", archive, dest}
			},
		}}).
		WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
			dest := args[1]
			for entry, data := range files {
				if err := os.WriteFile(filepath.Join(dest, entry), []byte(data), 0o644); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
}

func failingExtractor() *extract.Extractor {
	return extract.New(time.Minute, logger.GetLogger("test")).
		WithStrategies([]extract.Strategy{{
			Name: "fake",
			Args: func(archive, dest string) []string {
				return []string{"fake", archive, dest}
			},
		}}).
		WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("corrupt archive"), errors.New("exit status 2")
		})
}

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries[f.Name] = string(data)
	}

	return entries
}

func TestConvert_Success(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "Berserk v01.cbr")
	require.NoError(t, os.WriteFile(original, []byte("rar-bytes"), 0o644))

	ledgerPath := filepath.Join(dir, "ledger.txt")

	c := New(
		fakeExtractor(map[string]string{"page01.jpg": "page-one"}),
		ledger.New(ledgerPath),
		logger.GetLogger("test"),
	)

	dest, err := c.Convert(context.Background(), original, map[string][]byte{
		"ComicInfo.xml": []byte("<ComicInfo/>"),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Berserk v01.cbz"), dest)

	// original removed, replacement holds extracted pages plus new entries
	_, statErr := os.Stat(original)
	assert.True(t, os.IsNotExist(statErr))

	entries := readZip(t, dest)
	assert.Equal(t, "page-one", entries["page01.jpg"])
	assert.Equal(t, "<ComicInfo/>", entries["ComicInfo.xml"])

	data, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Converted: Berserk v01.cbr -> Berserk v01.cbz")
}

func TestConvert_DoesNotOverwriteExtractedEntries(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "vol1.cbr")
	require.NoError(t, os.WriteFile(original, []byte("rar-bytes"), 0o644))

	c := New(
		fakeExtractor(map[string]string{"ComicInfo.xml": "existing-metadata"}),
		ledger.New(filepath.Join(dir, "ledger.txt")),
		logger.GetLogger("test"),
	)

	dest, err := c.Convert(context.Background(), original, map[string][]byte{
		"ComicInfo.xml": []byte("new-metadata"),
	})
	require.NoError(t, err)

	entries := readZip(t, dest)
	assert.Equal(t, "existing-metadata", entries["ComicInfo.xml"])
}

func TestConvert_ExtractionFailureLeavesOriginal(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "vol1.cbr")
	require.NoError(t, os.WriteFile(original, []byte("rar-bytes"), 0o644))

	ledgerPath := filepath.Join(dir, "ledger.txt")

	c := New(failingExtractor(), ledger.New(ledgerPath), logger.GetLogger("test"))

	_, err := c.Convert(context.Background(), original, nil)
	require.Error(t, err)

	// original untouched, no replacement written, no ledger entry
	data, readErr := os.ReadFile(original)
	require.NoError(t, readErr)
	assert.Equal(t, "rar-bytes", string(data))

	_, statErr := os.Stat(filepath.Join(dir, "vol1.cbz"))
	assert.True(t, os.IsNotExist(statErr))

	_, statErr = os.Stat(ledgerPath)
	assert.True(t, os.IsNotExist(statErr))
}
