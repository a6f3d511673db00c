// Package convert upgrades legacy CBR archives to CBZ through external
// extraction tools. Conversion is all-or-nothing: the original archive is
// only removed after the replacement has been fully written.
package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/comicmeta/cmi/pkg/archive"
	"github.com/comicmeta/cmi/pkg/extract"
	"github.com/comicmeta/cmi/pkg/ledger"
)

type Converter struct {
	extractor *extract.Extractor
	ledger    *ledger.Ledger
	log       *logrus.Entry
}

func New(extractor *extract.Extractor, led *ledger.Ledger, log *logrus.Entry) *Converter {
	return &Converter{
		extractor: extractor,
		ledger:    led,
		log:       log,
	}
}

// Convert extracts the CBR at path, writes the given entries into the
// extracted tree (never overwriting files already present), repackages it as
// a CBZ next to the original, removes the original, and records the
// conversion. On any failure the original is left intact and every temporary
// artifact is removed.
func (c *Converter) Convert(ctx context.Context, path string, entries map[string][]byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "cmi-convert-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp dir")
	}
	defer os.RemoveAll(tmpDir)

	tool, err := c.extractor.Extract(ctx, path, tmpDir)
	if err != nil {
		return "", errors.Wrapf(err, "extract: %s", path)
	}
	c.log.Debugf("Extracted %s using %s", filepath.Base(path), tool)

	for name, data := range entries {
		target := filepath.Join(tmpDir, name)
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return "", errors.Wrapf(err, "write entry: %s", name)
		}
	}

	dest := strings.TrimSuffix(path, filepath.Ext(path)) + ".cbz"
	if err := archive.PackDir(tmpDir, dest); err != nil {
		return "", errors.Wrapf(err, "repackage: %s", path)
	}

	if err := os.Remove(path); err != nil {
		c.log.WithError(err).Warnf("Failed removing original archive: %s", path)
	}

	if err := c.ledger.Append(filepath.Base(path), filepath.Base(dest)); err != nil {
		c.log.WithError(err).Warn("Failed appending conversion ledger entry")
	}

	return dest, nil
}
