// Package processor drives the per-folder pipeline: normalize, resolve,
// build the metadata document, and commit it into every archive found.
// No single folder's or archive's failure ever aborts the batch.
package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/comicmeta/cmi/pkg/anilist"
	"github.com/comicmeta/cmi/pkg/archive"
	"github.com/comicmeta/cmi/pkg/comicinfo"
	"github.com/comicmeta/cmi/pkg/convert"
	"github.com/comicmeta/cmi/pkg/expression"
	"github.com/comicmeta/cmi/pkg/extract"
	"github.com/comicmeta/cmi/pkg/metacache"
	"github.com/comicmeta/cmi/pkg/notification"
	"github.com/comicmeta/cmi/pkg/paths"
	"github.com/comicmeta/cmi/pkg/titlekey"
)

/* Interfaces */

// MetaResolver resolves a normalized key to a record, or reports that the
// folder should be skipped.
type MetaResolver interface {
	Resolve(ctx context.Context, key string) (*anilist.Media, bool, error)
}

// CoverFetcher downloads cover image bytes.
type CoverFetcher interface {
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

/* Structs */

type Options struct {
	TitlePreference string
	AddCovers       bool
	DryRun          bool
}

type Processor struct {
	resolver    MetaResolver
	covers      CoverFetcher
	converter   *convert.Converter
	extractor   *extract.Extractor
	cache       *metacache.Store
	skipFilters []expression.CompiledExpression
	opts        Options
	log         *logrus.Entry
}

// Outcome is the result of processing one archive.
type Outcome struct {
	Archive string
	Size    int64
	Action  notification.Action
	NewPath string
	Reason  string
	Err     error
}

// Result is the result of processing one folder.
type Result struct {
	Folder   string
	Key      string
	Skipped  bool
	Reason   string
	Outcomes []Outcome
}

// Summary aggregates a whole run.
type Summary struct {
	Folders   int
	Injected  int
	Converted int
	Skipped   int
	Failed    int
	Fields    []notification.Field
}

func New(res MetaResolver, covers CoverFetcher, converter *convert.Converter, extractor *extract.Extractor,
	cache *metacache.Store, skipFilters []expression.CompiledExpression, opts Options, log *logrus.Entry) *Processor {
	return &Processor{
		resolver:    res,
		covers:      covers,
		converter:   converter,
		extractor:   extractor,
		cache:       cache,
		skipFilters: skipFilters,
		opts:        opts,
		log:         log,
	}
}

/* Public */

// Run processes folders sequentially. The only cancellation point is
// between folders. The cache is flushed once more at the end of the run.
func (p *Processor) Run(ctx context.Context, folders []string, sender notification.Sender) Summary {
	start := time.Now()
	summary := Summary{Folders: len(folders)}

	for _, folder := range folders {
		if ctx.Err() != nil {
			p.log.Warn("Run cancelled, stopping before next folder")
			break
		}

		result := p.ProcessFolder(ctx, folder)
		p.tally(&summary, result, sender)
	}

	if err := p.cache.Flush(); err != nil {
		p.log.WithError(err).Warn("Failed persisting metadata cache at end of run")
	}

	p.log.Infof("Processed %d folders: %d injected, %d converted, %d skipped, %d failed",
		summary.Folders, summary.Injected, summary.Converted, summary.Skipped, summary.Failed)

	if sender != nil && sender.CanSend() {
		description := fmt.Sprintf("%d folders: %d injected, %d converted, %d skipped, %d failed",
			summary.Folders, summary.Injected, summary.Converted, summary.Skipped, summary.Failed)
		if err := sender.Send("Manga Metadata Run", description, time.Since(start), summary.Fields, p.opts.DryRun); err != nil {
			p.log.WithError(err).Errorf("Failed sending notification via %s", sender.Name())
		}
	}

	return summary
}

// ProcessFolder handles one manga folder end to end.
func (p *Processor) ProcessFolder(ctx context.Context, folder string) Result {
	key := titlekey.Normalize(titlekey.GuessFolderTitle(folder))
	result := Result{Folder: folder, Key: key}

	p.log.Infof("Processing folder: %s (normalized: %q)", folder, key)

	archives, err := paths.FindArchives(folder)
	if err != nil {
		result.Skipped = true
		result.Reason = fmt.Sprintf("unreadable folder: %v", err)
		p.log.WithError(err).Errorf("Failed listing archives in %s", folder)
		return result
	}

	if len(archives) == 0 {
		result.Skipped = true
		result.Reason = "no comic archives found"
		p.log.Warnf("No comic archives in %s, skipping", folder)
		return result
	}

	if skipped, reason := p.matchesSkipFilter(folder, key, archives); skipped {
		result.Skipped = true
		result.Reason = fmt.Sprintf("matched skip filter: %s", reason)
		p.log.Infof("Skipping %s (filter: %s)", folder, reason)
		return result
	}

	media, ok, err := p.resolver.Resolve(ctx, key)
	if err != nil {
		result.Skipped = true
		result.Reason = fmt.Sprintf("resolve failed: %v", err)
		p.log.WithError(err).Errorf("Failed resolving metadata for %q", key)
		return result
	}
	if !ok {
		result.Skipped = true
		result.Reason = "no metadata selection"
		p.log.Warnf("No selection made for %q, skipping folder", key)
		return result
	}

	doc, err := comicinfo.Build(*media, p.opts.TitlePreference)
	if err != nil {
		result.Skipped = true
		result.Reason = fmt.Sprintf("build metadata document: %v", err)
		p.log.WithError(err).Errorf("Failed building metadata document for %q", key)
		return result
	}

	var cover []byte
	if p.opts.AddCovers {
		cover, err = p.covers.DownloadImage(ctx, media.CoverURL())
		if err != nil {
			p.log.WithError(err).Warnf("Failed downloading cover for %q, continuing without one", key)
			cover = nil
		}
	}

	for _, a := range archives {
		result.Outcomes = append(result.Outcomes, p.processArchive(ctx, folder, a, doc, cover))
	}

	return result
}

/* Private */

func (p *Processor) processArchive(ctx context.Context, folder string, a paths.Archive, doc []byte, cover []byte) Outcome {
	outcome := Outcome{Archive: a.Name, Size: a.Size}

	entries := map[string][]byte{
		comicinfo.EntryName: doc,
	}

	if cover != nil {
		if p.archiveHasThumbsDB(ctx, a) {
			p.log.Warnf("Skipped adding cover for %s (contains thumbs.db)", a.Name)
		} else {
			entries[comicinfo.CoverEntryName] = cover
		}
	}

	switch a.Ext {
	case ".cbz":
		outcome.Action = notification.ActionInject
		if p.opts.DryRun {
			p.log.Infof("Would inject into %s (%s)", a.Name, humanize.IBytes(uint64(a.Size)))
			return outcome
		}

		if err := archive.Inject(a.Path, entries); err != nil {
			outcome.Action = notification.ActionError
			outcome.Err = err
			outcome.Reason = err.Error()
			p.log.WithError(err).Errorf("Failed injecting into %s", a.Name)
			return outcome
		}

		p.log.Infof("Injected metadata into %s (%s)", a.Name, humanize.IBytes(uint64(a.Size)))

	case ".cbr":
		outcome.Action = notification.ActionConvert
		if p.opts.DryRun {
			p.log.Infof("Would convert %s to CBZ (%s)", a.Name, humanize.IBytes(uint64(a.Size)))
			return outcome
		}

		newPath, err := p.converter.Convert(ctx, a.Path, entries)
		if err != nil {
			outcome.Action = notification.ActionError
			outcome.Err = err
			outcome.Reason = err.Error()
			p.log.WithError(err).Errorf("Failed converting %s", a.Name)
			return outcome
		}

		outcome.NewPath = newPath
		p.log.Infof("Converted %s to %s (%s)", a.Name, filepath.Base(newPath), humanize.IBytes(uint64(a.Size)))
	}

	return outcome
}

// archiveHasThumbsDB reports whether the archive carries a Windows
// thumbnail database, in which case no cover is added to it.
func (p *Processor) archiveHasThumbsDB(ctx context.Context, a paths.Archive) bool {
	switch a.Ext {
	case ".cbz":
		has, err := archive.HasEntrySuffix(a.Path, "thumbs.db")
		if err != nil {
			p.log.WithError(err).Debugf("Failed inspecting %s for thumbs.db", a.Name)
			return false
		}
		return has
	case ".cbr":
		listing, err := p.extractor.ListOutput(ctx, a.Path)
		if err != nil {
			p.log.WithError(err).Debugf("Failed listing %s for thumbs.db", a.Name)
			return false
		}
		return strings.Contains(strings.ToLower(listing), "thumbs.db")
	}

	return false
}

func (p *Processor) matchesSkipFilter(folder string, key string, archives []paths.Archive) (bool, string) {
	if len(p.skipFilters) == 0 {
		return false, ""
	}

	var totalBytes int64
	for _, a := range archives {
		totalBytes += a.Size
	}

	env := expression.Folder{
		Name:       filepath.Base(folder),
		Key:        key,
		Archives:   len(archives),
		TotalBytes: totalBytes,
	}

	match, reason, err := expression.CheckFolderSingleMatchWithReason(env, p.skipFilters)
	if err != nil {
		p.log.WithError(err).Errorf("Failed evaluating skip filters for %s", folder)
		return false, ""
	}

	return match, reason
}

func (p *Processor) tally(summary *Summary, result Result, sender notification.Sender) {
	if result.Skipped {
		summary.Skipped++
		if sender != nil {
			summary.Fields = append(summary.Fields, sender.BuildField(notification.ActionSkip, notification.BuildOptions{
				Folder: result.Folder,
				Reason: result.Reason,
			}))
		}
		return
	}

	for _, o := range result.Outcomes {
		opts := notification.BuildOptions{
			Folder:  result.Folder,
			Archive: o.Archive,
			Size:    o.Size,
			NewPath: o.NewPath,
			Reason:  o.Reason,
		}

		switch {
		case o.Err != nil:
			summary.Failed++
		case o.Action == notification.ActionInject:
			summary.Injected++
		case o.Action == notification.ActionConvert:
			summary.Converted++
		}

		if sender != nil {
			action := o.Action
			if o.Err != nil {
				action = notification.ActionError
			}
			summary.Fields = append(summary.Fields, sender.BuildField(action, opts))
		}
	}
}
