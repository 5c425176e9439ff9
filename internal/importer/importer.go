// Package importer builds the catalog from a directory tree of music files.
package importer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/tags"
)

const defaultWorkers = 4

// ErrNoLibraryPath is returned by Rescan when nothing was imported yet.
var ErrNoLibraryPath = errors.New("no music directory recorded; run an import first")

// ProgressSink observes import progress.
type ProgressSink interface {
	UpdateProgress(done, total int)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(done, total int)

// UpdateProgress implements ProgressSink.
func (f SinkFunc) UpdateProgress(done, total int) { f(done, total) }

type nopSink struct{}

func (nopSink) UpdateProgress(int, int) {}

// Invalidator is a cache that must be reset when the song list is replaced.
type Invalidator interface {
	Invalidate()
}

// Config configures an Importer.
type Config struct {
	Store     *catalog.Store
	Extractor tags.Extractor // defaults to tags.Default
	Workers   int            // concurrent extractions; defaults to 4
	Logger    hclog.Logger
	// Invalidate lists derived caches reset after the catalog is rewritten.
	Invalidate []Invalidator
}

// Importer walks directories and rewrites the catalog's song list.
type Importer struct {
	store      *catalog.Store
	extractor  tags.Extractor
	workers    int
	logger     hclog.Logger
	invalidate []Invalidator
}

// New creates an Importer.
func New(cfg Config) *Importer {
	im := &Importer{
		store:      cfg.Store,
		extractor:  cfg.Extractor,
		workers:    cfg.Workers,
		logger:     cfg.Logger,
		invalidate: cfg.Invalidate,
	}
	if im.extractor == nil {
		im.extractor = tags.Default
	}
	if im.workers <= 0 {
		im.workers = defaultWorkers
	}
	if im.logger == nil {
		im.logger = hclog.NewNullLogger()
	}
	im.logger = im.logger.Named("importer")
	return im
}

// Result summarizes an import.
type Result struct {
	Root     string
	Total    int // supported files found
	Imported int // songs written (new and kept)
	Added    int // songs that were not in the catalog before
	Skipped  int // files whose tags could not be read
	Elapsed  time.Duration
}

// Import replaces the catalog's songs with the supported files under root.
// Files already in the catalog keep their id and play statistics. A file
// that can't be read is skipped; an invalid root is returned as an error.
// Cancellation is checked between files and leaves the catalog untouched.
func (im *Importer) Import(ctx context.Context, root string, sink ProgressSink) (*Result, error) {
	start := time.Now()
	if sink == nil {
		sink = nopSink{}
	}

	files, err := FindSupported(root)
	if err != nil {
		return nil, err
	}
	im.logger.Info("import started", "root", root, "files", len(files))

	existing := im.existingByLocation()
	infos, err := im.extractAll(ctx, files, sink)
	if err != nil {
		return nil, err
	}

	records, added := buildRecords(files, infos, existing, im.nextID())
	if err := im.store.ReplaceSongs(root, records); err != nil {
		return nil, err
	}
	im.invalidateCaches()

	res := &Result{
		Root:     root,
		Total:    len(files),
		Imported: len(records),
		Added:    added,
		Skipped:  len(files) - len(records),
		Elapsed:  time.Since(start),
	}
	im.logger.Info("import finished", "root", root, "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}

// Rescan imports only the files under the recorded music directory that are
// not yet in the catalog, appending them. Nothing is removed.
func (im *Importer) Rescan(ctx context.Context, sink ProgressSink) (*Result, error) {
	start := time.Now()
	if sink == nil {
		sink = nopSink{}
	}

	header, err := im.store.Header()
	if err != nil {
		return nil, err
	}
	if header.Path == "" {
		return nil, ErrNoLibraryPath
	}

	all, err := FindSupported(header.Path)
	if err != nil {
		return nil, err
	}
	existing := im.existingByLocation()
	files := newFiles(all, existing)
	im.logger.Info("rescan started", "root", header.Path, "new", len(files))

	infos, err := im.extractAll(ctx, files, sink)
	if err != nil {
		return nil, err
	}

	records, _ := buildRecords(files, infos, existing, im.nextID())
	if err := im.store.AppendSongs(records); err != nil {
		return nil, err
	}
	if len(records) > 0 {
		im.invalidateCaches()
	}

	return &Result{
		Root:     header.Path,
		Total:    len(files),
		Imported: len(records),
		Added:    len(records),
		Skipped:  len(files) - len(records),
		Elapsed:  time.Since(start),
	}, nil
}

// existingByLocation indexes the current catalog records by path. An
// unreadable catalog counts as empty.
func (im *Importer) existingByLocation() map[string]catalog.Record {
	records, err := im.store.Records()
	if err != nil {
		im.logger.Warn("existing catalog unreadable, ids start over", "error", err)
		return map[string]catalog.Record{}
	}
	byLocation := make(map[string]catalog.Record, len(records))
	for _, r := range records {
		byLocation[r.Location] = r
	}
	return byLocation
}

// nextID is the first id for files not yet in the catalog. An unreadable
// catalog starts over at 0, like existingByLocation.
func (im *Importer) nextID() int {
	next, err := im.store.NextID()
	if err != nil {
		return 0
	}
	return next
}

// extractAll reads every file with a bounded number of workers. The result
// slice is indexed like files; nil marks a skipped file.
func (im *Importer) extractAll(ctx context.Context, files []string, sink ProgressSink) ([]*tags.FileInfo, error) {
	total := len(files)
	infos := make([]*tags.FileInfo, total)
	if total == 0 {
		sink.UpdateProgress(0, 0)
		return infos, ctx.Err()
	}

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := im.extractor.Extract(path)
			if err != nil {
				im.logger.Warn("skipping unreadable file", "path", path, "error", err)
			} else {
				infos[i] = info
			}

			mu.Lock()
			done++
			sink.UpdateProgress(done, total)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

func (im *Importer) invalidateCaches() {
	for _, c := range im.invalidate {
		c.Invalidate()
	}
}

// buildRecords turns extracted tags into catalog records in file order.
// Known locations keep their id and play statistics; new files are numbered
// from nextID, or after the highest existing id if that is larger.
func buildRecords(files []string, infos []*tags.FileInfo, existing map[string]catalog.Record, nextID int) ([]catalog.Record, int) {
	for _, r := range existing {
		nextID = max(nextID, r.ID+1)
	}

	records := make([]catalog.Record, 0, len(files))
	added := 0
	for i, path := range files {
		info := infos[i]
		if info == nil {
			continue
		}
		rec := catalog.Record{
			Title:       info.Title,
			Artist:      info.AlbumArtist,
			Album:       info.Album,
			Length:      info.Duration,
			TrackNumber: info.TrackNumber,
			DiscNumber:  info.DiscNumber,
			Location:    path,
		}
		if prev, ok := existing[path]; ok {
			rec.ID = prev.ID
			rec.PlayCount = prev.PlayCount
			rec.PlayDate = prev.PlayDate
		} else {
			rec.ID = nextID
			nextID++
			added++
		}
		records = append(records, rec)
	}
	return records, added
}

func newFiles(files []string, existing map[string]catalog.Record) []string {
	out := make([]string, 0)
	for _, f := range files {
		if _, ok := existing[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}
