package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
	"github.com/MrSnakeDoc/linkvault/internal/sources/homepage"
)

// Vault is the subset of the bookmark service the importer writes through.
// Going through the service keeps imports visible on the live stream.
type Vault interface {
	EnsureCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, bool, error)
	EnsureBookmark(ctx context.Context, in domain.BookmarkInput) (domain.Bookmark, bool, error)
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Categories int // created
	Bookmarks  int // created
	Skipped    int // already present or rejected
}

// Importer periodically imports Homepage bookmarks.yaml and services.yaml
// into the vault. Existing URLs are never touched.
type Importer struct {
	bookmarks      *homepage.BookmarkLoader
	bookmarkMapper *homepage.BookmarkMapper
	services       *homepage.Loader
	serviceMapper  *homepage.Mapper
	vault          Vault
	logger         logger.Logger
	interval       time.Duration
	stopCh         chan struct{}
	manualTrigger  chan struct{}
}

// ImporterOptions selects the files to read. Empty paths are skipped.
type ImporterOptions struct {
	BookmarksFile string
	ServicesFile  string
	Private       bool
	Interval      time.Duration
}

// NewImporter creates a new importer. manualTrigger may be shared with the
// reload endpoint.
func NewImporter(
	opts ImporterOptions,
	vault Vault,
	log logger.Logger,
	manualTrigger chan struct{},
) *Importer {
	imp := &Importer{
		vault:         vault,
		logger:        log,
		interval:      opts.Interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
	if opts.BookmarksFile != "" {
		imp.bookmarks = homepage.NewBookmarkLoader(opts.BookmarksFile)
		imp.bookmarkMapper = homepage.NewBookmarkMapper(opts.Private)
	}
	if opts.ServicesFile != "" {
		imp.services = homepage.NewLoader(opts.ServicesFile)
		imp.serviceMapper = homepage.NewMapper(opts.Private)
	}
	if imp.interval <= 0 {
		imp.interval = 24 * time.Hour
	}
	return imp
}

// Start runs an initial import, then imports on every tick or manual trigger
func (im *Importer) Start(ctx context.Context) error {
	// Import immediately on start
	if _, err := im.Import(ctx); err != nil {
		return fmt.Errorf("initial homepage import failed: %w", err)
	}

	ticker := time.NewTicker(im.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := im.Import(ctx); err != nil {
					im.logger.Error("failed to import homepage bookmarks",
						logger.Error(err))
				}
			case <-im.manualTrigger:
				im.logger.Info("manual homepage import triggered")
				if _, err := im.Import(ctx); err != nil {
					im.logger.Error("failed to import homepage bookmarks",
						logger.Error(err))
				}
			case <-im.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the importer
func (im *Importer) Stop() {
	close(im.stopCh)
}

// Import loads the configured files and creates whatever is missing.
func (im *Importer) Import(ctx context.Context) (ImportResult, error) {
	im.logger.Info("importing bookmarks from homepage")

	batch, err := im.load()
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	categoryIDs := make(map[string]int64, len(batch.Categories))
	for _, name := range batch.Categories {
		c, created, err := im.vault.EnsureCategory(ctx, domain.CategoryInput{Name: name})
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			im.logger.Warn("skipping homepage group",
				logger.String("group", name),
				logger.Error(err))
			continue
		}
		categoryIDs[name] = c.ID
		if created {
			res.Categories++
		}
	}

	for _, e := range batch.Entries {
		in := e.Input
		if id, ok := categoryIDs[e.Category]; ok {
			in.CategoryID = &id
		}
		_, created, err := im.vault.EnsureBookmark(ctx, in)
		switch {
		case err != nil && ctx.Err() != nil:
			return res, ctx.Err()
		case domain.IsValidation(err):
			im.logger.Warn("rejected homepage bookmark",
				logger.String("url", in.URL),
				logger.Error(err))
			res.Skipped++
		case err != nil:
			im.logger.Error("failed to import homepage bookmark",
				logger.String("url", in.URL),
				logger.Error(err))
			res.Skipped++
		case created:
			res.Bookmarks++
		default:
			res.Skipped++
		}
	}

	im.logger.Info("homepage import completed",
		logger.Int("categories_created", res.Categories),
		logger.Int("bookmarks_created", res.Bookmarks),
		logger.Int("skipped", res.Skipped))

	return res, nil
}

// load merges both sources. A failing source is an error only when no
// other source produced entries.
func (im *Importer) load() (homepage.Batch, error) {
	var (
		batch homepage.Batch
		errs  []error
	)

	if im.bookmarks != nil {
		b, err := im.bookmarks.LoadBatch(im.bookmarkMapper)
		if err != nil {
			errs = append(errs, fmt.Errorf("bookmarks: %w", err))
		} else {
			batch.Merge(b)
		}
	}
	if im.services != nil {
		b, err := im.services.LoadBatch(im.serviceMapper)
		if err != nil {
			errs = append(errs, fmt.Errorf("services: %w", err))
		} else {
			batch.Merge(b)
		}
	}

	if len(batch.Entries) == 0 {
		if len(errs) == 0 {
			return batch, errors.New("no homepage file configured")
		}
		return batch, errors.Join(errs...)
	}
	for _, err := range errs {
		im.logger.Warn("partial homepage import", logger.Error(err))
	}
	return batch, nil
}
