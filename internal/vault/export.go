package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
)

// Snapshot is the full export document. It includes credentials and is
// only served to admins or written to private backup storage.
type Snapshot struct {
	ExportedAt time.Time         `json:"exported_at"`
	Categories []domain.Category `json:"categories"`
	Bookmarks  []domain.Bookmark `json:"bookmarks"`
}

// Export returns every category and bookmark, credentials included.
func (s *Service) Export(ctx context.Context) (Snapshot, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to export categories: %w", err)
	}
	bookmarks, err := s.store.AllBookmarks(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to export bookmarks: %w", err)
	}
	if bookmarks == nil {
		bookmarks = []domain.Bookmark{}
	}
	return Snapshot{
		ExportedAt: s.now(),
		Categories: categories,
		Bookmarks:  bookmarks,
	}, nil
}

// EnsureCategory returns the category with in.Name, creating it when missing.
func (s *Service) EnsureCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, bool, error) {
	existing, err := s.store.CategoryByName(ctx, in.Name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Category{}, false, err
	}
	c, err := s.CreateCategory(ctx, in)
	if err != nil {
		return domain.Category{}, false, err
	}
	return c, true, nil
}

// EnsureBookmark creates the bookmark unless one with the same URL exists.
func (s *Service) EnsureBookmark(ctx context.Context, in domain.BookmarkInput) (domain.Bookmark, bool, error) {
	existing, err := s.store.BookmarkByURL(ctx, in.URL)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Bookmark{}, false, err
	}
	b, err := s.CreateBookmark(ctx, in)
	if err != nil {
		return domain.Bookmark{}, false, err
	}
	return b, true, nil
}
