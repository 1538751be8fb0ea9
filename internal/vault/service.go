// Package vault validates and persists bookmark and category mutations and
// publishes the matching domain event after every successful write.
package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
)

// Store is the persistence the service needs.
type Store interface {
	ListBookmarks(ctx context.Context, f domain.Filter, c domain.Capability) (domain.Page, error)
	GetBookmark(ctx context.Context, id int64, c domain.Capability) (domain.Bookmark, error)
	BookmarkByURL(ctx context.Context, url string) (domain.Bookmark, error)
	AllBookmarks(ctx context.Context) ([]domain.Bookmark, error)
	CreateBookmark(ctx context.Context, in domain.BookmarkInput) (domain.Bookmark, error)
	UpdateBookmark(ctx context.Context, id int64, p domain.BookmarkPatch) (domain.Bookmark, error)
	DeleteBookmark(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (domain.Category, error)
	CategoryByName(ctx context.Context, name string) (domain.Category, error)
	CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, p domain.CategoryPatch) (domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// Publisher receives one call per successful mutation.
type Publisher interface {
	Publish(kind domain.EventKind, payload any)
}

type Service struct {
	store Store
	pub   Publisher
	log   logger.Logger
	now   func() time.Time
}

// NewService creates the bookmark service. Every successful mutation is
// published on pub after it is persisted.
func NewService(store Store, pub Publisher, log logger.Logger) *Service {
	return &Service{
		store: store,
		pub:   pub,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ─────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────

// ListBookmarks runs the query engine. Credentials are stripped for
// non-admin callers.
func (s *Service) ListBookmarks(ctx context.Context, f domain.Filter, c domain.Capability) (domain.Page, error) {
	page, err := s.store.ListBookmarks(ctx, f, c)
	if err != nil {
		return domain.Page{}, err
	}
	if c != domain.Admin {
		for i := range page.Bookmarks {
			page.Bookmarks[i] = page.Bookmarks[i].Redacted()
		}
	}
	return page, nil
}

func (s *Service) GetBookmark(ctx context.Context, id int64, c domain.Capability) (domain.Bookmark, error) {
	b, err := s.store.GetBookmark(ctx, id, c)
	if err != nil {
		return domain.Bookmark{}, err
	}
	if c != domain.Admin {
		b = b.Redacted()
	}
	return b, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// ─────────────────────────────────────────────────────────────────
// Bookmark mutations
// ─────────────────────────────────────────────────────────────────

func (s *Service) CreateBookmark(ctx context.Context, in domain.BookmarkInput) (domain.Bookmark, error) {
	in, err := domain.NormalizeBookmarkInput(in)
	if err != nil {
		return domain.Bookmark{}, err
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return domain.Bookmark{}, err
	}

	b, err := s.store.CreateBookmark(ctx, in)
	if err != nil {
		return domain.Bookmark{}, err
	}
	s.publish(domain.EventBookmarkCreated, b)
	return b, nil
}

func (s *Service) UpdateBookmark(ctx context.Context, id int64, p domain.BookmarkPatch) (domain.Bookmark, error) {
	if p.Empty() {
		return domain.Bookmark{}, domain.Invalid("", "no fields to update")
	}
	p, err := domain.ValidateBookmarkPatch(p)
	if err != nil {
		return domain.Bookmark{}, err
	}
	if p.CategoryID.Set && !p.CategoryID.Null {
		if err := s.requireCategory(ctx, &p.CategoryID.Value); err != nil {
			return domain.Bookmark{}, err
		}
	}

	b, err := s.store.UpdateBookmark(ctx, id, p)
	if err != nil {
		return domain.Bookmark{}, err
	}
	s.publish(domain.EventBookmarkUpdated, b)
	return b, nil
}

func (s *Service) DeleteBookmark(ctx context.Context, id int64) error {
	if err := s.store.DeleteBookmark(ctx, id); err != nil {
		return err
	}
	s.publish(domain.EventBookmarkDeleted, domain.Deleted{ID: id})
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Category mutations
// ─────────────────────────────────────────────────────────────────

func (s *Service) CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, error) {
	in, err := domain.NormalizeCategoryInput(in)
	if err != nil {
		return domain.Category{}, err
	}
	if err := s.requireUniqueName(ctx, in.Name, 0); err != nil {
		return domain.Category{}, err
	}

	c, err := s.store.CreateCategory(ctx, in)
	if err != nil {
		return domain.Category{}, err
	}
	s.publish(domain.EventCategoryCreated, c)
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, p domain.CategoryPatch) (domain.Category, error) {
	if p.Empty() {
		return domain.Category{}, domain.Invalid("", "no fields to update")
	}
	p, err := domain.ValidateCategoryPatch(p)
	if err != nil {
		return domain.Category{}, err
	}
	if p.Name.Set {
		if err := s.requireUniqueName(ctx, p.Name.Value, id); err != nil {
			return domain.Category{}, err
		}
	}

	c, err := s.store.UpdateCategory(ctx, id, p)
	if err != nil {
		return domain.Category{}, err
	}
	s.publish(domain.EventCategoryUpdated, c)
	return c, nil
}

// DeleteCategory removes a category. Its bookmarks become uncategorized;
// no bookmark_updated events are sent for them.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.publish(domain.EventCategoryDeleted, domain.Deleted{ID: id})
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────

func (s *Service) requireCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.store.GetCategory(ctx, *id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Invalid("category_id", fmt.Sprintf("category %d does not exist", *id))
	}
	return err
}

func (s *Service) requireUniqueName(ctx context.Context, name string, self int64) error {
	existing, err := s.store.CategoryByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return domain.Invalid("name", fmt.Sprintf("category %q already exists", name))
	}
	return nil
}

// publish sends redacted bookmark rows: the stream is unauthenticated.
func (s *Service) publish(kind domain.EventKind, payload any) {
	if s.pub == nil {
		return
	}
	switch v := payload.(type) {
	case domain.Bookmark:
		r := v.Redacted()
		payload = &r
	case domain.Category:
		payload = &v
	}
	s.pub.Publish(kind, payload)
}
