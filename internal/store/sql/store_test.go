package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
)

// openTestStore opens a migrated in-memory SQLite store whose clock advances
// one second per call.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{Dialect: SQLite, DSN: ":memory:?_foreign_keys=on"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func strPtr(s string) *string { return &s }
func idPtr(i int64) *int64    { return &i }

func mustBookmark(t *testing.T, s *Store, in domain.BookmarkInput) domain.Bookmark {
	t.Helper()
	b, err := s.CreateBookmark(context.Background(), in)
	require.NoError(t, err)
	return b
}

func TestCreateGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := mustBookmark(t, s, domain.BookmarkInput{Title: "Go", URL: "https://go.dev"})
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetBookmark(ctx, created.ID, domain.Public)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Title)
	assert.Equal(t, "https://go.dev", got.URL)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.Username)
	assert.Nil(t, got.Password)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, absent := range []string{"description", "username", "password", "category"} {
		_, ok := fields[absent]
		assert.False(t, ok, "%s should be omitted", absent)
	}
	v, ok := fields["category_id"]
	assert.True(t, ok, "category_id should be present")
	assert.Nil(t, v)
}

func TestGetBookmarkMasksPrivate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b := mustBookmark(t, s, domain.BookmarkInput{Title: "Bank", URL: "https://bank.example", IsPrivate: true})

	_, err := s.GetBookmark(ctx, b.ID, domain.Public)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := s.GetBookmark(ctx, b.ID, domain.Admin)
	require.NoError(t, err)
	assert.True(t, got.IsPrivate)

	_, err = s.GetBookmark(ctx, 9999, domain.Admin)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListBookmarksPublicNeverSeesPrivate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, domain.CategoryInput{Name: "Work", Color: "#10B981"})
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		mustBookmark(t, s, domain.BookmarkInput{
			Title:      fmt.Sprintf("link %d", i),
			URL:        fmt.Sprintf("https://example.com/%d", i),
			CategoryID: idPtr(cat.ID),
			IsPrivate:  i%2 == 0,
		})
	}

	filters := []domain.Filter{
		{},
		{Privacy: domain.PrivacyPrivate},
		{Privacy: domain.PrivacyPublic},
		{Query: "link"},
		{CategoryID: idPtr(cat.ID), Privacy: domain.PrivacyPrivate},
		{SortBy: domain.SortTitle, SortOrder: domain.SortAsc, Limit: 1, Page: 2},
	}
	for _, f := range filters {
		page, err := s.ListBookmarks(ctx, f, domain.Public)
		require.NoError(t, err)
		for _, b := range page.Bookmarks {
			assert.False(t, b.IsPrivate, "public caller got private bookmark %d with filter %+v", b.ID, f)
		}
		assert.LessOrEqual(t, page.Total, 3)
	}

	all, err := s.ListBookmarks(ctx, domain.Filter{}, domain.Admin)
	require.NoError(t, err)
	assert.Equal(t, 6, all.Total)

	private, err := s.ListBookmarks(ctx, domain.Filter{Privacy: domain.PrivacyPrivate}, domain.Admin)
	require.NoError(t, err)
	assert.Equal(t, 3, private.Total)
	for _, b := range private.Bookmarks {
		assert.True(t, b.IsPrivate)
		require.NotNil(t, b.Category)
		assert.Equal(t, "Work", b.Category.Name)
	}
}

func TestListBookmarksPagination(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.ListBookmarks(ctx, domain.Filter{}, domain.Admin)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0, empty.TotalPages)
	assert.NotNil(t, empty.Bookmarks)
	assert.Equal(t, 1, empty.Page)

	for i := 0; i < 7; i++ {
		mustBookmark(t, s, domain.BookmarkInput{Title: fmt.Sprintf("b%d", i), URL: fmt.Sprintf("https://b%d.example", i)})
	}

	page, err := s.ListBookmarks(ctx, domain.Filter{Limit: 3, Page: 3}, domain.Admin)
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.Page)
	assert.Len(t, page.Bookmarks, 1)

	beyond, err := s.ListBookmarks(ctx, domain.Filter{Limit: 3, Page: 9}, domain.Admin)
	require.NoError(t, err)
	assert.Empty(t, beyond.Bookmarks)
	assert.Equal(t, 7, beyond.Total)
}

func TestListBookmarksExtremePaging(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustBookmark(t, s, domain.BookmarkInput{Title: "one", URL: "https://one.example"})
	mustBookmark(t, s, domain.BookmarkInput{Title: "two", URL: "https://two.example"})

	all, err := s.ListBookmarks(ctx, domain.Filter{Limit: math.MaxInt}, domain.Public)
	require.NoError(t, err)
	assert.Len(t, all.Bookmarks, 2)
	assert.Equal(t, 1, all.TotalPages)

	far, err := s.ListBookmarks(ctx, domain.Filter{Page: math.MaxInt}, domain.Public)
	require.NoError(t, err)
	assert.Empty(t, far.Bookmarks)
	assert.Equal(t, 2, far.Total)
	assert.Equal(t, 1, far.TotalPages)
	assert.Equal(t, math.MaxInt, far.Page)

	both, err := s.ListBookmarks(ctx, domain.Filter{Page: 3, Limit: math.MaxInt}, domain.Public)
	require.NoError(t, err)
	assert.Empty(t, both.Bookmarks)
}

func TestListBookmarksSort(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"Charlie", "alpha", "Bravo"} {
		mustBookmark(t, s, domain.BookmarkInput{Title: title, URL: "https://" + title + ".example"})
	}

	byTitle, err := s.ListBookmarks(ctx, domain.Filter{SortBy: domain.SortTitle, SortOrder: domain.SortAsc}, domain.Admin)
	require.NoError(t, err)
	require.Len(t, byTitle.Bookmarks, 3)
	assert.Equal(t, []string{"Bravo", "Charlie", "alpha"}, titles(byTitle.Bookmarks))

	newest, err := s.ListBookmarks(ctx, domain.Filter{}, domain.Admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bravo", "alpha", "Charlie"}, titles(newest.Bookmarks))
	for i := 1; i < len(newest.Bookmarks); i++ {
		assert.False(t, newest.Bookmarks[i].CreatedAt.After(newest.Bookmarks[i-1].CreatedAt))
	}
}

func titles(bs []domain.Bookmark) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Title
	}
	return out
}

func TestListBookmarksSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustBookmark(t, s, domain.BookmarkInput{Title: "Go Docs", URL: "https://go.dev", Description: strPtr("official documentation")})
	mustBookmark(t, s, domain.BookmarkInput{Title: "100% Pure", URL: "https://pure.example"})
	mustBookmark(t, s, domain.BookmarkInput{Title: "snake_case", URL: "https://snake.example"})
	mustBookmark(t, s, domain.BookmarkInput{Title: "Rust", URL: "https://rust-lang.org"})

	tests := []struct {
		query string
		want  int
	}{
		{"go", 1},
		{"DOCUMENTATION", 1},
		{"rust-lang", 1},
		{"%", 1},
		{"_", 1},
		{"example", 2},
		{"nothing here", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, err := s.ListBookmarks(ctx, domain.Filter{Query: tt.query}, domain.Public)
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Total)
		})
	}
}

func TestListBookmarksUnknownCategory(t *testing.T) {
	s := openTestStore(t)
	mustBookmark(t, s, domain.BookmarkInput{Title: "Go", URL: "https://go.dev"})

	page, err := s.ListBookmarks(context.Background(), domain.Filter{CategoryID: idPtr(42)}, domain.Admin)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Bookmarks)
}

func TestUpdateBookmark(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b := mustBookmark(t, s, domain.BookmarkInput{
		Title:       "Old",
		URL:         "https://old.example",
		Description: strPtr("keep me?"),
		Username:    strPtr("admin"),
	})

	updated, err := s.UpdateBookmark(ctx, b.ID, domain.BookmarkPatch{
		Title:       domain.Some("New"),
		Description: domain.Null[string](),
		IsPrivate:   domain.Some(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "https://old.example", updated.URL)
	assert.Nil(t, updated.Description)
	require.NotNil(t, updated.Username)
	assert.Equal(t, "admin", *updated.Username)
	assert.True(t, updated.IsPrivate)
	assert.True(t, updated.UpdatedAt.After(b.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(b.CreatedAt))

	_, err = s.UpdateBookmark(ctx, 9999, domain.BookmarkPatch{Title: domain.Some("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteBookmark(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b := mustBookmark(t, s, domain.BookmarkInput{Title: "Go", URL: "https://go.dev"})
	require.NoError(t, s.DeleteBookmark(ctx, b.ID))
	assert.ErrorIs(t, s.DeleteBookmark(ctx, b.ID), domain.ErrNotFound)
}

func TestDeleteCategoryDetachesBookmarks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, domain.CategoryInput{Name: "Tools", Color: "#3B82F6"})
	require.NoError(t, err)
	b := mustBookmark(t, s, domain.BookmarkInput{Title: "Go", URL: "https://go.dev", CategoryID: idPtr(cat.ID)})
	require.NotNil(t, b.Category)

	require.NoError(t, s.DeleteCategory(ctx, cat.ID))

	got, err := s.GetBookmark(ctx, b.ID, domain.Admin)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)

	assert.ErrorIs(t, s.DeleteCategory(ctx, cat.ID), domain.ErrNotFound)
}

func TestCategoryCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c, err := s.CreateCategory(ctx, domain.CategoryInput{Name: "Zeta", Color: "#000000", Emoji: strPtr("📚")})
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, domain.CategoryInput{Name: "Alpha", Color: "#FFFFFF"})
	require.NoError(t, err)

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)

	updated, err := s.UpdateCategory(ctx, c.ID, domain.CategoryPatch{Name: domain.Some("Books"), Emoji: domain.Null[string]()})
	require.NoError(t, err)
	assert.Equal(t, "Books", updated.Name)
	assert.Equal(t, "#000000", updated.Color)
	assert.Nil(t, updated.Emoji)

	byName, err := s.CategoryByName(ctx, "Books")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byName.ID)

	_, err = s.CategoryByName(ctx, "Zeta")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.UpdateCategory(ctx, 9999, domain.CategoryPatch{Name: domain.Some("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeedDefaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = s.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	bookmarks, categories, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, bookmarks)
	assert.Equal(t, 4, categories)
}

func TestBookmarkByURL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b := mustBookmark(t, s, domain.BookmarkInput{Title: "Go", URL: "https://go.dev"})
	got, err := s.BookmarkByURL(ctx, "https://go.dev")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = s.BookmarkByURL(ctx, "https://nope.example")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := s.AllBookmarks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
