package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
)

// sortColumns is the only source of ORDER BY identifiers.
var sortColumns = map[domain.SortField]string{
	domain.SortCreatedAt: "b.created_at",
	domain.SortTitle:     "b.title",
	domain.SortUpdatedAt: "b.updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListBookmarks runs the query engine: visibility, search, category,
// count, sort and page.
func (s *Store) ListBookmarks(ctx context.Context, f domain.Filter, c domain.Capability) (domain.Page, error) {
	f = f.Normalize()
	where, args := s.bookmarkPredicate(f, c)

	var total int
	countQuery := s.q("SELECT COUNT(*) FROM bookmarks b" + where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return domain.Page{}, fmt.Errorf("failed to count bookmarks: %w", err)
	}

	page := domain.Page{
		Bookmarks:  []domain.Bookmark{},
		Total:      total,
		Page:       f.Page,
		TotalPages: domain.TotalPages(total, f.Limit),
	}
	offset, ok := f.Offset()
	if !ok || total == 0 {
		return page, nil
	}

	query := fmt.Sprintf("%s%s ORDER BY %s %s, b.id %s LIMIT ? OFFSET ?",
		bookmarkSelect, where, sortColumns[f.SortBy], strings.ToUpper(string(f.SortOrder)), strings.ToUpper(string(f.SortOrder)))
	pageArgs := append(append([]any{}, args...), f.Limit, offset)

	rows, err := s.db.QueryContext(ctx, s.q(query), pageArgs...)
	if err != nil {
		return domain.Page{}, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	bookmarks := make([]domain.Bookmark, 0, min(f.Limit, total))
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return domain.Page{}, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}

	page.Bookmarks = bookmarks
	return page, nil
}

// bookmarkPredicate builds the WHERE clause. The non-admin restriction is
// added before anything else and no later term can widen it.
func (s *Store) bookmarkPredicate(f domain.Filter, c domain.Capability) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if c != domain.Admin {
		clauses = append(clauses, "b.is_private = ?")
		args = append(args, false)
	} else {
		switch f.Privacy {
		case domain.PrivacyPublic:
			clauses = append(clauses, "b.is_private = ?")
			args = append(args, false)
		case domain.PrivacyPrivate:
			clauses = append(clauses, "b.is_private = ?")
			args = append(args, true)
		}
	}

	if f.Query != "" {
		pattern := "%" + likeEscaper.Replace(f.Query) + "%"
		op := s.dialect.likeOp()
		clauses = append(clauses, fmt.Sprintf(
			`(b.title %[1]s ? ESCAPE '\' OR b.description %[1]s ? ESCAPE '\' OR b.url %[1]s ? ESCAPE '\')`, op))
		args = append(args, pattern, pattern, pattern)
	}

	if f.CategoryID != nil {
		clauses = append(clauses, "b.category_id = ?")
		args = append(args, *f.CategoryID)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// GetBookmark returns one bookmark. Private rows are reported as not found
// to non-admin callers.
func (s *Store) GetBookmark(ctx context.Context, id int64, c domain.Capability) (domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx, s.q(bookmarkSelect+" WHERE b.id = ?"), id)
	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bookmark{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to get bookmark %d: %w", id, err)
	}
	if b.IsPrivate && c != domain.Admin {
		return domain.Bookmark{}, domain.ErrNotFound
	}
	return b, nil
}

// BookmarkByURL returns the oldest bookmark with the exact URL.
func (s *Store) BookmarkByURL(ctx context.Context, url string) (domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx, s.q(bookmarkSelect+" WHERE b.url = ? ORDER BY b.id LIMIT 1"), url)
	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bookmark{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to get bookmark by url: %w", err)
	}
	return b, nil
}

// AllBookmarks returns every bookmark ordered by id.
func (s *Store) AllBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, bookmarkSelect+" ORDER BY b.id")
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CreateBookmark inserts a validated bookmark and returns the stored row.
func (s *Store) CreateBookmark(ctx context.Context, in domain.BookmarkInput) (domain.Bookmark, error) {
	now := s.now()
	var id int64
	err := s.db.QueryRowContext(ctx, s.q(`INSERT INTO bookmarks
 (title, url, description, username, password, category_id, is_private, created_at, updated_at)
 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		in.Title, in.URL, nullable(in.Description), nullable(in.Username), nullable(in.Password),
		nullable(in.CategoryID), in.IsPrivate, now, now,
	).Scan(&id)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to insert bookmark: %w", err)
	}
	return s.GetBookmark(ctx, id, domain.Admin)
}

// UpdateBookmark applies the fields set in p and refreshes updated_at.
func (s *Store) UpdateBookmark(ctx context.Context, id int64, p domain.BookmarkPatch) (domain.Bookmark, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Title.Set {
		set("title", p.Title.Value)
	}
	if p.URL.Set {
		set("url", p.URL.Value)
	}
	if p.Description.Set {
		set("description", nullable(p.Description.Ptr()))
	}
	if p.Username.Set {
		set("username", nullable(p.Username.Ptr()))
	}
	if p.Password.Set {
		set("password", nullable(p.Password.Ptr()))
	}
	if p.CategoryID.Set {
		set("category_id", nullable(p.CategoryID.Ptr()))
	}
	if p.IsPrivate.Set {
		set("is_private", p.IsPrivate.Value)
	}
	set("updated_at", s.now())
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, s.q("UPDATE bookmarks SET "+strings.Join(sets, ", ")+" WHERE id = ?"), args...)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to update bookmark %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Bookmark{}, domain.ErrNotFound
	}
	return s.GetBookmark(ctx, id, domain.Admin)
}

// DeleteBookmark removes a bookmark.
func (s *Store) DeleteBookmark(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q("DELETE FROM bookmarks WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
