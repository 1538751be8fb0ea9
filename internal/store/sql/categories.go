package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
)

// DefaultCategories are inserted by SeedDefaults into an empty table.
var DefaultCategories = []domain.CategoryInput{
	{Name: "General", Color: "#3B82F6"},
	{Name: "Work", Color: "#10B981"},
	{Name: "Personal", Color: "#F59E0B"},
	{Name: "Resources", Color: "#8B5CF6"},
}

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, categorySelect+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, s.q(categorySelect+" WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return c, nil
}

// CategoryByName looks a category up by its unique name.
func (s *Store) CategoryByName(ctx context.Context, name string) (domain.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, s.q(categorySelect+" WHERE name = ?"), name))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to get category %q: %w", name, err)
	}
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		s.q("INSERT INTO categories (name, color, emoji, created_at) VALUES (?, ?, ?, ?) RETURNING id"),
		in.Name, in.Color, nullable(in.Emoji), s.now(),
	).Scan(&id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return s.GetCategory(ctx, id)
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, p domain.CategoryPatch) (domain.Category, error) {
	var (
		sets []string
		args []any
	)
	if p.Name.Set {
		sets = append(sets, "name = ?")
		args = append(args, p.Name.Value)
	}
	if p.Color.Set {
		sets = append(sets, "color = ?")
		args = append(args, p.Color.Value)
	}
	if p.Emoji.Set {
		sets = append(sets, "emoji = ?")
		args = append(args, nullable(p.Emoji.Ptr()))
	}
	if len(sets) == 0 {
		return s.GetCategory(ctx, id)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, s.q("UPDATE categories SET "+strings.Join(sets, ", ")+" WHERE id = ?"), args...)
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Category{}, domain.ErrNotFound
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory detaches dependent bookmarks, then removes the category.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.q("UPDATE bookmarks SET category_id = NULL WHERE category_id = ?"), id); err != nil {
		return fmt.Errorf("failed to detach bookmarks from category %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, s.q("DELETE FROM categories WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category delete: %w", err)
	}
	return nil
}

// SeedDefaults inserts DefaultCategories when no category exists yet.
// It reports how many rows were inserted.
func (s *Store) SeedDefaults(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	for i, c := range DefaultCategories {
		if _, err := s.CreateCategory(ctx, c); err != nil {
			return i, fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
	}
	return len(DefaultCategories), nil
}

// Counts returns the number of bookmarks and categories.
func (s *Store) Counts(ctx context.Context) (bookmarks, categories int, err error) {
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookmarks").Scan(&bookmarks); err != nil {
		return 0, 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&categories); err != nil {
		return 0, 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return bookmarks, categories, nil
}
