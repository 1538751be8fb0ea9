package sqlstore

import (
	"database/sql"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
)

const bookmarkSelect = `SELECT b.id, b.title, b.url, b.description, b.username, b.password,
 b.category_id, b.is_private, b.created_at, b.updated_at,
 c.id, c.name, c.color, c.emoji, c.created_at
 FROM bookmarks b LEFT JOIN categories c ON c.id = b.category_id`

const categorySelect = `SELECT id, name, color, emoji, created_at FROM categories`

type scanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row scanner) (domain.Bookmark, error) {
	var (
		b                         domain.Bookmark
		desc, user, pass          sql.NullString
		categoryID                sql.NullInt64
		catID                     sql.NullInt64
		catName, catColor, catEmo sql.NullString
		catCreated                sql.NullTime
	)

	err := row.Scan(
		&b.ID, &b.Title, &b.URL, &desc, &user, &pass,
		&categoryID, &b.IsPrivate, &b.CreatedAt, &b.UpdatedAt,
		&catID, &catName, &catColor, &catEmo, &catCreated,
	)
	if err != nil {
		return domain.Bookmark{}, err
	}

	b.Description = nullString(desc)
	b.Username = nullString(user)
	b.Password = nullString(pass)
	if categoryID.Valid {
		id := categoryID.Int64
		b.CategoryID = &id
	}
	if catID.Valid {
		b.Category = &domain.Category{
			ID:        catID.Int64,
			Name:      catName.String,
			Color:     catColor.String,
			Emoji:     nullString(catEmo),
			CreatedAt: catCreated.Time,
		}
	}
	return b, nil
}

func scanCategory(row scanner) (domain.Category, error) {
	var (
		c     domain.Category
		emoji sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Color, &emoji, &c.CreatedAt); err != nil {
		return domain.Category{}, err
	}
	c.Emoji = nullString(emoji)
	return c, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// nullable converts an optional value into a driver argument.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
