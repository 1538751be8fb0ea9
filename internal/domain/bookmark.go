package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// DefaultCategoryColor is applied when a category is created without a color.
const DefaultCategoryColor = "#3B82F6"

// Bookmark represents a saved link.
// Optional fields are pointers so that "never set" reads back as absent
// instead of an empty string.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (server-assigned)
	// ─────────────────────────────

	// ID is the store-assigned identifier.
	ID int64 `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// Title is the display name, never empty.
	Title string `json:"title"`

	// URL is the absolute target URL.
	// Example: https://example.com
	URL string `json:"url"`

	Description *string `json:"description,omitempty"`

	// Username and Password are opaque credential hints stored in cleartext.
	// They are only ever returned to admin callers (see Redacted).
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`

	// ─────────────────────────────
	// Classification & visibility
	// ─────────────────────────────

	// CategoryID is nil when the bookmark is uncategorized or its
	// category has been deleted.
	CategoryID *int64 `json:"category_id"`

	// IsPrivate hides the bookmark from every non-admin caller.
	IsPrivate bool `json:"is_private"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed on every mutation.
	UpdatedAt time.Time `json:"updated_at"`

	// Category is the joined category row, nil when CategoryID is nil.
	Category *Category `json:"category,omitempty"`
}

// Redacted returns a copy without credential fields.
func (b Bookmark) Redacted() Bookmark {
	b.Username = nil
	b.Password = nil
	return b
}

// Category groups bookmarks.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Emoji     *string   `json:"emoji,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BookmarkInput is the payload accepted when creating a bookmark.
type BookmarkInput struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description *string `json:"description,omitempty"`
	Username    *string `json:"username,omitempty"`
	Password    *string `json:"password,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	IsPrivate   bool    `json:"is_private"`
}

// BookmarkPatch is a partial update. Only fields with Set == true change;
// an explicit JSON null clears an optional column.
type BookmarkPatch struct {
	Title       Optional[string] `json:"title"`
	URL         Optional[string] `json:"url"`
	Description Optional[string] `json:"description"`
	Username    Optional[string] `json:"username"`
	Password    Optional[string] `json:"password"`
	CategoryID  Optional[int64]  `json:"category_id"`
	IsPrivate   Optional[bool]   `json:"is_private"`
}

// Empty reports whether the patch changes nothing.
func (p BookmarkPatch) Empty() bool {
	return !p.Title.Set && !p.URL.Set && !p.Description.Set && !p.Username.Set &&
		!p.Password.Set && !p.CategoryID.Set && !p.IsPrivate.Set
}

// CategoryInput is the payload accepted when creating a category.
type CategoryInput struct {
	Name  string  `json:"name"`
	Color string  `json:"color,omitempty"`
	Emoji *string `json:"emoji,omitempty"`
}

// CategoryPatch is a partial category update.
type CategoryPatch struct {
	Name  Optional[string] `json:"name"`
	Color Optional[string] `json:"color"`
	Emoji Optional[string] `json:"emoji"`
}

// Empty reports whether the patch changes nothing.
func (p CategoryPatch) Empty() bool {
	return !p.Name.Set && !p.Color.Set && !p.Emoji.Set
}

// Optional distinguishes an absent JSON field from an explicit null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a set, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a set Optional carrying an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked for keys present in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns nil for a null Optional, otherwise a pointer to the value.
func (o Optional[T]) Ptr() *T {
	if o.Null {
		return nil
	}
	v := o.Value
	return &v
}
