package domain

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxEmojiRunes = 16

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// NormalizeBookmarkInput trims fields, turns empty optionals into nil and
// validates required fields.
func NormalizeBookmarkInput(in BookmarkInput) (BookmarkInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	if in.Title == "" {
		return in, Invalid("title", "is required")
	}
	if in.URL == "" {
		return in, Invalid("url", "is required")
	}
	if err := ValidateURL(in.URL); err != nil {
		return in, err
	}
	in.Description = emptyToNil(in.Description)
	in.Username = emptyToNil(in.Username)
	in.Password = emptyToNil(in.Password)
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		return in, Invalid("category_id", "must be a positive integer")
	}
	return in, nil
}

// ValidateBookmarkPatch checks every supplied field of a partial update.
func ValidateBookmarkPatch(p BookmarkPatch) (BookmarkPatch, error) {
	if p.Title.Set {
		if p.Title.Null || strings.TrimSpace(p.Title.Value) == "" {
			return p, Invalid("title", "cannot be empty")
		}
		p.Title.Value = strings.TrimSpace(p.Title.Value)
	}
	if p.URL.Set {
		if p.URL.Null {
			return p, Invalid("url", "cannot be empty")
		}
		p.URL.Value = strings.TrimSpace(p.URL.Value)
		if err := ValidateURL(p.URL.Value); err != nil {
			return p, err
		}
	}
	if p.IsPrivate.Set && p.IsPrivate.Null {
		return p, Invalid("is_private", "cannot be null")
	}
	if p.CategoryID.Set && !p.CategoryID.Null && p.CategoryID.Value <= 0 {
		return p, Invalid("category_id", "must be a positive integer")
	}
	p.Description = emptyToNull(p.Description)
	p.Username = emptyToNull(p.Username)
	p.Password = emptyToNull(p.Password)
	return p, nil
}

// ValidateURL requires an absolute URL with a scheme and a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Invalid("url", "must be a valid absolute URL")
	}
	return nil
}

// NormalizeCategoryInput validates a new category and applies the default color.
func NormalizeCategoryInput(in CategoryInput) (CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, Invalid("name", "is required")
	}
	in.Color = strings.TrimSpace(in.Color)
	if in.Color == "" {
		in.Color = DefaultCategoryColor
	}
	if !hexColor.MatchString(in.Color) {
		return in, Invalid("color", "must be a hex color like #10B981")
	}
	in.Emoji = emptyToNil(in.Emoji)
	if in.Emoji != nil && utf8.RuneCountInString(*in.Emoji) > maxEmojiRunes {
		return in, Invalid("emoji", "is too long")
	}
	return in, nil
}

// ValidateCategoryPatch checks every supplied field of a category update.
func ValidateCategoryPatch(p CategoryPatch) (CategoryPatch, error) {
	if p.Name.Set {
		if p.Name.Null || strings.TrimSpace(p.Name.Value) == "" {
			return p, Invalid("name", "cannot be empty")
		}
		p.Name.Value = strings.TrimSpace(p.Name.Value)
	}
	if p.Color.Set {
		if p.Color.Null {
			p.Color = Some(DefaultCategoryColor)
		}
		if !hexColor.MatchString(p.Color.Value) {
			return p, Invalid("color", "must be a hex color like #10B981")
		}
	}
	p.Emoji = emptyToNull(p.Emoji)
	if p.Emoji.Set && !p.Emoji.Null && utf8.RuneCountInString(p.Emoji.Value) > maxEmojiRunes {
		return p, Invalid("emoji", "is too long")
	}
	return p, nil
}

// emptyToNil maps "" to absent. Other values are stored verbatim.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func emptyToNull(o Optional[string]) Optional[string] {
	if o.Set && !o.Null && o.Value == "" {
		return Null[string]()
	}
	return o
}
