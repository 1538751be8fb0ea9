package homepage

import "github.com/MrSnakeDoc/linkvault/internal/domain"

// Entry is one bookmark to import under a Homepage group.
type Entry struct {
	Category string
	Input    domain.BookmarkInput
}

// Batch is the result of mapping one Homepage file.
type Batch struct {
	Categories []string // unique group names in file order
	Entries    []Entry
}

func (b *Batch) add(category string, in domain.BookmarkInput) {
	if category != "" && !contains(b.Categories, category) {
		b.Categories = append(b.Categories, category)
	}
	b.Entries = append(b.Entries, Entry{Category: category, Input: in})
}

// Merge appends other, keeping category names unique.
func (b *Batch) Merge(other Batch) {
	for _, e := range other.Entries {
		b.add(e.Category, e.Input)
	}
	for _, c := range other.Categories {
		if !contains(b.Categories, c) {
			b.Categories = append(b.Categories, c)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
