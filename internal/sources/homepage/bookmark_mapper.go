package homepage

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
)

// BookmarkMapper converts Homepage bookmark config to an import batch
type BookmarkMapper struct {
	private bool
}

// NewBookmarkMapper creates a new bookmark mapper. private marks every
// imported bookmark private.
func NewBookmarkMapper(private bool) *BookmarkMapper {
	return &BookmarkMapper{private: private}
}

// MapBookmarks converts BookmarksConfig to a Batch. The Homepage group
// becomes the category and the bookmark name the title.
func (m *BookmarkMapper) MapBookmarks(config BookmarksConfig) (Batch, error) {
	var batch Batch

	for _, category := range config {
		for categoryName, bookmarkList := range category {
			for _, bookmarkMap := range bookmarkList {
				for bookmarkName, entryList := range bookmarkMap {
					// Each bookmark has a list with a single entry
					if len(entryList) == 0 {
						continue
					}
					entry := entryList[0]

					href := strings.TrimSpace(entry.Href)
					if href == "" || domain.ValidateURL(href) != nil {
						continue
					}

					title := strings.TrimSpace(bookmarkName)
					if title == "" {
						title = entry.Abbr
					}

					batch.add(strings.TrimSpace(categoryName), domain.BookmarkInput{
						Title:     title,
						URL:       href,
						IsPrivate: m.private,
					})
				}
			}
		}
	}

	if len(batch.Entries) == 0 {
		return Batch{}, fmt.Errorf("no valid bookmarks found in config")
	}

	return batch, nil
}
