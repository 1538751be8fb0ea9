package homepage

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
)

// Mapper converts Homepage services to an import batch
type Mapper struct {
	private bool
}

// NewMapper creates a new mapper instance
func NewMapper(private bool) *Mapper {
	return &Mapper{private: private}
}

// MapServices converts Homepage ServicesConfig to a Batch. Each service
// becomes a bookmark in a category named after its group.
func (m *Mapper) MapServices(config ServicesConfig) (Batch, error) {
	var batch Batch

	for _, groupMap := range config {
		for groupName, servicesList := range groupMap {
			for _, serviceMap := range servicesList {
				for serviceName, props := range serviceMap {
					href := strings.TrimSpace(props.Href)
					if href == "" || domain.ValidateURL(href) != nil {
						continue
					}

					in := domain.BookmarkInput{
						Title:     strings.TrimSpace(serviceName),
						URL:       href,
						IsPrivate: m.private,
					}
					if in.Title == "" {
						in.Title = href
					}
					if d := strings.TrimSpace(props.Description); d != "" {
						in.Description = &d
					}

					batch.add(strings.TrimSpace(groupName), in)
				}
			}
		}
	}

	if len(batch.Entries) == 0 {
		return Batch{}, fmt.Errorf("no valid services found in homepage config")
	}

	return batch, nil
}
