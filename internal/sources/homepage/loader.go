package homepage

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// templateVar matches Homepage substitutions such as {{HOMEPAGE_VAR_URL}}.
var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// stripTemplateVariables blanks template variables so the file parses.
// Entries whose href was templated end up empty and are skipped by the
// mappers.
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}

// loadYAML reads one Homepage config file into T.
func loadYAML[T any](path, kind string) (T, error) {
	var config T
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read %s file: %w", kind, err)
	}
	if err := yaml.Unmarshal(stripTemplateVariables(data), &config); err != nil {
		return config, fmt.Errorf("failed to parse %s yaml: %w", kind, err)
	}
	return config, nil
}

// Loader reads services.yaml.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for the services.yaml at filePath.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

func (l *Loader) Load() (ServicesConfig, error) {
	return loadYAML[ServicesConfig](l.filePath, "services")
}

// LoadBatch reads services.yaml and maps it in one step.
func (l *Loader) LoadBatch(m *Mapper) (Batch, error) {
	config, err := l.Load()
	if err != nil {
		return Batch{}, err
	}
	return m.MapServices(config)
}

// BookmarkLoader reads bookmarks.yaml.
type BookmarkLoader struct {
	filePath string
}

// NewBookmarkLoader creates a loader for the bookmarks.yaml at filePath.
func NewBookmarkLoader(filePath string) *BookmarkLoader {
	return &BookmarkLoader{filePath: filePath}
}

func (l *BookmarkLoader) Load() (BookmarksConfig, error) {
	return loadYAML[BookmarksConfig](l.filePath, "bookmarks")
}

// LoadBatch reads bookmarks.yaml and maps it in one step.
func (l *BookmarkLoader) LoadBatch(m *BookmarkMapper) (Batch, error) {
	config, err := l.Load()
	if err != nil {
		return Batch{}, err
	}
	return m.MapBookmarks(config)
}
