package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
	"github.com/MrSnakeDoc/linkvault/internal/vault"
)

type fakeVault struct {
	mu         sync.Mutex
	categories map[string]domain.Category
	bookmarks  map[string]domain.Bookmark
	failURL    string
	rejectURL  string
}

func newFakeVault() *fakeVault {
	return &fakeVault{
		categories: map[string]domain.Category{},
		bookmarks:  map[string]domain.Bookmark{},
	}
}

func (f *fakeVault) EnsureCategory(_ context.Context, in domain.CategoryInput) (domain.Category, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.categories[in.Name]; ok {
		return c, false, nil
	}
	c := domain.Category{ID: int64(len(f.categories) + 1), Name: in.Name}
	f.categories[in.Name] = c
	return c, true, nil
}

func (f *fakeVault) EnsureBookmark(_ context.Context, in domain.BookmarkInput) (domain.Bookmark, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.URL == f.failURL {
		return domain.Bookmark{}, false, errors.New("boom")
	}
	if in.URL == f.rejectURL {
		return domain.Bookmark{}, false, domain.Invalid("url", "rejected")
	}
	if b, ok := f.bookmarks[in.URL]; ok {
		return b, false, nil
	}
	b := domain.Bookmark{ID: int64(len(f.bookmarks) + 1), Title: in.Title, URL: in.URL, CategoryID: in.CategoryID, IsPrivate: in.IsPrivate}
	f.bookmarks[in.URL] = b
	return b, true, nil
}

const bookmarksYAML = `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Go:
        - abbr: GO
          href: https://go.dev/
`

const servicesYAML = `---
- Infrastructure:
    - Traefik:
        href: https://traefik.example.com
        description: Reverse proxy
    - Github mirror:
        href: https://github.com/
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestImporter_Import(t *testing.T) {
	v := newFakeVault()
	imp := NewImporter(ImporterOptions{
		BookmarksFile: writeFile(t, "bookmarks.yaml", bookmarksYAML),
		ServicesFile:  writeFile(t, "services.yaml", servicesYAML),
		Private:       true,
	}, v, logger.NewNop(), nil)

	res, err := imp.Import(context.Background())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if res.Categories != 2 {
		t.Errorf("Expected 2 categories created, got %d", res.Categories)
	}
	// github.com appears in both files
	if res.Bookmarks != 3 || res.Skipped != 1 {
		t.Errorf("Expected 3 created and 1 skipped, got %+v", res)
	}

	gh := v.bookmarks["https://github.com/"]
	if gh.CategoryID == nil || *gh.CategoryID != v.categories["Developer"].ID {
		t.Errorf("github bookmark should belong to Developer, got %v", gh.CategoryID)
	}
	if !gh.IsPrivate {
		t.Error("imported bookmarks should be private")
	}

	// Second run is a no-op
	res, err = imp.Import(context.Background())
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	if res.Categories != 0 || res.Bookmarks != 0 || res.Skipped != 4 {
		t.Errorf("Expected idempotent import, got %+v", res)
	}
}

func TestImporter_PartialFailure(t *testing.T) {
	v := newFakeVault()
	v.failURL = "https://go.dev/"
	imp := NewImporter(ImporterOptions{
		BookmarksFile: writeFile(t, "bookmarks.yaml", bookmarksYAML),
		ServicesFile:  "/nonexistent/services.yaml",
	}, v, logger.NewNop(), nil)

	res, err := imp.Import(context.Background())
	if err != nil {
		t.Fatalf("Import should tolerate a missing secondary file: %v", err)
	}
	if res.Bookmarks != 1 || res.Skipped != 1 {
		t.Errorf("Expected 1 created and 1 skipped, got %+v", res)
	}
}

func TestImporter_LogsRejectionsAndFailures(t *testing.T) {
	v := newFakeVault()
	v.failURL = "https://go.dev/"
	v.rejectURL = "https://github.com/"
	core, logs := observer.New(zapcore.DebugLevel)
	imp := NewImporter(ImporterOptions{
		BookmarksFile: writeFile(t, "bookmarks.yaml", bookmarksYAML),
	}, v, logger.FromZap(zap.New(core)), nil)

	res, err := imp.Import(context.Background())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Bookmarks != 0 || res.Skipped != 2 {
		t.Errorf("Expected 2 skipped, got %+v", res)
	}
	if n := logs.FilterMessage("rejected homepage bookmark").FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Errorf("rejected entries logged %d times at warn, want 1", n)
	}
	if n := logs.FilterMessage("failed to import homepage bookmark").FilterLevelExact(zapcore.ErrorLevel).Len(); n != 1 {
		t.Errorf("failed entries logged %d times at error, want 1", n)
	}
}

func TestImporter_NothingToImport(t *testing.T) {
	imp := NewImporter(ImporterOptions{}, newFakeVault(), logger.NewNop(), nil)
	if _, err := imp.Import(context.Background()); err == nil {
		t.Error("Import without files should fail")
	}

	imp = NewImporter(ImporterOptions{BookmarksFile: "/nonexistent/bookmarks.yaml"}, newFakeVault(), logger.NewNop(), nil)
	if err := imp.Start(context.Background()); err == nil {
		t.Error("Start should report the initial import failure")
	}
}

func TestImporter_ManualTrigger(t *testing.T) {
	v := newFakeVault()
	path := writeFile(t, "bookmarks.yaml", bookmarksYAML)
	trigger := make(chan struct{}, 1)
	imp := NewImporter(ImporterOptions{BookmarksFile: path, Interval: time.Hour}, v, logger.NewNop(), trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := imp.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer imp.Stop()

	more := bookmarksYAML + `
- Reading:
    - Blog:
        - href: https://blog.example.com/
`
	if err := os.WriteFile(path, []byte(more), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	trigger <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		v.mu.Lock()
		_, ok := v.bookmarks["https://blog.example.com/"]
		v.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("manual trigger did not import the new bookmark")
}

type fakeExporter struct {
	snap vault.Snapshot
	err  error
}

func (f fakeExporter) Export(context.Context) (vault.Snapshot, error) { return f.snap, f.err }

type memDestination struct {
	mu     sync.Mutex
	writes [][]byte
	err    error
}

func (m *memDestination) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes = append(m.writes, data)
	return nil
}

func (m *memDestination) String() string { return "memory" }

func TestBackup_Run(t *testing.T) {
	snap := vault.Snapshot{
		ExportedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Categories: []domain.Category{{ID: 1, Name: "Work", Color: domain.DefaultCategoryColor}},
		Bookmarks:  []domain.Bookmark{{ID: 7, Title: "Go", URL: "https://go.dev"}},
	}
	dest := &memDestination{}
	b := NewBackup(fakeExporter{snap: snap}, dest, logger.NewNop(), 0)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(dest.writes) != 1 {
		t.Fatalf("Expected 1 write, got %d", len(dest.writes))
	}

	var got vault.Snapshot
	if err := json.Unmarshal(dest.writes[0], &got); err != nil {
		t.Fatalf("backup is not valid JSON: %v", err)
	}
	if len(got.Bookmarks) != 1 || got.Bookmarks[0].URL != "https://go.dev" {
		t.Errorf("unexpected bookmarks in backup: %+v", got.Bookmarks)
	}
}

func TestBackup_Errors(t *testing.T) {
	b := NewBackup(fakeExporter{err: errors.New("db down")}, &memDestination{}, logger.NewNop(), time.Hour)
	if err := b.Run(context.Background()); err == nil {
		t.Error("Run should fail when export fails")
	}

	b = NewBackup(fakeExporter{}, &memDestination{err: errors.New("denied")}, logger.NewNop(), time.Hour)
	if err := b.Run(context.Background()); err == nil {
		t.Error("Run should fail when the destination rejects the write")
	}
}

func TestBackup_StartWritesImmediately(t *testing.T) {
	dest := &memDestination{}
	b := NewBackup(fakeExporter{}, dest, logger.NewNop(), time.Hour)
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	b.Stop()

	dest.mu.Lock()
	defer dest.mu.Unlock()
	if len(dest.writes) != 1 {
		t.Errorf("Expected initial backup on start, got %d writes", len(dest.writes))
	}
}

type fakeSeeder struct{ n int }

func (f *fakeSeeder) SeedDefaults(context.Context) (int, error) {
	n := f.n
	f.n = 0
	return n, nil
}

func TestSeeder_Seed(t *testing.T) {
	s := NewSeeder(&fakeSeeder{n: 4}, logger.NewNop())
	if err := s.Seed(context.Background()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := s.Seed(context.Background()); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
}

func TestNewS3DestinationRequiresBucket(t *testing.T) {
	if _, err := NewS3Destination(context.Background(), S3Options{}); err == nil {
		t.Error("NewS3Destination without bucket should fail")
	}
}
