package knowledge

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/fieldserve/fieldserve/internal/models"
)

// Seeder upserts a document discovered in the seed directory.
type Seeder interface {
	UpsertByTitle(ctx context.Context, entry *models.KnowledgeEntry) error
}

var seedExtensions = []string{".md", ".txt"}

// SeedWatcher loads knowledge base documents from a directory and keeps them
// in sync as files are added or edited. Filenames become document titles.
type SeedWatcher struct {
	dir    string
	seeder Seeder
}

// NewSeedWatcher creates a watcher over dir. Use an empty dir to disable.
func NewSeedWatcher(dir string, seeder Seeder) *SeedWatcher {
	return &SeedWatcher{dir: dir, seeder: seeder}
}

// Run ingests existing files, then watches for changes until the context is
// cancelled. Errors are logged and skipped; seeding is best-effort.
func (w *SeedWatcher) Run(ctx context.Context) error {
	if w.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !hasSeedExtension(e.Name()) {
			continue
		}
		w.ingest(ctx, filepath.Join(w.dir, e.Name()))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !hasSeedExtension(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.ingest(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("knowledge: seed watcher: %v", err)
		}
	}
}

func (w *SeedWatcher) ingest(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("knowledge: seed read %s: %v", path, err)
		return
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	entry := &models.KnowledgeEntry{
		Title:    title,
		Content:  string(content),
		Source:   "seed:" + filepath.Base(path),
		IsActive: true,
	}
	if err := w.seeder.UpsertByTitle(ctx, entry); err != nil {
		log.Printf("knowledge: seed upsert %s: %v", title, err)
		return
	}
	log.Printf("knowledge: seeded %q", title)
}

func hasSeedExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range seedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
