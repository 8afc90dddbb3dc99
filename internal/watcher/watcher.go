package watcher

import (
	"context"
	"docregistry/internal/manifest"
	"docregistry/internal/models"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const pkg = "watcher/"

type LintRunner interface {
	Run(ctx context.Context, slug string) (*models.Report, error)
}

// Watcher rescans watched corpora when their trees change. Events are
// debounced per corpus: a rescan fires only after the tree stayed quiet
// for the configured interval. Corpora can join and leave the watch set
// while Watch is running via Attach and Detach.
type Watcher struct {
	log      *slog.Logger
	debounce time.Duration
	attach   chan *models.Corpus
	detach   chan string
}

func New(log *slog.Logger, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	return &Watcher{
		log:      log,
		debounce: debounce,
		attach:   make(chan *models.Corpus, 16),
		detach:   make(chan string, 16),
	}
}

// Attach adds a corpus to the watch set. Calling before Watch starts is
// fine; the corpus is picked up once the loop runs. Watching is
// best-effort: a full queue drops the request with a warning.
func (w *Watcher) Attach(corpus *models.Corpus) {
	select {
	case w.attach <- corpus:
	default:
		w.log.Warn("watch queue full, corpus not attached", slog.String("slug", corpus.Slug))
	}
}

// Detach removes a corpus from the watch set. Unknown slugs are ignored.
func (w *Watcher) Detach(slug string) {
	select {
	case w.detach <- slug:
	default:
		w.log.Warn("watch queue full, corpus not detached", slog.String("slug", slug))
	}
}

// Watch blocks until ctx is done, dispatching debounced rescans for the
// given corpora plus whatever Attach adds later. Watcher errors are
// logged, never fatal.
func (w *Watcher) Watch(ctx context.Context, runner LintRunner, corpora []*models.Corpus) error {
	op := pkg + "Watch"

	log := w.log.With(slog.String("op", op))

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%s: fsnotify.NewWatcher: %w", op, err)
	}
	defer func() {
		_ = fsw.Close()
	}()

	roots := make(map[string]string, len(corpora))

	for _, corpus := range corpora {
		w.watchCorpus(fsw, log, roots, corpus)
	}

	dirty := make(map[string]time.Time)

	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case corpus := <-w.attach:
			w.watchCorpus(fsw, log, roots, corpus)

		case slug := <-w.detach:
			forget(fsw, roots, slug)
			delete(dirty, slug)
			log.Info("stopped watching corpus", slog.String("slug", slug))

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("%s: watcher channel closed", op)
			}

			if !w.relevant(event) {
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				// New subdirectories must join the watch set.
				_ = w.addTree(fsw, event.Name)
			}

			if slug, ok := slugFor(roots, event.Name); ok {
				dirty[slug] = time.Now()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("%s: watcher error channel closed", op)
			}
			log.Warn("fsnotify watcher error", slog.String("error", err.Error()))

		case <-tick.C:
			for slug, last := range dirty {
				if time.Since(last) < w.debounce {
					continue
				}
				delete(dirty, slug)

				log.Info("corpus changed, rescanning", slog.String("slug", slug))

				if _, err := runner.Run(ctx, slug); err != nil {
					log.Error("watch-triggered lint failed",
						slog.String("slug", slug),
						slog.String("error", err.Error()))
				}
			}
		}
	}
}

func (w *Watcher) watchCorpus(fsw *fsnotify.Watcher, log *slog.Logger, roots map[string]string, corpus *models.Corpus) {
	root := filepath.Clean(corpus.RootPath)
	roots[root] = corpus.Slug

	if err := w.addTree(fsw, root); err != nil {
		log.Warn("failed to watch corpus root",
			slog.String("slug", corpus.Slug),
			slog.String("error", err.Error()))
		return
	}

	log.Info("watching corpus", slog.String("slug", corpus.Slug), slog.String("root", root))
}

func forget(fsw *fsnotify.Watcher, roots map[string]string, slug string) {
	for root, s := range roots {
		if s != slug {
			continue
		}

		delete(roots, root)

		for _, p := range fsw.WatchList() {
			if p == root || strings.HasPrefix(p, root+string(filepath.Separator)) {
				_ = fsw.Remove(p)
			}
		}
	}
}

// relevant keeps markdown files, the corpus manifest and directories;
// everything else in the tree is noise.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)

	if base == manifest.FileName {
		return true
	}

	if strings.HasSuffix(strings.ToLower(base), ".md") {
		return true
	}

	// Directory events carry no reliable type info after removal, so
	// extensionless names pass through.
	return filepath.Ext(base) == ""
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		name := d.Name()
		if p != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			return fs.SkipDir
		}

		return fsw.Add(p)
	})
}

func slugFor(roots map[string]string, name string) (string, bool) {
	p := filepath.Clean(name)

	for root, slug := range roots {
		if p == root || strings.HasPrefix(p, root+string(filepath.Separator)) {
			return slug, true
		}
	}

	return "", false
}
