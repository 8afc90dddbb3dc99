package corpusservice

import (
	"context"
	"docregistry/internal/manifest"
	"docregistry/internal/markdown"
	"docregistry/internal/models"
	"docregistry/internal/validator"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

const pkg = "corpusService/"

type CorpusService struct {
	log         *slog.Logger
	corpusRepo  CorpusRepository
	tree        TreeReader
	reportCache ReportCache
	watch       WatchRegistry
}

func New(
	log *slog.Logger,
	corpusRepo CorpusRepository,
	tree TreeReader,
	reportCache ReportCache,
	watch WatchRegistry,
) *CorpusService {
	return &CorpusService{
		log:         log,
		corpusRepo:  corpusRepo,
		tree:        tree,
		reportCache: reportCache,
		watch:       watch,
	}
}

func (cs *CorpusService) RegisterCorpus(ctx context.Context, requester *models.User, corpus *models.Corpus) (string, error) {
	op := pkg + "RegisterCorpus"

	log := cs.log.With(slog.String("op", op))

	log.Debug("attempting to register corpus", slog.String("slug", corpus.Slug))

	if !validator.IsValidSlug(corpus.Slug) || corpus.RootPath == "" {
		log.Warn("invalid slug or root path", slog.String("slug", corpus.Slug))
		return "", models.ErrInvalidParams
	}

	if !cs.tree.RootExists(corpus.RootPath) {
		log.Warn("corpus root does not exist", slog.String("root", corpus.RootPath))
		return "", models.ErrRootNotFound
	}

	corpus.ID = uuid.NewV4().String()
	corpus.OwnerID = requester.ID
	corpus.CreatedAt = time.Now()

	err := cs.corpusRepo.CreateCorpus(ctx, corpus)
	if err != nil {
		var uce *models.UniqueConstraintError
		if errors.As(err, &uce) {
			log.Warn("corpus already exists", slog.String("slug", corpus.Slug))
			return "", models.ErrCorpusExists
		}
		log.Error("failed to create corpus", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	if corpus.Watch {
		cs.watch.Attach(corpus)
	}

	log.Debug("corpus registered successfully", slog.String("corpus_id", corpus.ID))

	return corpus.ID, nil
}

func (cs *CorpusService) CorpusBySlug(ctx context.Context, slug string) (*models.Corpus, error) {
	op := pkg + "CorpusBySlug"

	log := cs.log.With(slog.String("op", op))

	corpus, err := cs.corpusRepo.CorpusBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, models.ErrCorpusNotFound) {
			log.Warn("corpus not found", slog.String("slug", slug))
			return nil, models.ErrCorpusNotFound
		}
		log.Error("failed to get corpus by slug", slog.String("error", err.Error()))
		return nil, models.ErrInternal
	}

	return corpus, nil
}

func (cs *CorpusService) ListCorpora(ctx context.Context, requester *models.User) ([]*models.Corpus, error) {
	op := pkg + "ListCorpora"

	log := cs.log.With(slog.String("op", op))

	corpora, err := cs.corpusRepo.ListByOwner(ctx, requester.ID)
	if err != nil {
		log.Error("failed to list corpora", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return corpora, nil
}

func (cs *CorpusService) ListWatched(ctx context.Context) ([]*models.Corpus, error) {
	op := pkg + "ListWatched"

	log := cs.log.With(slog.String("op", op))

	corpora, err := cs.corpusRepo.ListWatched(ctx)
	if err != nil {
		log.Error("failed to list watched corpora", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return corpora, nil
}

func (cs *CorpusService) DeleteCorpus(ctx context.Context, slug string, requester *models.User) error {
	op := pkg + "DeleteCorpus"

	log := cs.log.With(slog.String("op", op))

	log.Debug("attempting to delete corpus", slog.String("slug", slug), slog.String("user_id", requester.ID))

	corpus, err := cs.CorpusBySlug(ctx, slug)
	if err != nil {
		return err
	}

	if corpus.OwnerID != requester.ID {
		log.Warn("user is not the corpus owner", slog.String("slug", slug), slog.String("user_id", requester.ID))
		return models.ErrForbidden
	}

	if err := cs.corpusRepo.Delete(ctx, corpus.ID); err != nil {
		log.Error("failed to delete corpus", slog.String("error", err.Error()))
		return models.ErrInternal
	}

	cs.watch.Detach(slug)

	if err := cs.reportCache.Del(ctx, slug); err != nil {
		log.Error("failed to invalidate report cache", slog.String("error", err.Error()))
	}

	log.Debug("corpus deleted successfully", slog.String("slug", slug))

	return nil
}

// Scan walks the corpus tree, parses every markdown file and replaces
// the stored documents and links with the fresh result. The returned
// snapshot carries everything the lint checks need.
func (cs *CorpusService) Scan(ctx context.Context, corpus *models.Corpus) (*models.Snapshot, error) {
	op := pkg + "Scan"

	log := cs.log.With(slog.String("op", op))

	log.Debug("attempting to scan corpus", slog.String("slug", corpus.Slug))

	man, err := manifest.Load(corpus.RootPath)
	if err != nil {
		log.Warn("failed to load manifest", slog.String("error", err.Error()))
		return nil, err
	}

	files, err := cs.tree.MarkdownFiles(ctx, corpus.RootPath, man.Ignored)
	if err != nil {
		var scanErr *models.ScanError
		if errors.As(err, &scanErr) || errors.Is(err, models.ErrRootNotFound) {
			log.Warn("scan aborted", slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to walk corpus tree", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	snap := &models.Snapshot{
		Corpus:     corpus,
		Policy:     man.Policy,
		Documents:  make([]*models.Document, 0, len(files)),
		Links:      make([]*models.Link, 0),
		Anchors:    make(map[string][]string, len(files)),
		Deprecated: make(map[string]int),
	}

	for _, file := range files {
		parsed, err := markdown.Parse(file.Data)
		if err != nil {
			log.Warn("failed to parse markdown", slog.String("path", file.RelPath), slog.String("error", err.Error()))
			return nil, &models.ScanError{Path: file.RelPath, Err: err}
		}

		title := parsed.Title
		if title == "" {
			title = strings.TrimSuffix(path.Base(file.RelPath), ".md")
		}

		snap.Documents = append(snap.Documents, &models.Document{
			ID:         uuid.NewV4().String(),
			CorpusID:   corpus.ID,
			RelPath:    file.RelPath,
			Title:      title,
			Kind:       docKind(file.RelPath, man.Policy),
			Checksum:   file.Checksum,
			SizeBytes:  file.SizeBytes,
			ModifiedAt: file.ModifiedAt,
		})

		snap.Anchors[file.RelPath] = parsed.Anchors()

		if line, ok := deprecationLine(file.Data); ok {
			snap.Deprecated[file.RelPath] = line
		}

		for _, rawLink := range parsed.Links {
			link := resolveLink(corpus.ID, file.RelPath, rawLink.RawTarget, rawLink.Line)
			if link == nil {
				continue
			}
			snap.Links = append(snap.Links, link)
		}
	}

	if err := cs.corpusRepo.ReplaceScan(ctx, corpus.ID, snap.Documents, snap.Links); err != nil {
		log.Error("failed to persist scan", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	if err := cs.reportCache.Del(ctx, corpus.Slug); err != nil {
		log.Error("failed to invalidate report cache", slog.String("error", err.Error()))
	}

	log.Debug("corpus scanned successfully",
		slog.String("slug", corpus.Slug),
		slog.Int("documents", len(snap.Documents)),
		slog.Int("links", len(snap.Links)))

	return snap, nil
}

func docKind(relPath string, policy models.CorpusPolicy) models.DocKind {
	base := path.Base(relPath)

	switch {
	case base == policy.IndexName:
		return models.DocKindIndex
	case strings.HasSuffix(base, policy.RuleSuffix):
		return models.DocKindRule
	default:
		return models.DocKindGuide
	}
}

// deprecationLine finds a deprecation banner: a line that, stripped of
// blockquote and emphasis markers, starts with "DEPRECATED". The
// forward-only change policy wants such documents replaced, not kept.
func deprecationLine(data []byte) (int, bool) {
	for i, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimLeft(line, "#> \t")
		trimmed = strings.TrimLeft(trimmed, "*_")
		if strings.HasPrefix(strings.ToUpper(trimmed), "DEPRECATED") {
			return i + 1, true
		}
	}

	return 0, false
}
