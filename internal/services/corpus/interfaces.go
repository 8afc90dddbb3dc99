package corpusservice

import (
	"context"
	"docregistry/internal/models"
	"docregistry/internal/repositories/storage"
)

type CorpusRepository interface {
	CreateCorpus(ctx context.Context, corpus *models.Corpus) error
	CorpusBySlug(ctx context.Context, slug string) (*models.Corpus, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Corpus, error)
	ListWatched(ctx context.Context) ([]*models.Corpus, error)
	Delete(ctx context.Context, id string) error
	ReplaceScan(ctx context.Context, corpusID string, docs []*models.Document, links []*models.Link) error
}

type TreeReader interface {
	MarkdownFiles(ctx context.Context, root string, ignored func(rel string) bool) ([]*storage.File, error)
	RootExists(root string) bool
}

type ReportCache interface {
	Del(ctx context.Context, slugs ...string) error
}

type WatchRegistry interface {
	Attach(corpus *models.Corpus)
	Detach(slug string)
}
