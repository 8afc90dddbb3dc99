package corpora

import (
	"context"
	"docregistry/internal/models"
)

const pkg = "corporaHandler/"

type CorpusRegistrar interface {
	RegisterCorpus(ctx context.Context, requester *models.User, corpus *models.Corpus) (string, error)
}

type CorpusProvider interface {
	CorpusBySlug(ctx context.Context, slug string) (*models.Corpus, error)
	ListCorpora(ctx context.Context, requester *models.User) ([]*models.Corpus, error)
}

type CorpusDeleter interface {
	DeleteCorpus(ctx context.Context, slug string, requester *models.User) error
}
