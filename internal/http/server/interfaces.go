package server

import (
	"context"
	"docregistry/internal/models"
)

type AuthService interface {
	Register(ctx context.Context, login string, password string, token string) (string, error)
	Login(ctx context.Context, login string, password string) (string, error)
	UserByToken(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
}

type CorpusService interface {
	RegisterCorpus(ctx context.Context, requester *models.User, corpus *models.Corpus) (string, error)
	CorpusBySlug(ctx context.Context, slug string) (*models.Corpus, error)
	ListCorpora(ctx context.Context, requester *models.User) ([]*models.Corpus, error)
	DeleteCorpus(ctx context.Context, slug string, requester *models.User) error
}

type LintService interface {
	Run(ctx context.Context, slug string) (*models.Report, error)
	LatestReport(ctx context.Context, slug string) (*models.Report, error)
	Issues(ctx context.Context, slug string, filter models.IssueFilter) ([]*models.Issue, error)
}

type SessionStorer interface {
	UserByToken(ctx context.Context, token string) (*models.User, error)
}
