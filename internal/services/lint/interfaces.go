package lintservice

import (
	"context"
	"docregistry/internal/models"
)

type Scanner interface {
	Scan(ctx context.Context, corpus *models.Corpus) (*models.Snapshot, error)
}

type CorpusProvider interface {
	CorpusBySlug(ctx context.Context, slug string) (*models.Corpus, error)
}

type ReportRepository interface {
	CreateReport(ctx context.Context, report *models.Report) error
	LatestReport(ctx context.Context, corpusID string) (*models.Report, error)
	FilteredIssues(ctx context.Context, corpusID string, filter models.IssueFilter) ([]*models.Issue, error)
}

type Cache interface {
	Get(ctx context.Context, slug string) (string, error)
	Set(ctx context.Context, slug string, reportJSON string) error
	Del(ctx context.Context, slugs ...string) error
}
