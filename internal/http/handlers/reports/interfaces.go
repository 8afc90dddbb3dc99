package reports

import (
	"context"
	"docregistry/internal/models"
)

const pkg = "reportsHandler/"

type LintRunner interface {
	Run(ctx context.Context, slug string) (*models.Report, error)
}

type ReportProvider interface {
	LatestReport(ctx context.Context, slug string) (*models.Report, error)
	Issues(ctx context.Context, slug string, filter models.IssueFilter) ([]*models.Issue, error)
}
