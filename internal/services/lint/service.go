package lintservice

import (
	"context"
	"docregistry/internal/models"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	uuid "github.com/satori/go.uuid"
)

const pkg = "lintService/"

type LintService struct {
	log            *slog.Logger
	scanner        Scanner
	corpusProvider CorpusProvider
	reportRepo     ReportRepository
	cache          Cache
}

func New(
	log *slog.Logger,
	scanner Scanner,
	corpusProvider CorpusProvider,
	reportRepo ReportRepository,
	cache Cache,
) *LintService {
	return &LintService{
		log:            log,
		scanner:        scanner,
		corpusProvider: corpusProvider,
		reportRepo:     reportRepo,
		cache:          cache,
	}
}

// Run scans the corpus, evaluates every enabled integrity check and
// persists the resulting report. The serialized report replaces the
// cached one for the corpus.
func (ls *LintService) Run(ctx context.Context, slug string) (*models.Report, error) {
	op := pkg + "Run"

	log := ls.log.With(slog.String("op", op))

	log.Debug("attempting to lint corpus", slog.String("slug", slug))

	corpus, err := ls.corpusProvider.CorpusBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	started := time.Now()

	snap, err := ls.scanner.Scan(ctx, corpus)
	if err != nil {
		var scanErr *models.ScanError
		if errors.As(err, &scanErr) ||
			errors.Is(err, models.ErrRootNotFound) ||
			errors.Is(err, models.ErrInvalidManifest) {
			log.Warn("scan failed", slog.String("slug", slug), slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to scan corpus", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	report := buildReport(corpus, snap, evaluate(snap), time.Since(started))

	if err := ls.reportRepo.CreateReport(ctx, report); err != nil {
		log.Error("failed to persist report", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	ls.cacheReport(ctx, log, slug, report)

	log.Debug("corpus linted successfully",
		slog.String("slug", slug),
		slog.Int("errors", report.Errors),
		slog.Int("warnings", report.Warnings),
		slog.Int("infos", report.Infos))

	return report, nil
}

// LatestReport serves the most recent report, from cache when possible.
func (ls *LintService) LatestReport(ctx context.Context, slug string) (*models.Report, error) {
	op := pkg + "LatestReport"

	log := ls.log.With(slog.String("op", op))

	reportJSON, err := ls.cache.Get(ctx, slug)
	if err == nil && reportJSON != "" {
		var report models.Report
		if err := json.Unmarshal([]byte(reportJSON), &report); err == nil {
			return &report, nil
		}
		log.Warn("failed to unmarshal cached report", slog.String("slug", slug))
	}

	corpus, err := ls.corpusProvider.CorpusBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	report, err := ls.reportRepo.LatestReport(ctx, corpus.ID)
	if err != nil {
		if errors.Is(err, models.ErrReportNotFound) {
			log.Warn("no report for corpus", slog.String("slug", slug))
			return nil, models.ErrReportNotFound
		}
		log.Error("failed to get latest report", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	ls.cacheReport(ctx, log, slug, report)

	return report, nil
}

func (ls *LintService) Issues(ctx context.Context, slug string, filter models.IssueFilter) ([]*models.Issue, error) {
	op := pkg + "Issues"

	log := ls.log.With(slog.String("op", op))

	if !filter.IsValid() {
		log.Warn("invalid issue filter", slog.String("code", filter.Code), slog.String("severity", filter.Severity))
		return nil, models.ErrInvalidParams
	}

	corpus, err := ls.corpusProvider.CorpusBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	issues, err := ls.reportRepo.FilteredIssues(ctx, corpus.ID, filter)
	if err != nil {
		if errors.Is(err, models.ErrReportNotFound) {
			log.Warn("no report for corpus", slog.String("slug", slug))
			return nil, models.ErrReportNotFound
		}
		log.Error("failed to list issues", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return issues, nil
}

func (ls *LintService) cacheReport(ctx context.Context, log *slog.Logger, slug string, report *models.Report) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		log.Error("failed to marshal report", slog.String("error", err.Error()))
		return
	}

	if err := ls.cache.Set(ctx, slug, string(reportJSON)); err != nil {
		log.Error("failed to cache report", slog.String("error", err.Error()))
	}
}

func buildReport(corpus *models.Corpus, snap *models.Snapshot, issues []*models.Issue, took time.Duration) *models.Report {
	report := &models.Report{
		ID:           uuid.NewV4().String(),
		CorpusID:     corpus.ID,
		FilesScanned: len(snap.Documents),
		LinksFound:   len(snap.Links),
		DurationMS:   took.Milliseconds(),
		CreatedAt:    time.Now(),
		Issues:       issues,
	}

	for _, issue := range issues {
		issue.ID = uuid.NewV4().String()
		issue.ReportID = report.ID

		switch issue.Severity {
		case models.SeverityError:
			report.Errors++
		case models.SeverityWarning:
			report.Warnings++
		case models.SeverityInfo:
			report.Infos++
		}
	}

	return report
}
