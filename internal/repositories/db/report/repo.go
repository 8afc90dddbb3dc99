package reportrepo

import (
	"context"
	"database/sql"
	"docregistry/internal/entities"
	"docregistry/internal/models"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
)

const pkg = "reportRepo/"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) CreateReport(ctx context.Context, report *models.Report) error {
	op := pkg + "CreateReport"

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (id, corpus_id, files_scanned, links_found, errors, warnings, infos, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		report.ID, report.CorpusID, report.FilesScanned, report.LinksFound,
		report.Errors, report.Warnings, report.Infos, report.DurationMS, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, issue := range report.Issues {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO issues (id, report_id, code, severity, path, line, detail)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			issue.ID, issue.ReportID, issue.Code, issue.Severity, issue.Path, issue.Line, issue.Detail)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) LatestReport(ctx context.Context, corpusID string) (*models.Report, error) {
	op := pkg + "LatestReport"

	rawReport := entities.Report{}

	err := r.db.GetContext(ctx, &rawReport,
		`SELECT
			r.id AS id,
			r.corpus_id AS corpus_id,
			r.files_scanned AS files_scanned,
			r.links_found AS links_found,
			r.errors AS errors,
			r.warnings AS warnings,
			r.infos AS infos,
			r.duration_ms AS duration_ms,
			r.created_at AS created_at
		FROM reports r
		WHERE r.corpus_id = $1
		ORDER BY r.created_at DESC
		LIMIT 1`,
		corpusID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrReportNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	issues, err := r.issuesByReport(ctx, rawReport.ID, models.IssueFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Report{
		ID:           rawReport.ID,
		CorpusID:     rawReport.CorpusID,
		FilesScanned: rawReport.FilesScanned,
		LinksFound:   rawReport.LinksFound,
		Errors:       rawReport.Errors,
		Warnings:     rawReport.Warnings,
		Infos:        rawReport.Infos,
		DurationMS:   rawReport.DurationMS,
		CreatedAt:    rawReport.CreatedAt,
		Issues:       issues,
	}, nil
}

// FilteredIssues returns issues of the latest report of a corpus,
// narrowed by the filter.
func (r *repository) FilteredIssues(ctx context.Context, corpusID string, filter models.IssueFilter) ([]*models.Issue, error) {
	op := pkg + "FilteredIssues"

	var reportID string

	err := r.db.GetContext(ctx, &reportID,
		`SELECT r.id
		FROM reports r
		WHERE r.corpus_id = $1
		ORDER BY r.created_at DESC
		LIMIT 1`,
		corpusID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrReportNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	issues, err := r.issuesByReport(ctx, reportID, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return issues, nil
}

func (r *repository) issuesByReport(ctx context.Context, reportID string, filter models.IssueFilter) ([]*models.Issue, error) {
	op := pkg + "issuesByReport"

	query := `SELECT
			i.id AS id,
			i.report_id AS report_id,
			i.code AS code,
			i.severity AS severity,
			i.path AS path,
			i.line AS line,
			i.detail AS detail
		FROM issues i
		WHERE i.report_id = $1`

	args := []any{reportID}

	if filter.Code != "" {
		args = append(args, filter.Code)
		query += ` AND i.code = $` + strconv.Itoa(len(args))
	}

	if filter.Severity != "" {
		args = append(args, filter.Severity)
		query += ` AND i.severity = $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY i.path, i.line`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rawIssues := make([]entities.Issue, 0)

	err := r.db.SelectContext(ctx, &rawIssues, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	issues := make([]*models.Issue, 0, len(rawIssues))

	for _, rawIssue := range rawIssues {
		issues = append(issues, &models.Issue{
			ID:       rawIssue.ID,
			ReportID: rawIssue.ReportID,
			Code:     rawIssue.Code,
			Severity: models.Severity(rawIssue.Severity),
			Path:     rawIssue.Path,
			Line:     rawIssue.Line,
			Detail:   rawIssue.Detail,
		})
	}

	return issues, nil
}
