package reports

import (
	"context"
	"docregistry/internal/dto"
	"docregistry/internal/models"
	utils "docregistry/internal/utils/http_errors"
	parseutil "docregistry/internal/utils/parseLimit"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

func Get(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, slug string, rp ReportProvider) {
	op := pkg + "Get"

	log = log.With(slog.String("op", op))

	report, err := rp.LatestReport(ctx, slug)
	if err != nil {
		if errors.Is(err, models.ErrCorpusNotFound) || errors.Is(err, models.ErrReportNotFound) {
			log.Warn("no report for corpus", slog.String("slug", slug))
			utils.WriteJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Error("failed to get report", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	response := map[string]any{
		"data": map[string]any{
			"report": reportToDTO(report),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Issues(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, slug string, rp ReportProvider) {
	op := pkg + "Issues"

	log = log.With(slog.String("op", op))

	filter := models.IssueFilter{
		Code:     r.URL.Query().Get("code"),
		Severity: r.URL.Query().Get("severity"),
		Limit:    parseutil.ParseLimit(r.URL.Query().Get("limit")),
	}

	issues, err := rp.Issues(ctx, slug, filter)
	if err != nil {
		if errors.Is(err, models.ErrInvalidParams) {
			log.Warn("invalid issue filter")
			utils.WriteJSONError(w, http.StatusBadRequest, models.ErrInvalidParams.Error())
			return
		}
		if errors.Is(err, models.ErrCorpusNotFound) || errors.Is(err, models.ErrReportNotFound) {
			log.Warn("no report for corpus", slog.String("slug", slug))
			utils.WriteJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Error("failed to list issues", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	dtoIssues := make([]dto.IssueResponse, 0, len(issues))
	for _, issue := range issues {
		dtoIssues = append(dtoIssues, issueToDTO(issue))
	}

	response := map[string]any{
		"data": map[string]any{
			"issues": dtoIssues,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func reportToDTO(report *models.Report) dto.ReportResponse {
	dtoIssues := make([]dto.IssueResponse, 0, len(report.Issues))
	for _, issue := range report.Issues {
		dtoIssues = append(dtoIssues, issueToDTO(issue))
	}

	return dto.ReportResponse{
		ID:           report.ID,
		CorpusID:     report.CorpusID,
		FilesScanned: report.FilesScanned,
		LinksFound:   report.LinksFound,
		Errors:       report.Errors,
		Warnings:     report.Warnings,
		Infos:        report.Infos,
		DurationMS:   report.DurationMS,
		CreatedAt:    report.CreatedAt,
		Issues:       dtoIssues,
	}
}

func issueToDTO(issue *models.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		Code:     issue.Code,
		Severity: string(issue.Severity),
		Path:     issue.Path,
		Line:     issue.Line,
		Detail:   issue.Detail,
	}
}
