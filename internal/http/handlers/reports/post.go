package reports

import (
	"context"
	"docregistry/internal/models"
	utils "docregistry/internal/utils/http_errors"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Scan triggers a synchronous scan+lint run and returns the fresh
// report.
func Scan(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, slug string, lr LintRunner) {
	op := pkg + "Scan"

	log = log.With(slog.String("op", op))

	report, err := lr.Run(ctx, slug)
	if err != nil {
		if errors.Is(err, models.ErrCorpusNotFound) {
			log.Warn("corpus not found", slog.String("slug", slug))
			utils.WriteJSONError(w, http.StatusNotFound, models.ErrCorpusNotFound.Error())
			return
		}

		var scanErr *models.ScanError
		if errors.As(err, &scanErr) ||
			errors.Is(err, models.ErrRootNotFound) ||
			errors.Is(err, models.ErrInvalidManifest) {
			log.Warn("scan failed", slog.String("slug", slug), slog.String("error", err.Error()))
			utils.WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		log.Error("failed to lint corpus", slog.String("error", err.Error()))
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
