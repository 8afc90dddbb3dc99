package corpora

import (
	"context"
	"docregistry/internal/models"
	utils "docregistry/internal/utils/http_errors"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

func Delete(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, slug string, cd CorpusDeleter) {
	op := pkg + "Delete"

	log = log.With(slog.String("op", op))

	requester, ok := r.Context().Value(models.UserContextKey).(*models.User)
	if !ok {
		log.Error("failed to get user from context")
		utils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	err := cd.DeleteCorpus(ctx, slug, requester)
	if err != nil {
		if errors.Is(err, models.ErrCorpusNotFound) {
			log.Warn("corpus not found", slog.String("slug", slug))
			utils.WriteJSONError(w, http.StatusNotFound, models.ErrCorpusNotFound.Error())
			return
		}
		if errors.Is(err, models.ErrForbidden) {
			log.Warn("failed to delete corpus, permission denied", slog.String("slug", slug))
			utils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
			return
		}
		log.Error("failed to delete corpus", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	response := map[string]any{
		"response": map[string]any{
			slug: true,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
