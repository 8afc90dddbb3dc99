package corpora

import (
	"context"
	"docregistry/internal/dto"
	"docregistry/internal/models"
	utils "docregistry/internal/utils/http_errors"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

func Add(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, cr CorpusRegistrar) {
	op := pkg + "Add"

	log = log.With(slog.String("op", op))

	requester, ok := r.Context().Value(models.UserContextKey).(*models.User)
	if !ok {
		log.Error("failed to get user from context")
		utils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read body", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}
	defer r.Body.Close()

	var corpusRequest dto.RegisterCorpusRequest

	err = json.Unmarshal(body, &corpusRequest)
	if err != nil {
		log.Error("unmarshal body", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusBadRequest, models.ErrInvalidParams.Error())
		return
	}

	corpus := &models.Corpus{
		Slug:     corpusRequest.Slug,
		Name:     corpusRequest.Name,
		RootPath: corpusRequest.RootPath,
		Watch:    corpusRequest.Watch,
	}

	id, err := cr.RegisterCorpus(ctx, requester, corpus)
	if err != nil {
		if errors.Is(err, models.ErrCorpusExists) {
			log.Warn("failed to register corpus", slog.String("error", models.ErrCorpusExists.Error()))
			utils.WriteJSONError(w, http.StatusConflict, models.ErrCorpusExists.Error())
			return
		}
		if errors.Is(err, models.ErrInvalidParams) || errors.Is(err, models.ErrRootNotFound) {
			log.Warn("failed to register corpus", slog.String("error", err.Error()))
			utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("failed to register corpus", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	response := map[string]any{
		"data": map[string]any{
			"id":   id,
			"slug": corpus.Slug,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
