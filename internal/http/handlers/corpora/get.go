package corpora

import (
	"context"
	"docregistry/internal/dto"
	"docregistry/internal/models"
	utils "docregistry/internal/utils/http_errors"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

func Get(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, cp CorpusProvider) {
	op := pkg + "Get"

	log = log.With(slog.String("op", op))

	requester, ok := r.Context().Value(models.UserContextKey).(*models.User)
	if !ok {
		log.Error("failed to get user from context")
		utils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	corpora, err := cp.ListCorpora(ctx, requester)
	if err != nil {
		log.Error("failed to list corpora", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	dtoCorpora := make([]dto.CorpusResponse, 0, len(corpora))

	for _, corpus := range corpora {
		dtoCorpora = append(dtoCorpora, corpusToDTO(corpus))
	}

	response := map[string]any{
		"data": map[string]any{
			"corpora": dtoCorpora,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func GetBySlug(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, slug string, cp CorpusProvider) {
	op := pkg + "GetBySlug"

	log = log.With(slog.String("op", op))

	corpus, err := cp.CorpusBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, models.ErrCorpusNotFound) {
			log.Warn("corpus not found", slog.String("slug", slug))
			utils.WriteJSONError(w, http.StatusNotFound, models.ErrCorpusNotFound.Error())
			return
		}
		log.Error("failed to get corpus", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	response := map[string]any{
		"data": map[string]any{
			"corpus": corpusToDTO(corpus),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func corpusToDTO(corpus *models.Corpus) dto.CorpusResponse {
	return dto.CorpusResponse{
		ID:        corpus.ID,
		Slug:      corpus.Slug,
		Name:      corpus.Name,
		RootPath:  corpus.RootPath,
		Watch:     corpus.Watch,
		CreatedAt: corpus.CreatedAt,
	}
}
