package server

import (
	"context"
	"docregistry/internal/config"
	"docregistry/internal/http/handlers/corpora"
	"docregistry/internal/http/handlers/reports"
	"docregistry/internal/http/handlers/session"
	"docregistry/internal/http/handlers/user"
	"docregistry/internal/http/middleware"
	"docregistry/internal/models"
	utils "docregistry/internal/utils/http_errors"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

func StartServer(
	ctx context.Context,
	cfg *config.HTTPServer,
	log *slog.Logger,
	corpusService CorpusService,
	lintService LintService,
	authService AuthService,
	sessionStorer SessionStorer,
) error {
	r := mux.NewRouter()

	r.Use(middleware.Logger(log))

	setupRoutes(r, log, authService, corpusService, lintService, sessionStorer)

	srv := &http.Server{
		Addr:         cfg.Address,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
		Handler:      r,
	}

	errChan := make(chan error, 1)

	go func() {
		log.Info("server started", slog.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info("server closed gracefully")
			} else {
				log.Error("could not start server:", "error", err)
				errChan <- err
			}
		}
	}()
	select {
	case <-ctx.Done():
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down server", "error", err)
			return err
		}
		log.Info("server exited gracefully")
		return nil
	case err := <-errChan:
		return err
	}
}

func setupRoutes(r *mux.Router, log *slog.Logger, auth AuthService, corpus CorpusService, lint LintService, sessionStorer SessionStorer) {
	// POST user
	r.HandleFunc("/api/register", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user.Add(ctx, log, w, r, auth)
	}).Methods(http.MethodPost)

	// POST session
	r.HandleFunc("/api/auth", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session.Add(ctx, log, w, r, auth)
	}).Methods(http.MethodPost)

	// DELETE session
	r.HandleFunc("/api/auth/{token}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		token := vars["token"]
		session.Delete(ctx, log, w, r, token, auth)
	}).Methods(http.MethodDelete)

	protected := r.NewRoute().Subrouter()

	protected.Use(middleware.Auth(log, sessionStorer))

	// POST corpus
	protected.HandleFunc("/api/corpora", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		corpora.Add(ctx, log, w, r, corpus)
	}).Methods(http.MethodPost)

	// GET corpora
	protected.HandleFunc("/api/corpora", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		corpora.Get(ctx, log, w, r, corpus)
	}).Methods(http.MethodGet)

	// GET corpus by slug
	protected.HandleFunc("/api/corpora/{slug}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		slug := vars["slug"]
		corpora.GetBySlug(ctx, log, w, r, slug, corpus)
	}).Methods(http.MethodGet)

	// DELETE corpus by slug
	protected.HandleFunc("/api/corpora/{slug}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		slug := vars["slug"]
		corpora.Delete(ctx, log, w, r, slug, corpus)
	}).Methods(http.MethodDelete)

	// POST scan
	protected.HandleFunc("/api/corpora/{slug}/scans", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		slug := vars["slug"]
		reports.Scan(ctx, log, w, r, slug, lint)
	}).Methods(http.MethodPost)

	// GET latest report
	protected.HandleFunc("/api/corpora/{slug}/report", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		slug := vars["slug"]
		reports.Get(ctx, log, w, r, slug, lint)
	}).Methods(http.MethodGet)

	// GET issues
	protected.HandleFunc("/api/corpora/{slug}/issues", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		slug := vars["slug"]
		reports.Issues(ctx, log, w, r, slug, lint)
	}).Methods(http.MethodGet)

	// Not allowed
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, http.StatusMethodNotAllowed, models.ErrMethodNotAllowed.Error())
	})
}
