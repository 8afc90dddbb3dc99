package app

import (
	"context"
	"docregistry/internal/cache/redis"
	"docregistry/internal/config"
	"docregistry/internal/dbs/postgres"
	cachereportrepo "docregistry/internal/repositories/cache/report"
	cachesessionrepo "docregistry/internal/repositories/cache/session"
	corpusrepo "docregistry/internal/repositories/db/corpus"
	reportrepo "docregistry/internal/repositories/db/report"
	userrepo "docregistry/internal/repositories/db/user"
	corpusdirrepo "docregistry/internal/repositories/storage/corpusdir"
	authservice "docregistry/internal/services/auth"
	corpusservice "docregistry/internal/services/corpus"
	lintservice "docregistry/internal/services/lint"
	userservice "docregistry/internal/services/user"
	"docregistry/internal/watcher"
	"fmt"
	"log/slog"
)

type App struct {
	AuthService   AuthService
	UserService   UserService
	CorpusService CorpusService
	LintService   LintService

	log     *slog.Logger
	watcher *watcher.Watcher
}

func NewApp(ctx context.Context, log *slog.Logger, dbCfg config.DB, cacheCfg config.Cache, registryCfg config.Registry, adminToken string) (*App, error) {
	db, err := postgres.New(ctx, postgres.Config{
		Addr:     dbCfg.Addr,
		Port:     dbCfg.Port,
		User:     dbCfg.User,
		Password: dbCfg.Password,
		DB:       dbCfg.DB})
	if err != nil {
		log.Error("failed connect to db", "err", err)
		return nil, fmt.Errorf("failed connect to db: %w", err)
	}

	cache, err := redis.New(ctx, redis.Config{Addr: cacheCfg.Addr, Password: cacheCfg.Password, DB: cacheCfg.DB})
	if err != nil {
		log.Error("failed connect to cache", "err", err)
		return nil, fmt.Errorf("failed connect to cache: %w", err)
	}

	userRepo := userrepo.NewRepository(db)

	sessionCacheRepo := cachesessionrepo.New(cache, cacheCfg.SessionTTL)

	reportCacheRepo := cachereportrepo.New(cache, cacheCfg.ReportTTL)

	userService := userservice.New(log, userRepo, userRepo)

	authService := authservice.New(log, userService, userService, sessionCacheRepo, adminToken)

	corpusRepo := corpusrepo.NewRepository(db)

	reportRepo := reportrepo.NewRepository(db)

	treeReader := corpusdirrepo.NewRepository()

	w := watcher.New(log, registryCfg.WatchDebounce)

	corpusService := corpusservice.New(log, corpusRepo, treeReader, reportCacheRepo, w)

	lintService := lintservice.New(log, corpusService, corpusService, reportRepo, reportCacheRepo)

	return &App{
		AuthService:   authService,
		UserService:   userService,
		CorpusService: corpusService,
		LintService:   lintService,
		log:           log,
		watcher:       w,
	}, nil
}

// StartWatcher begins watching every corpus registered with watch on.
// It returns immediately; the watcher lives until ctx is done, and
// corpora registered or deleted afterwards join and leave it at runtime.
func (a *App) StartWatcher(ctx context.Context) error {
	corpora, err := a.CorpusService.ListWatched(ctx)
	if err != nil {
		return fmt.Errorf("failed to list watched corpora: %w", err)
	}

	go func() {
		if err := a.watcher.Watch(ctx, a.LintService, corpora); err != nil {
			a.log.Error("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	return nil
}
