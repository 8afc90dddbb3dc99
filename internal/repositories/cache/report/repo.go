package cachereportrepo

import (
	"context"
	cacherepo "docregistry/internal/repositories/cache"
	"time"
)

type repository struct {
	cache     cacherepo.Cache
	reportTTL time.Duration
}

func New(cache cacherepo.Cache, reportTTL time.Duration) *repository {
	return &repository{
		cache:     cache,
		reportTTL: reportTTL,
	}
}

func (r *repository) Get(ctx context.Context, slug string) (string, error) {
	reportJSON, err := r.cache.Get(ctx, reportKey(slug)).Result()
	if err != nil {
		return "", err
	}

	return reportJSON, nil
}

func (r *repository) Set(ctx context.Context, slug string, reportJSON string) error {
	return r.cache.Set(ctx, reportKey(slug), reportJSON, r.reportTTL).Err()
}

func (r *repository) Del(ctx context.Context, slugs ...string) error {
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		keys = append(keys, reportKey(slug))
	}

	return r.cache.Del(ctx, keys...).Err()
}

func reportKey(slug string) string {
	return "report:" + slug
}
