package corpusrepo

import (
	"context"
	"database/sql"
	"docregistry/internal/entities"
	"docregistry/internal/models"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pkg = "corpusRepo/"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) CreateCorpus(ctx context.Context, corpus *models.Corpus) error {
	op := pkg + "CreateCorpus"

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO corpora (id, slug, name, root_path, owner_id, watch, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		corpus.ID, corpus.Slug, corpus.Name, corpus.RootPath, corpus.OwnerID, corpus.Watch, corpus.CreatedAt)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok {
			if pgErr.Code == "23505" {
				return &models.UniqueConstraintError{
					Constraint: pgErr.Constraint,
					Err:        models.ErrUNIQUEConstraintFailed,
				}
			}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) CorpusBySlug(ctx context.Context, slug string) (*models.Corpus, error) {
	op := pkg + "CorpusBySlug"

	rawCorpus := entities.Corpus{}

	err := r.db.GetContext(ctx, &rawCorpus,
		`SELECT
			c.id AS id,
			c.slug AS slug,
			c.name AS name,
			c.root_path AS root_path,
			c.owner_id AS owner_id,
			c.watch AS watch,
			c.created_at AS created_at
		FROM corpora c
		WHERE c.slug = $1`,
		slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrCorpusNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return corpusFromEntity(&rawCorpus), nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Corpus, error) {
	op := pkg + "ListByOwner"

	rawCorpora := make([]entities.Corpus, 0)

	err := r.db.SelectContext(ctx, &rawCorpora,
		`SELECT
			c.id AS id,
			c.slug AS slug,
			c.name AS name,
			c.root_path AS root_path,
			c.owner_id AS owner_id,
			c.watch AS watch,
			c.created_at AS created_at
		FROM corpora c
		WHERE c.owner_id = $1
		ORDER BY c.slug`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	corpora := make([]*models.Corpus, 0, len(rawCorpora))
	for i := range rawCorpora {
		corpora = append(corpora, corpusFromEntity(&rawCorpora[i]))
	}

	return corpora, nil
}

func (r *repository) ListWatched(ctx context.Context) ([]*models.Corpus, error) {
	op := pkg + "ListWatched"

	rawCorpora := make([]entities.Corpus, 0)

	err := r.db.SelectContext(ctx, &rawCorpora,
		`SELECT
			c.id AS id,
			c.slug AS slug,
			c.name AS name,
			c.root_path AS root_path,
			c.owner_id AS owner_id,
			c.watch AS watch,
			c.created_at AS created_at
		FROM corpora c
		WHERE c.watch = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	corpora := make([]*models.Corpus, 0, len(rawCorpora))
	for i := range rawCorpora {
		corpora = append(corpora, corpusFromEntity(&rawCorpora[i]))
	}

	return corpora, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	op := pkg + "Delete"

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM corpora WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ReplaceScan swaps the stored documents and links of a corpus for the
// results of a fresh scan in one transaction.
func (r *repository) ReplaceScan(ctx context.Context, corpusID string, docs []*models.Document, links []*models.Link) error {
	op := pkg + "ReplaceScan"

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM links WHERE corpus_id = $1`, corpusID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM documents WHERE corpus_id = $1`, corpusID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, doc := range docs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (id, corpus_id, rel_path, title, kind, checksum, size_bytes, modified_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			doc.ID, doc.CorpusID, doc.RelPath, doc.Title, doc.Kind, doc.Checksum, doc.SizeBytes, doc.ModifiedAt)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	for _, link := range links {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO links (corpus_id, source_path, raw_target, target_path, fragment, kind, line)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			link.CorpusID, link.SourcePath, link.RawTarget, link.TargetPath, link.Fragment, link.Kind, link.Line)
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

func corpusFromEntity(raw *entities.Corpus) *models.Corpus {
	return &models.Corpus{
		ID:        raw.ID,
		Slug:      raw.Slug,
		Name:      raw.Name,
		RootPath:  raw.RootPath,
		OwnerID:   raw.OwnerID,
		Watch:     raw.Watch,
		CreatedAt: raw.CreatedAt,
	}
}
