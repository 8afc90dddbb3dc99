package corpusdirrepo

import (
	"context"
	"crypto/sha256"
	"docregistry/internal/models"
	"docregistry/internal/repositories/storage"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const pkg = "corpusDirRepo/"

type repository struct{}

func NewRepository() *repository {
	return &repository{}
}

func (r *repository) RootExists(root string) bool {
	info, err := os.Stat(root)
	return err == nil && info.IsDir()
}

func (r *repository) MarkdownFiles(ctx context.Context, root string, ignored func(rel string) bool) ([]*storage.File, error) {
	op := pkg + "MarkdownFiles"

	if !r.RootExists(root) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrRootNotFound)
	}

	files := make([]*storage.File, 0)

	fsys := os.DirFS(root)

	err := fs.WalkDir(fsys, ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return &models.ScanError{Path: rel, Err: err}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			// Hidden and underscore directories never hold corpus docs.
			if strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") {
				return fs.SkipDir
			}
			if ignored != nil && ignored(rel) {
				return fs.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		if ignored != nil && ignored(rel) {
			return nil
		}

		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return &models.ScanError{Path: rel, Err: err}
		}

		info, err := d.Info()
		if err != nil {
			return &models.ScanError{Path: rel, Err: err}
		}

		sum := sha256.Sum256(data)

		files = append(files, &storage.File{
			RelPath:    rel,
			Data:       data,
			Checksum:   hex.EncodeToString(sum[:]),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return files, nil
}
