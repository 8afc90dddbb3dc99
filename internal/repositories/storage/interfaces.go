package storage

import (
	"context"
	"time"
)

// File is one markdown file pulled from a corpus tree.
type File struct {
	RelPath    string
	Data       []byte
	Checksum   string
	SizeBytes  int64
	ModifiedAt time.Time
}

type TreeReader interface {
	// MarkdownFiles walks root and returns every .md file, sorted by
	// rel path. ignored filters by corpus-root-relative path.
	MarkdownFiles(ctx context.Context, root string, ignored func(rel string) bool) ([]*File, error)
	// RootExists reports whether root is an existing directory.
	RootExists(root string) bool
}
