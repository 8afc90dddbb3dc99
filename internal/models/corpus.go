package models

import "time"

type Corpus struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	RootPath  string    `json:"root_path"`
	OwnerID   string    `json:"owner_id"`
	Watch     bool      `json:"watch"`
	CreatedAt time.Time `json:"created_at"`
}

type DocKind string

const (
	DocKindRule  DocKind = "rule"
	DocKindIndex DocKind = "index"
	DocKindGuide DocKind = "guide"
)

type Document struct {
	ID         string    `json:"id"`
	CorpusID   string    `json:"corpus_id"`
	RelPath    string    `json:"rel_path"`
	Title      string    `json:"title"`
	Kind       DocKind   `json:"kind"`
	Checksum   string    `json:"checksum"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

type LinkKind string

const (
	LinkKindRelative LinkKind = "relative"
	LinkKindExternal LinkKind = "external"
	LinkKindAnchor   LinkKind = "anchor"
)

// Link is one outgoing edge of a document. TargetPath is cleaned and
// corpus-root relative; it is empty for external and anchor-only links.
type Link struct {
	CorpusID   string   `json:"corpus_id"`
	SourcePath string   `json:"source_path"`
	RawTarget  string   `json:"raw_target"`
	TargetPath string   `json:"target_path"`
	Fragment   string   `json:"fragment"`
	Kind       LinkKind `json:"kind"`
	Line       int      `json:"line"`
}

// CorpusPolicy is the effective convention set of a corpus, defaults
// overridden by its manifest.
type CorpusPolicy struct {
	RuleSuffix     string
	IndexName      string
	DisabledChecks map[string]bool
}

func DefaultPolicy() CorpusPolicy {
	return CorpusPolicy{
		RuleSuffix:     ".rules.md",
		IndexName:      "README.md",
		DisabledChecks: map[string]bool{},
	}
}

// Snapshot is the in-memory result of one corpus scan, handed from the
// scan pipeline to the lint checks so they never re-read the tree.
type Snapshot struct {
	Corpus    *Corpus
	Policy    CorpusPolicy
	Documents []*Document
	Links     []*Link
	// Anchors maps a document rel path to its heading anchor slugs.
	Anchors map[string][]string
	// Deprecated maps a document rel path to the line of its
	// deprecation banner, when one is present.
	Deprecated map[string]int
}

func (s *Snapshot) DocumentByPath(relPath string) *Document {
	for _, doc := range s.Documents {
		if doc.RelPath == relPath {
			return doc
		}
	}
	return nil
}
