package corpusservice

import (
	"docregistry/internal/models"
	"net/url"
	"path"
	"strings"
)

// resolveLink classifies a raw markdown destination and, for relative
// links, resolves the target against the source document's directory.
// Empty destinations are dropped.
func resolveLink(corpusID string, sourceRel string, raw string, line int) *models.Link {
	if raw == "" {
		return nil
	}

	link := &models.Link{
		CorpusID:   corpusID,
		SourcePath: sourceRel,
		RawTarget:  raw,
		Line:       line,
	}

	if strings.HasPrefix(raw, "#") {
		link.Kind = models.LinkKindAnchor
		link.Fragment = strings.TrimPrefix(raw, "#")
		return link
	}

	if isExternal(raw) {
		link.Kind = models.LinkKindExternal
		return link
	}

	target := raw
	if idx := strings.Index(target, "#"); idx >= 0 {
		link.Fragment = target[idx+1:]
		target = target[:idx]
	}

	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}

	link.Kind = models.LinkKindRelative
	link.TargetPath = path.Clean(path.Join(path.Dir(sourceRel), target))

	return link
}

func isExternal(raw string) bool {
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "mailto:") {
		return true
	}

	return strings.Contains(raw, "://")
}
