package lintservice

import (
	"docregistry/internal/models"
	"docregistry/internal/validator"
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"
)

type check struct {
	code string
	run  func(snap *models.Snapshot) []*models.Issue
}

// Check order is fixed so reports stay deterministic for one snapshot.
var checks = []check{
	{models.CheckBrokenLink, checkBrokenLinks},
	{models.CheckMissingAnchor, checkMissingAnchors},
	{models.CheckMissingIndex, checkMissingIndexes},
	{models.CheckIndexGap, checkIndexGaps},
	{models.CheckNamingConvention, checkNaming},
	{models.CheckOrphanDocument, checkOrphans},
	{models.CheckDeprecatedMarker, checkDeprecated},
}

func evaluate(snap *models.Snapshot) []*models.Issue {
	issues := make([]*models.Issue, 0)

	for _, c := range checks {
		if snap.Policy.DisabledChecks[c.code] {
			continue
		}
		issues = append(issues, c.run(snap)...)
	}

	return issues
}

// checkBrokenLinks flags relative links whose markdown target was not
// scanned. Only .md targets are checked: assets are out of scope, and a
// link to a directory counts as resolved when scanned documents live
// under it.
func checkBrokenLinks(snap *models.Snapshot) []*models.Issue {
	docSet := docSetOf(snap)

	issues := make([]*models.Issue, 0)

	for _, link := range snap.Links {
		if link.Kind != models.LinkKindRelative {
			continue
		}

		if docSet[link.TargetPath] != nil {
			continue
		}

		if !strings.HasSuffix(strings.ToLower(link.TargetPath), ".md") {
			if isDirTarget(snap, link.TargetPath) {
				continue
			}
			if !looksLikeDoc(link.TargetPath) {
				continue
			}
		}

		issues = append(issues, &models.Issue{
			Code:     models.CheckBrokenLink,
			Severity: models.SeverityError,
			Path:     link.SourcePath,
			Line:     link.Line,
			Detail:   fmt.Sprintf("link target %q does not exist", link.RawTarget),
		})
	}

	return issues
}

func checkMissingAnchors(snap *models.Snapshot) []*models.Issue {
	docSet := docSetOf(snap)

	issues := make([]*models.Issue, 0)

	for _, link := range snap.Links {
		if link.Fragment == "" {
			continue
		}

		var target string

		switch link.Kind {
		case models.LinkKindAnchor:
			target = link.SourcePath
		case models.LinkKindRelative:
			// A missing target is already a broken-link issue.
			if docSet[link.TargetPath] == nil {
				continue
			}
			target = link.TargetPath
		default:
			continue
		}

		if slices.Contains(snap.Anchors[target], strings.ToLower(link.Fragment)) {
			continue
		}

		issues = append(issues, &models.Issue{
			Code:     models.CheckMissingAnchor,
			Severity: models.SeverityError,
			Path:     link.SourcePath,
			Line:     link.Line,
			Detail:   fmt.Sprintf("no heading %q in %s", "#"+link.Fragment, target),
		})
	}

	return issues
}

func checkMissingIndexes(snap *models.Snapshot) []*models.Issue {
	issues := make([]*models.Issue, 0)

	for _, dir := range topicDirs(snap) {
		if snap.DocumentByPath(indexPath(dir, snap.Policy)) != nil {
			continue
		}

		issues = append(issues, &models.Issue{
			Code:     models.CheckMissingIndex,
			Severity: models.SeverityError,
			Path:     dir,
			Detail:   fmt.Sprintf("topic directory has rule files but no %s", snap.Policy.IndexName),
		})
	}

	return issues
}

func checkIndexGaps(snap *models.Snapshot) []*models.Issue {
	issues := make([]*models.Issue, 0)

	for _, dir := range topicDirs(snap) {
		idxPath := indexPath(dir, snap.Policy)
		if snap.DocumentByPath(idxPath) == nil {
			continue
		}

		linked := make(map[string]bool)
		for _, link := range snap.Links {
			if link.SourcePath == idxPath && link.Kind == models.LinkKindRelative {
				linked[link.TargetPath] = true
			}
		}

		for _, doc := range snap.Documents {
			if doc.Kind != models.DocKindRule || path.Dir(doc.RelPath) != dir {
				continue
			}
			if linked[doc.RelPath] {
				continue
			}

			issues = append(issues, &models.Issue{
				Code:     models.CheckIndexGap,
				Severity: models.SeverityWarning,
				Path:     doc.RelPath,
				Detail:   fmt.Sprintf("rule file is not listed in %s", idxPath),
			})
		}
	}

	return issues
}

func checkNaming(snap *models.Snapshot) []*models.Issue {
	issues := make([]*models.Issue, 0)

	for _, doc := range snap.Documents {
		if doc.Kind != models.DocKindRule {
			continue
		}

		stem := strings.TrimSuffix(path.Base(doc.RelPath), snap.Policy.RuleSuffix)
		if validator.IsKebabCase(stem) {
			continue
		}

		issues = append(issues, &models.Issue{
			Code:     models.CheckNamingConvention,
			Severity: models.SeverityWarning,
			Path:     doc.RelPath,
			Detail:   fmt.Sprintf("rule file stem %q is not kebab-case", stem),
		})
	}

	return issues
}

func checkOrphans(snap *models.Snapshot) []*models.Issue {
	referenced := make(map[string]bool)
	for _, link := range snap.Links {
		if link.Kind == models.LinkKindRelative {
			referenced[link.TargetPath] = true
		}
	}

	issues := make([]*models.Issue, 0)

	for _, doc := range snap.Documents {
		if doc.Kind == models.DocKindIndex || referenced[doc.RelPath] {
			continue
		}

		issues = append(issues, &models.Issue{
			Code:     models.CheckOrphanDocument,
			Severity: models.SeverityInfo,
			Path:     doc.RelPath,
			Detail:   "document is not referenced by any link",
		})
	}

	return issues
}

func checkDeprecated(snap *models.Snapshot) []*models.Issue {
	paths := make([]string, 0, len(snap.Deprecated))
	for relPath := range snap.Deprecated {
		paths = append(paths, relPath)
	}
	sort.Strings(paths)

	issues := make([]*models.Issue, 0, len(paths))

	for _, relPath := range paths {
		issues = append(issues, &models.Issue{
			Code:     models.CheckDeprecatedMarker,
			Severity: models.SeverityWarning,
			Path:     relPath,
			Line:     snap.Deprecated[relPath],
			Detail:   "deprecation banner found; forward-only policy expects replacement",
		})
	}

	return issues
}

func docSetOf(snap *models.Snapshot) map[string]*models.Document {
	docSet := make(map[string]*models.Document, len(snap.Documents))
	for _, doc := range snap.Documents {
		docSet[doc.RelPath] = doc
	}
	return docSet
}

// topicDirs lists every directory directly holding at least one rule
// file, sorted.
func topicDirs(snap *models.Snapshot) []string {
	set := make(map[string]bool)
	for _, doc := range snap.Documents {
		if doc.Kind == models.DocKindRule {
			set[path.Dir(doc.RelPath)] = true
		}
	}

	dirs := make([]string, 0, len(set))
	for dir := range set {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	return dirs
}

func indexPath(dir string, policy models.CorpusPolicy) string {
	if dir == "." {
		return policy.IndexName
	}
	return path.Join(dir, policy.IndexName)
}

func isDirTarget(snap *models.Snapshot, target string) bool {
	if target == "." {
		return true
	}

	prefix := target + "/"
	for _, doc := range snap.Documents {
		if strings.HasPrefix(doc.RelPath, prefix) {
			return true
		}
	}

	return false
}

// looksLikeDoc guesses whether an extensionless target was meant to be
// a document rather than an asset.
func looksLikeDoc(target string) bool {
	return path.Ext(target) == ""
}
