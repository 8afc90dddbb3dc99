package models

import "time"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

const (
	CheckBrokenLink       = "broken-link"
	CheckMissingAnchor    = "missing-anchor"
	CheckMissingIndex     = "missing-index"
	CheckIndexGap         = "index-gap"
	CheckNamingConvention = "naming-convention"
	CheckOrphanDocument   = "orphan-document"
	CheckDeprecatedMarker = "deprecated-marker"
)

type Issue struct {
	ID       string   `json:"id"`
	ReportID string   `json:"report_id"`
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Detail   string   `json:"detail"`
}

type Report struct {
	ID           string    `json:"id"`
	CorpusID     string    `json:"corpus_id"`
	FilesScanned int       `json:"files_scanned"`
	LinksFound   int       `json:"links_found"`
	Errors       int       `json:"errors"`
	Warnings     int       `json:"warnings"`
	Infos        int       `json:"infos"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
	Issues       []*Issue  `json:"issues"`
}

type IssueFilter struct {
	Code     string
	Severity string
	Limit    int
}

var allowedCodes = map[string]bool{
	CheckBrokenLink:       true,
	CheckMissingAnchor:    true,
	CheckMissingIndex:     true,
	CheckIndexGap:         true,
	CheckNamingConvention: true,
	CheckOrphanDocument:   true,
	CheckDeprecatedMarker: true,
}

var allowedSeverities = map[string]bool{
	string(SeverityError):   true,
	string(SeverityWarning): true,
	string(SeverityInfo):    true,
}

func IsCheckCode(code string) bool {
	return allowedCodes[code]
}

func (f IssueFilter) IsValid() bool {
	if f.Code != "" && !allowedCodes[f.Code] {
		return false
	}
	if f.Severity != "" && !allowedSeverities[f.Severity] {
		return false
	}
	return true
}
