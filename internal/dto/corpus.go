package dto

import "time"

type RegisterCorpusRequest struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	RootPath string `json:"root_path"`
	Watch    bool   `json:"watch"`
}

type CorpusResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	RootPath  string    `json:"root_path"`
	Watch     bool      `json:"watch"`
	CreatedAt time.Time `json:"created"`
}

type ReportResponse struct {
	ID           string          `json:"id"`
	CorpusID     string          `json:"corpus_id"`
	FilesScanned int             `json:"files_scanned"`
	LinksFound   int             `json:"links_found"`
	Errors       int             `json:"errors"`
	Warnings     int             `json:"warnings"`
	Infos        int             `json:"infos"`
	DurationMS   int64           `json:"duration_ms"`
	CreatedAt    time.Time       `json:"created"`
	Issues       []IssueResponse `json:"issues"`
}

type IssueResponse struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Path     string `json:"path"`
	Line     int    `json:"line,omitempty"`
	Detail   string `json:"detail"`
}
