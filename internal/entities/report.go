package entities

import "time"

type Report struct {
	ID           string    `db:"id"`
	CorpusID     string    `db:"corpus_id"`
	FilesScanned int       `db:"files_scanned"`
	LinksFound   int       `db:"links_found"`
	Errors       int       `db:"errors"`
	Warnings     int       `db:"warnings"`
	Infos        int       `db:"infos"`
	DurationMS   int64     `db:"duration_ms"`
	CreatedAt    time.Time `db:"created_at"`
}

type Issue struct {
	ID       string `db:"id"`
	ReportID string `db:"report_id"`
	Code     string `db:"code"`
	Severity string `db:"severity"`
	Path     string `db:"path"`
	Line     int    `db:"line"`
	Detail   string `db:"detail"`
}
