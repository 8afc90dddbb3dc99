package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRows                 = errors.New("no rows")
	ErrUNIQUEConstraintFailed = errors.New("unique constraint failed")
	ErrFailedToAddUser        = errors.New("failed to add user")
	ErrInternal               = errors.New("internal server error")
	ErrMethodNotAllowed       = errors.New("method not allowed")
	ErrForbidden              = errors.New("access denied")
	ErrInvalidParams          = errors.New("invalid params")
	ErrUserNotFound           = errors.New("user not found")
	ErrUserExists             = errors.New("user already exists")
	ErrSessionNotFound        = errors.New("session not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrCorpusNotFound         = errors.New("corpus not found")
	ErrCorpusExists           = errors.New("corpus already exists")
	ErrRootNotFound           = errors.New("corpus root not found")
	ErrReportNotFound         = errors.New("report not found")
	ErrInvalidManifest        = errors.New("invalid corpus manifest")
)

type UniqueConstraintError struct {
	Constraint string
	Err        error
}

func (e *UniqueConstraintError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Constraint)
}

func (e *UniqueConstraintError) Unwrap() error {
	return e.Err
}

// ScanError names the file that made a scan abort.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan failed at %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
