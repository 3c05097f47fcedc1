package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Record store failures are reported through this closed set. Callers decide
// whether to retry (ErrNetwork, ErrConflict) or surface the failure.
var (
	ErrNetwork    = errors.New("record store unavailable")
	ErrPermission = errors.New("permission denied")
	ErrConflict   = errors.New("record changed by another writer")
	ErrNotFound   = errors.New("record not found")
	ErrQuota      = errors.New("storage quota exceeded")
	ErrUnknown    = errors.New("unknown storage error")
)

var taxonomy = []error{ErrNetwork, ErrPermission, ErrConflict, ErrNotFound, ErrQuota, ErrUnknown}

// Kind returns the taxonomy sentinel err belongs to, or nil for a nil error.
// Errors outside the taxonomy report ErrUnknown.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range taxonomy {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return classifyKind(err)
}

// Classify wraps err with its taxonomy sentinel so errors.Is matches both the
// sentinel and the original cause. Already classified errors are returned
// unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range taxonomy {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", classifyKind(err), err)
}

// IsRetryable reports whether the failure is transient.
func IsRetryable(err error) bool {
	kind := Kind(err)
	return kind == ErrNetwork || kind == ErrConflict
}

func classifyKind(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrNetwork
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return ErrConflict
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
			return ErrNetwork
		case sqlite3.SQLITE_PERM, sqlite3.SQLITE_READONLY, sqlite3.SQLITE_AUTH:
			return ErrPermission
		case sqlite3.SQLITE_FULL:
			return ErrQuota
		}
		return ErrUnknown
	}

	// Other drivers only expose the message.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "constraint failed"):
		return ErrConflict
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "unable to open database"):
		return ErrNetwork
	case strings.Contains(msg, "readonly database"):
		return ErrPermission
	case strings.Contains(msg, "database or disk is full"):
		return ErrQuota
	}
	return ErrUnknown
}
