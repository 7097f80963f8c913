package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func validID(id string) bool {
	return uuid.Validate(id) == nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// trimmedOrNil returns nil for nil or blank input and the trimmed value otherwise.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// normalizePaging converts a zero based page and size into sane bounds.
func normalizePaging(page, size, def, limit int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = def
	}
	if size > limit {
		size = limit
	}
	return page, size
}
