package core

import (
	"strings"
	"time"
)

// ID identifies a stored user-content entity. IDs come from a database
// sequence and are never zero once stored.
type ID uint64

// Template is a reusable reply a caseworker saved for later.
// Titles are unique across templates.
type Template struct {
	ID         ID
	Title      string
	Text       string
	Memo       string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// AnswerMemo is a private note attached to one answer record.
type AnswerMemo struct {
	AnswerID   int64
	Text       string
	ModifiedAt time.Time
}

// NormalizeLineEndings converts CRLF and lone CR line endings to LF.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
