package storage

import (
	"context"

	"github.com/poiesic/answerdesk/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction. Repository
	// calls made with the ctx handed to fn run in that transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases the repository's resources.
	Close() error
}

// TemplateRepository provides operations for managing reply templates.
type TemplateRepository interface {
	Repository

	// AddTemplate stores a new template, assigning its ID and timestamps.
	// Returns ErrDuplicateKey if another template has the same title.
	AddTemplate(ctx context.Context, template *core.Template) (*core.Template, error)

	// UpdateTemplate replaces an existing template and refreshes ModifiedAt.
	// Returns ErrNotFound if the template doesn't exist and ErrDuplicateKey
	// if the new title belongs to another template.
	UpdateTemplate(ctx context.Context, template *core.Template) (*core.Template, error)

	// DeleteTemplate removes a template by ID.
	// Returns ErrNotFound if the template doesn't exist.
	DeleteTemplate(ctx context.Context, id core.ID) error

	// GetTemplate retrieves a template by ID.
	// Returns ErrNotFound if the template doesn't exist.
	GetTemplate(ctx context.Context, id core.ID) (*core.Template, error)

	// GetTemplateByTitle retrieves a template by its exact title.
	// Returns ErrNotFound if no template has that title.
	GetTemplateByTitle(ctx context.Context, title string) (*core.Template, error)

	// ListTemplates returns every template, most recently modified first.
	ListTemplates(ctx context.Context) ([]*core.Template, error)
}

// MemoRepository provides operations for managing answer memos.
type MemoRepository interface {
	Repository

	// PutMemo creates or replaces the memo for memo.AnswerID and sets ModifiedAt.
	PutMemo(ctx context.Context, memo *core.AnswerMemo) (*core.AnswerMemo, error)

	// GetMemo retrieves the memo for an answer record.
	// Returns ErrNotFound if the answer has no memo.
	GetMemo(ctx context.Context, answerID int64) (*core.AnswerMemo, error)

	// DeleteMemo removes the memo for an answer record.
	// Returns ErrNotFound if the answer has no memo.
	DeleteMemo(ctx context.Context, answerID int64) error

	// ListMemos returns every memo ordered by answer ID.
	ListMemos(ctx context.Context) ([]*core.AnswerMemo, error)
}
