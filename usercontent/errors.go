package usercontent

import "errors"

var (
	// ErrEmptyTitle is returned when a template title is blank.
	ErrEmptyTitle = errors.New("template title must not be empty")

	// ErrEmptyText is returned when a template body is blank.
	ErrEmptyText = errors.New("template text must not be empty")

	// ErrRepositoryRequired is returned when a repository is not provided.
	ErrRepositoryRequired = errors.New("repository required")
)
