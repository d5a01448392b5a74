// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package usercontent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/answerdesk/core"
	"github.com/poiesic/answerdesk/notify"
	"github.com/poiesic/answerdesk/storage"
	"github.com/poiesic/answerdesk/storage/badger"
)

// EventKind says what changed.
type EventKind int

const (
	// TemplatesChanged follows any template add, update or delete.
	TemplatesChanged EventKind = iota + 1
	// MemosChanged follows any memo save or delete.
	MemosChanged
)

func (k EventKind) String() string {
	switch k {
	case TemplatesChanged:
		return "templates-changed"
	case MemosChanged:
		return "memos-changed"
	default:
		return "unknown"
	}
}

// Event describes one change.
type Event struct {
	Kind       EventKind
	TemplateID core.ID
	AnswerID   int64
}

// Store is the user-content service.
type Store struct {
	templates storage.TemplateRepository
	memos     storage.MemoRepository
	backend   *badger.Backend
	events    *notify.Broadcaster[Event]
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a store over existing repositories. The caller keeps ownership
// of the repositories.
func New(templates storage.TemplateRepository, memos storage.MemoRepository, opts ...Option) (*Store, error) {
	if templates == nil || memos == nil {
		return nil, ErrRepositoryRequired
	}
	s, err := newStore(opts)
	if err != nil {
		return nil, err
	}
	s.templates = templates
	s.memos = memos
	s.logger = s.logger.With("component", "usercontent")
	return s, nil
}

// Open opens a badger-backed store in dir. Close releases it.
func Open(dir string, opts ...Option) (*Store, error) {
	return open(dir, false, opts)
}

// OpenInMemory opens a store that keeps everything in memory.
func OpenInMemory(opts ...Option) (*Store, error) {
	return open("", true, opts)
}

func newStore(opts []Option) (*Store, error) {
	s := &Store{
		events: notify.New[Event](notify.DefaultBuffer),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func open(dir string, inMemory bool, opts []Option) (*Store, error) {
	s, err := newStore(opts)
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(dir, inMemory, s.logger)
	if err != nil {
		return nil, fmt.Errorf("open user content store: %w", err)
	}
	templates, err := badger.NewTemplateRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	memos, err := badger.NewMemoRepository(backend)
	if err != nil {
		templates.Close()
		backend.Close()
		return nil, err
	}

	s.templates = templates
	s.memos = memos
	s.backend = backend
	s.logger = s.logger.With("component", "usercontent")
	return s, nil
}

// Events returns a subscription to change events.
func (s *Store) Events() (<-chan Event, func()) {
	return s.events.Subscribe()
}

// Close ends event subscriptions and, for stores created by Open, closes the
// database.
func (s *Store) Close() error {
	s.events.Close()
	if s.backend == nil {
		return nil
	}
	return errors.Join(s.memos.Close(), s.templates.Close(), s.backend.Close())
}

// AddTemplate saves a new template. Titles are trimmed and must be unique.
func (s *Store) AddTemplate(ctx context.Context, title, text, memo string) (*core.Template, error) {
	tpl, err := newTemplate(0, title, text, memo)
	if err != nil {
		return nil, err
	}
	tpl, err = s.templates.AddTemplate(ctx, tpl)
	if err != nil {
		s.logger.Warn("failed to add template", "title", title, "err", err)
		return nil, err
	}
	s.logger.Debug("template added", "id", tpl.ID, "title", tpl.Title)
	s.events.Publish(Event{Kind: TemplatesChanged, TemplateID: tpl.ID})
	return tpl, nil
}

// UpdateTemplate replaces the title, text and memo of an existing template.
func (s *Store) UpdateTemplate(ctx context.Context, id core.ID, title, text, memo string) (*core.Template, error) {
	tpl, err := newTemplate(id, title, text, memo)
	if err != nil {
		return nil, err
	}
	tpl, err = s.templates.UpdateTemplate(ctx, tpl)
	if err != nil {
		s.logger.Warn("failed to update template", "id", id, "err", err)
		return nil, err
	}
	s.events.Publish(Event{Kind: TemplatesChanged, TemplateID: tpl.ID})
	return tpl, nil
}

// DeleteTemplate removes a template.
func (s *Store) DeleteTemplate(ctx context.Context, id core.ID) error {
	if err := s.templates.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.events.Publish(Event{Kind: TemplatesChanged, TemplateID: id})
	return nil
}

// Template returns a template by ID.
func (s *Store) Template(ctx context.Context, id core.ID) (*core.Template, error) {
	return s.templates.GetTemplate(ctx, id)
}

// TemplateByTitle returns the template with the given title, trimmed.
func (s *Store) TemplateByTitle(ctx context.Context, title string) (*core.Template, error) {
	return s.templates.GetTemplateByTitle(ctx, strings.TrimSpace(title))
}

// Templates returns every template, most recently modified first.
func (s *Store) Templates(ctx context.Context) ([]*core.Template, error) {
	return s.templates.ListTemplates(ctx)
}

// SearchTemplates returns templates whose title, text or memo contains
// keyword, ignoring case. An empty keyword matches nothing. Results are most
// recently modified first.
func (s *Store) SearchTemplates(ctx context.Context, keyword string) ([]*core.Template, error) {
	results := []*core.Template{}
	if keyword == "" {
		return results, nil
	}
	all, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(keyword)
	for _, tpl := range all {
		if containsFold(tpl.Title, needle) || containsFold(tpl.Text, needle) || containsFold(tpl.Memo, needle) {
			results = append(results, tpl)
		}
	}
	return results, nil
}

// SaveMemo creates or replaces the memo on an answer record.
func (s *Store) SaveMemo(ctx context.Context, answerID int64, text string) (*core.AnswerMemo, error) {
	memo, err := s.memos.PutMemo(ctx, &core.AnswerMemo{
		AnswerID: answerID,
		Text:     core.NormalizeLineEndings(text),
	})
	if err != nil {
		s.logger.Warn("failed to save memo", "answerID", answerID, "err", err)
		return nil, err
	}
	s.events.Publish(Event{Kind: MemosChanged, AnswerID: answerID})
	return memo, nil
}

// Memo returns the memo text for an answer record and whether one exists.
func (s *Store) Memo(ctx context.Context, answerID int64) (string, bool, error) {
	memo, err := s.memos.GetMemo(ctx, answerID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return memo.Text, true, nil
}

// DeleteMemo removes the memo on an answer record. Deleting a missing memo
// is not an error.
func (s *Store) DeleteMemo(ctx context.Context, answerID int64) error {
	err := s.memos.DeleteMemo(ctx, answerID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.events.Publish(Event{Kind: MemosChanged, AnswerID: answerID})
	return nil
}

// Memos returns every memo keyed by answer ID.
func (s *Store) Memos(ctx context.Context) (map[int64]string, error) {
	memos, err := s.memos.ListMemos(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[int64]string, len(memos))
	for _, m := range memos {
		result[m.AnswerID] = m.Text
	}
	return result, nil
}

func newTemplate(id core.ID, title, text, memo string) (*core.Template, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	text = core.NormalizeLineEndings(text)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	return &core.Template{
		ID:    id,
		Title: title,
		Text:  text,
		Memo:  core.NormalizeLineEndings(memo),
	}, nil
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
