package usercontent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/answerdesk/storage"
	"github.com/poiesic/answerdesk/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew(t *testing.T) {
	_, err := New(nil, nil)
	assert.Equal(t, ErrRepositoryRequired, err)

	templates, memos, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		memos.Close()
		templates.Close()
		backend.Close()
	}()

	s, err := New(templates, memos, WithLogger(nil))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.False(t, backend.IsClosed(), "caller keeps ownership of repositories")
}

func TestOpen_PersistsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	require.NoError(t, err)
	_, err = s.AddTemplate(ctx, "Deposit", "body", "")
	require.NoError(t, err)
	_, err = s.SaveMemo(ctx, 5, "memo")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	tpl, err := s.TemplateByTitle(ctx, "Deposit")
	require.NoError(t, err)
	assert.Equal(t, "body", tpl.Text)
	text, ok, err := s.Memo(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "memo", text)
}

func TestTemplates(t *testing.T) {
	ctx := context.Background()

	t.Run("validation and normalization", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.AddTemplate(ctx, "   ", "text", "")
		assert.Equal(t, ErrEmptyTitle, err)
		_, err = s.AddTemplate(ctx, "Title", " \r\n ", "")
		assert.Equal(t, ErrEmptyText, err)

		tpl, err := s.AddTemplate(ctx, "  Title  ", "line one\r\nline two", "memo\r\nmore")
		require.NoError(t, err)
		assert.Equal(t, "Title", tpl.Title)
		assert.Equal(t, "line one\nline two", tpl.Text)
		assert.Equal(t, "memo\nmore", tpl.Memo)
	})

	t.Run("duplicate title", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.AddTemplate(ctx, "Same", "a", "")
		require.NoError(t, err)

		_, err = s.AddTemplate(ctx, "Same ", "b", "")
		assert.True(t, errors.Is(err, storage.ErrDuplicateKey))
	})

	t.Run("update and delete", func(t *testing.T) {
		s := newTestStore(t)
		tpl, err := s.AddTemplate(ctx, "Old", "a", "")
		require.NoError(t, err)

		updated, err := s.UpdateTemplate(ctx, tpl.ID, "New", "b\r\n", "m")
		require.NoError(t, err)
		assert.Equal(t, "b\n", updated.Text)

		got, err := s.Template(ctx, tpl.ID)
		require.NoError(t, err)
		assert.Equal(t, "New", got.Title)

		require.NoError(t, s.DeleteTemplate(ctx, tpl.ID))
		_, err = s.Template(ctx, tpl.ID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		assert.True(t, errors.Is(s.DeleteTemplate(ctx, tpl.ID), storage.ErrNotFound))
	})

	t.Run("search ignores case", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.AddTemplate(ctx, "Deposit refusal", "We cannot refund.", "")
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
		_, err = s.AddTemplate(ctx, "Noise", "Quiet hours apply.", "ask about the DEPOSIT too")
		require.NoError(t, err)
		_, err = s.AddTemplate(ctx, "Parking", "Permits are issued monthly.", "")
		require.NoError(t, err)

		results, err := s.SearchTemplates(ctx, "deposit")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Noise", results[0].Title, "most recently modified first")
		assert.Equal(t, "Deposit refusal", results[1].Title)

		results, err = s.SearchTemplates(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, results)

		all, err := s.Templates(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestMemos(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Memo(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.SaveMemo(ctx, 1, "call back\r\nTuesday")
	require.NoError(t, err)
	_, err = s.SaveMemo(ctx, 2, "")
	require.NoError(t, err)

	text, ok, err := s.Memo(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "call back\nTuesday", text)

	text, ok, err = s.Memo(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok, "an empty memo still exists")
	assert.Equal(t, "", text)

	all, err := s.Memos(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{1: "call back\nTuesday", 2: ""}, all)

	require.NoError(t, s.DeleteMemo(ctx, 1))
	require.NoError(t, s.DeleteMemo(ctx, 1), "deleting a missing memo is not an error")
	_, ok, err = s.Memo(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	events, cancel := s.Events()
	defer cancel()

	tpl, err := s.AddTemplate(ctx, "T", "x", "")
	require.NoError(t, err)
	assert.Equal(t, Event{Kind: TemplatesChanged, TemplateID: tpl.ID}, <-events)

	_, err = s.SaveMemo(ctx, 9, "m")
	require.NoError(t, err)
	assert.Equal(t, Event{Kind: MemosChanged, AnswerID: 9}, <-events)

	require.NoError(t, s.DeleteMemo(ctx, 9))
	assert.Equal(t, Event{Kind: MemosChanged, AnswerID: 9}, <-events)

	// failures publish nothing
	_, err = s.AddTemplate(ctx, "T", "y", "")
	require.Error(t, err)
	require.NoError(t, s.DeleteMemo(ctx, 9))
	assert.Len(t, events, 0)

	assert.Equal(t, "templates-changed", TemplatesChanged.String())
	assert.Equal(t, "memos-changed", MemosChanged.String())
	assert.Equal(t, "unknown", EventKind(0).String())
}
