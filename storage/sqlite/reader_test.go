package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/poiesic/answerdesk/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAnswers(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "answersembed.db")

	rows := []AnswerRow{
		{
			Record: core.AnswerRecord{
				ID: 2, Code: "B-1", Cat1: "Housing", Cat2: "Rent", Cat3: "Deposit",
				Title: "Deposit return", MainText: "Deposits are returned", Agency1: "Housing Office",
			},
			EmbeddingText: "[0.5, 0.5]",
		},
		{
			Record: core.AnswerRecord{ID: 1, Code: "A-1", Title: "No categories"},
		},
	}
	require.NoError(t, WriteAnswers(ctx, path, rows))

	got, err := ReadAnswers(ctx, path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[int64]AnswerRow{}
	for _, r := range got {
		byID[r.Record.ID] = r
	}

	assert.Equal(t, rows[0].Record, byID[2].Record)
	assert.Equal(t, "[0.5, 0.5]", byID[2].EmbeddingText)

	// NULL columns come back as empty strings
	assert.Equal(t, "", byID[1].Record.Cat1)
	assert.Equal(t, "", byID[1].Record.Agency1)
	assert.Equal(t, "", byID[1].EmbeddingText)
}

func TestReadAgencies(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "agencies.db")

	agencies := []core.Agency{
		{ID: 1, Name: "Tax Office", Website: "tax.example", Tel: "126", Paid: "(paid)"},
		{ID: 2, Name: "Land Registry"},
	}
	require.NoError(t, WriteAgencies(ctx, path, agencies))

	got, err := ReadAgencies(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, agencies, got)
}

func TestReadSnippets(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "introclosing.db")

	snippets := []core.Snippet{
		{ID: 1, Kind: core.SnippetIntro, Category: "General", Text: "Thank you for your inquiry."},
		{ID: 2, Kind: core.SnippetClosing, Category: "General", Text: "Kind regards."},
		{ID: 3, Kind: "signature", Category: "General", Text: "Desk 4"},
	}
	require.NoError(t, WriteSnippets(ctx, path, snippets))

	got, err := ReadSnippets(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, snippets, got)
}

func TestReadAnswers_MissingTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "empty.db")

	// create an empty database file without the table
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE other (id INTEGER)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = ReadAnswers(ctx, path)
	assert.Error(t, err)
}
