package catalog

import (
	"context"
	"encoding/json"
	"os"
	"slices"

	"github.com/poiesic/answerdesk/core"
	"github.com/poiesic/answerdesk/storage/sqlite"
)

// Fixture describes the contents of a data directory for tests.
type Fixture struct {
	Answers      []sqlite.AnswerRow
	Agencies     []core.Agency
	Snippets     []core.Snippet
	Conjunctions []string

	// Skip names sources that must not be written.
	Skip []string
}

// WriteFixture writes the fixture's sources into dir.
func WriteFixture(ctx context.Context, dir string, f Fixture) error {
	write := func(name string, fn func(path string) error) error {
		if slices.Contains(f.Skip, name) {
			return nil
		}
		return fn(SourcePath(dir, name))
	}

	if err := write(SourceAnswers, func(path string) error {
		return sqlite.WriteAnswers(ctx, path, f.Answers)
	}); err != nil {
		return err
	}
	if err := write(SourceAgencies, func(path string) error {
		return sqlite.WriteAgencies(ctx, path, f.Agencies)
	}); err != nil {
		return err
	}
	if err := write(SourceIntroClosing, func(path string) error {
		return sqlite.WriteSnippets(ctx, path, f.Snippets)
	}); err != nil {
		return err
	}
	return write(SourceConjunctions, func(path string) error {
		conjunctions := f.Conjunctions
		if conjunctions == nil {
			conjunctions = []string{}
		}
		data, err := json.Marshal(conjunctions)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	})
}

// AnswerRowWithVector builds a fixture row whose embedding column holds vector.
func AnswerRowWithVector(rec core.AnswerRecord, vector []float32) sqlite.AnswerRow {
	text := ""
	if vector != nil {
		text = FormatEmbedding(vector)
	}
	return sqlite.AnswerRow{Record: rec, EmbeddingText: text}
}
