package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/poiesic/answerdesk/core"
)

// Schemas mirror the tables produced by the dataset build tool.
const (
	AnswersSchema = `CREATE TABLE IF NOT EXISTS answerembed (
		id INTEGER PRIMARY KEY,
		code TEXT,
		cat1 TEXT,
		cat2 TEXT,
		cat3 TEXT,
		title TEXT,
		maintext TEXT,
		agency1 TEXT,
		agency2 TEXT,
		embedding TEXT
	)`

	AgenciesSchema = `CREATE TABLE IF NOT EXISTS agencies (
		id INTEGER PRIMARY KEY,
		name TEXT,
		website TEXT,
		tel TEXT,
		paid TEXT
	)`

	SnippetsSchema = `CREATE TABLE IF NOT EXISTS introclosing (
		id INTEGER PRIMARY KEY,
		type TEXT,
		cat TEXT,
		text TEXT
	)`
)

// nullable stores empty strings as NULL, which is how the build tool writes
// absent values.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// exec creates the schema at path and runs fn inside a single transaction.
func exec(ctx context.Context, path, schema string, fn func(tx *sql.Tx) error) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("schema failed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// WriteAnswers creates the answerembed table at path and inserts rows.
// Used to build fixtures; the production data is prepared elsewhere.
func WriteAnswers(ctx context.Context, path string, rows []AnswerRow) error {
	return exec(ctx, path, AnswersSchema, func(tx *sql.Tx) error {
		for _, row := range rows {
			r := row.Record
			_, err := tx.ExecContext(ctx,
				`INSERT INTO answerembed (id, code, cat1, cat2, cat3, title, maintext, agency1, agency2, embedding)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID, nullable(r.Code), nullable(r.Cat1), nullable(r.Cat2), nullable(r.Cat3),
				nullable(r.Title), nullable(r.MainText), nullable(r.Agency1), nullable(r.Agency2),
				nullable(row.EmbeddingText),
			)
			if err != nil {
				return fmt.Errorf("insert answer %d: %w", r.ID, err)
			}
		}
		return nil
	})
}

// WriteAgencies creates the agencies table at path and inserts agencies.
func WriteAgencies(ctx context.Context, path string, agencies []core.Agency) error {
	return exec(ctx, path, AgenciesSchema, func(tx *sql.Tx) error {
		for _, a := range agencies {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO agencies (id, name, website, tel, paid) VALUES (?, ?, ?, ?, ?)`,
				a.ID, nullable(a.Name), nullable(a.Website), nullable(a.Tel), nullable(a.Paid),
			)
			if err != nil {
				return fmt.Errorf("insert agency %d: %w", a.ID, err)
			}
		}
		return nil
	})
}

// WriteSnippets creates the introclosing table at path and inserts snippets.
func WriteSnippets(ctx context.Context, path string, snippets []core.Snippet) error {
	return exec(ctx, path, SnippetsSchema, func(tx *sql.Tx) error {
		for _, s := range snippets {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO introclosing (id, type, cat, text) VALUES (?, ?, ?, ?)`,
				s.ID, nullable(string(s.Kind)), nullable(s.Category), nullable(s.Text),
			)
			if err != nil {
				return fmt.Errorf("insert snippet %d: %w", s.ID, err)
			}
		}
		return nil
	})
}
