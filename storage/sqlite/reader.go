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


package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/poiesic/answerdesk/core"

	_ "modernc.org/sqlite" // cgo-free driver
)

const (
	answersQuery  = `SELECT id, code, cat1, cat2, cat3, title, maintext, agency1, agency2, embedding FROM answerembed`
	agenciesQuery = `SELECT id, name, website, tel, paid FROM agencies`
	snippetsQuery = `SELECT id, type, cat, text FROM introclosing`
)

// AnswerRow is one row of the answer table. The embedding column is left in
// its stored text form; parsing it is the catalog's job.
type AnswerRow struct {
	Record        core.AnswerRecord
	EmbeddingText string
}

// withDB opens the database at path, runs fn, and closes the handle again.
// Every read gets its own connection; nothing is held between calls.
func withDB(ctx context.Context, path string, fn func(db *sql.DB) error) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", path, err)
	}
	return fn(db)
}

// ReadAnswers returns every row of the answerembed table in storage order.
func ReadAnswers(ctx context.Context, path string) ([]AnswerRow, error) {
	var rows []AnswerRow
	err := withDB(ctx, path, func(db *sql.DB) error {
		result, err := db.QueryContext(ctx, answersQuery)
		if err != nil {
			return fmt.Errorf("query answers: %w", err)
		}
		defer result.Close()

		for result.Next() {
			var (
				id                                  sql.NullInt64
				code, cat1, cat2, cat3, title, body sql.NullString
				agency1, agency2, embedding         sql.NullString
			)
			if err := result.Scan(&id, &code, &cat1, &cat2, &cat3, &title, &body, &agency1, &agency2, &embedding); err != nil {
				return fmt.Errorf("scan answer: %w", err)
			}
			rows = append(rows, AnswerRow{
				Record: core.AnswerRecord{
					ID:       id.Int64,
					Code:     code.String,
					Cat1:     cat1.String,
					Cat2:     cat2.String,
					Cat3:     cat3.String,
					Title:    title.String,
					MainText: body.String,
					Agency1:  agency1.String,
					Agency2:  agency2.String,
				},
				EmbeddingText: embedding.String,
			})
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadAgencies returns every row of the agencies table in storage order.
func ReadAgencies(ctx context.Context, path string) ([]core.Agency, error) {
	var agencies []core.Agency
	err := withDB(ctx, path, func(db *sql.DB) error {
		result, err := db.QueryContext(ctx, agenciesQuery)
		if err != nil {
			return fmt.Errorf("query agencies: %w", err)
		}
		defer result.Close()

		for result.Next() {
			var (
				id                       sql.NullInt64
				name, website, tel, paid sql.NullString
			)
			if err := result.Scan(&id, &name, &website, &tel, &paid); err != nil {
				return fmt.Errorf("scan agency: %w", err)
			}
			agencies = append(agencies, core.Agency{
				ID:      id.Int64,
				Name:    name.String,
				Website: website.String,
				Tel:     tel.String,
				Paid:    paid.String,
			})
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return agencies, nil
}

// ReadSnippets returns every row of the introclosing table in storage order.
// Rows of unknown type are returned as-is.
func ReadSnippets(ctx context.Context, path string) ([]core.Snippet, error) {
	var snippets []core.Snippet
	err := withDB(ctx, path, func(db *sql.DB) error {
		result, err := db.QueryContext(ctx, snippetsQuery)
		if err != nil {
			return fmt.Errorf("query snippets: %w", err)
		}
		defer result.Close()

		for result.Next() {
			var (
				id              sql.NullInt64
				kind, cat, text sql.NullString
			)
			if err := result.Scan(&id, &kind, &cat, &text); err != nil {
				return fmt.Errorf("scan snippet: %w", err)
			}
			snippets = append(snippets, core.Snippet{
				ID:       id.Int64,
				Kind:     core.SnippetKind(kind.String),
				Category: cat.String,
				Text:     text.String,
			})
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return snippets, nil
}
