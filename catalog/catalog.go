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


package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/answerdesk/core"
)

const defaultPoolSize = 4

// Catalog is the in-memory record store built by Load.
//
// Every method that returns *core.AnswerRecord hands out the catalog's own
// record. Records are shared by all callers and must be treated as read-only;
// the returned slices are fresh and may be modified.
type Catalog struct {
	records      []*core.AnswerRecord
	byID         map[int64]*core.AnswerRecord
	byCode       map[string]*core.AnswerRecord
	agencies     map[string]core.Agency
	snippets     []core.Snippet
	conjunctions []string
	index        *categoryIndex
	intros       *snippetIndex
	closings     *snippetIndex
	malformed    int
}

// Stats summarises what Load read.
type Stats struct {
	Records            int
	RecordsWithVectors int
	MalformedVectors   int
	Agencies           int
	Snippets           int
	Conjunctions       int
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	logger   *slog.Logger
	poolSize int
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// WithLoadConcurrency sets how many sources are read in parallel.
// Default is 4, one worker per source.
func WithLoadConcurrency(n int) Option {
	return func(o *loadOptions) {
		o.poolSize = n
	}
}

// Load reads the four required sources from dir and builds the catalog.
//
// If any source is missing, Load returns a *MissingSourceError listing all of
// them and a nil Catalog. A read or parse failure of any source also returns a
// nil Catalog. Stored embeddings that fail to parse do not fail the load; the
// affected records simply have no embedding.
func Load(ctx context.Context, dir string, opts ...Option) (*Catalog, error) {
	options := &loadOptions{
		logger:   slog.Default(),
		poolSize: defaultPoolSize,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.poolSize < 1 {
		return nil, ErrPoolSize
	}
	logger := options.logger.With("component", "catalog")

	if missing := missingSources(dir); len(missing) > 0 {
		logger.Error("required data sources missing", "dir", dir, "missing", missing)
		return nil, &MissingSourceError{Missing: missing}
	}

	src, err := readSources(ctx, dir, options.poolSize)
	if err != nil {
		logger.Error("failed to read data sources", "dir", dir, "err", err)
		return nil, err
	}

	c := build(src, logger)
	stats := c.Stats()
	logger.Info("catalog loaded",
		"records", stats.Records,
		"withVectors", stats.RecordsWithVectors,
		"agencies", stats.Agencies,
		"snippets", stats.Snippets,
		"conjunctions", stats.Conjunctions)
	if c.malformed > 0 {
		logger.Warn("records with malformed embeddings treated as unembedded", "count", c.malformed)
	}
	return c, nil
}

// build turns raw sources into a Catalog. It never fails.
func build(src *sources, logger *slog.Logger) *Catalog {
	c := &Catalog{
		records:      make([]*core.AnswerRecord, 0, len(src.answers)),
		byID:         make(map[int64]*core.AnswerRecord, len(src.answers)),
		byCode:       make(map[string]*core.AnswerRecord, len(src.answers)),
		agencies:     make(map[string]core.Agency, len(src.agencies)),
		snippets:     src.snippets,
		conjunctions: src.conjunctions,
	}

	for _, row := range src.answers {
		rec := row.Record
		vector, err := ParseEmbedding(row.EmbeddingText)
		if err != nil {
			logger.Debug("ignoring malformed embedding", "id", rec.ID, "code", rec.Code, "err", err)
			c.malformed++
			vector = nil
		}
		rec.Embedding = vector

		c.records = append(c.records, &rec)
		c.byID[rec.ID] = &rec
		if rec.Code != "" {
			c.byCode[rec.Code] = &rec
		}
	}
	c.index = newCategoryIndex(c.records)

	for _, agency := range src.agencies {
		if agency.Name == "" {
			continue
		}
		c.agencies[agency.Name] = agency
	}

	c.intros = newSnippetIndex(src.snippets, core.SnippetIntro)
	c.closings = newSnippetIndex(src.snippets, core.SnippetClosing)
	return c
}

// Records returns every record in storage order. The slice is a copy; the
// records are shared and read-only.
func (c *Catalog) Records() []*core.AnswerRecord {
	return cloneOrEmpty(c.records)
}

// ByID returns the record with the given id. The record is shared and
// read-only.
func (c *Catalog) ByID(id int64) (*core.AnswerRecord, bool) {
	rec, ok := c.byID[id]
	return rec, ok
}

// ByCode returns the record with the given code. The record is shared and
// read-only.
func (c *Catalog) ByCode(code string) (*core.AnswerRecord, bool) {
	rec, ok := c.byCode[code]
	return rec, ok
}

// TopCategories returns the distinct cat1 values in first-seen order,
// including core.UnknownCategory if any record lacks a cat1.
func (c *Catalog) TopCategories() []string {
	return c.index.topCategories()
}

// SubCategories returns the cat2 values under cat1.
func (c *Catalog) SubCategories(cat1 string) []string {
	return c.index.subCategories(cat1)
}

// LeafCategories returns the cat3 values under cat1/cat2.
func (c *Catalog) LeafCategories(cat1, cat2 string) []string {
	return c.index.leafCategories(cat1, cat2)
}

// RecordsAt returns the records filed under a full category path.
// An unknown path yields an empty slice.
func (c *Catalog) RecordsAt(cat1, cat2, cat3 string) []*core.AnswerRecord {
	return c.index.recordsAt(cat1, cat2, cat3)
}

// Search returns records whose title or body contains term.
//
// The test is a literal, case-sensitive substring match on each field; no
// case folding or normalisation is applied. Results follow storage order.
// An empty term matches nothing.
func (c *Catalog) Search(term string) []*core.AnswerRecord {
	results := []*core.AnswerRecord{}
	if term == "" {
		return results
	}
	for _, rec := range c.records {
		if strings.Contains(rec.Title, term) || strings.Contains(rec.MainText, term) {
			results = append(results, rec)
		}
	}
	return results
}

// Agency looks up an agency by name. A missing agency is not an error.
func (c *Catalog) Agency(name string) (core.Agency, bool) {
	agency, ok := c.agencies[name]
	return agency, ok
}

// Conjunctions returns the conjunction list in display order.
func (c *Catalog) Conjunctions() []string {
	return cloneOrEmpty(c.conjunctions)
}

// Snippets returns every intro/closing row, including rows of unknown type.
func (c *Catalog) Snippets() []core.Snippet {
	return cloneOrEmpty(c.snippets)
}

// IntroCategories returns the categories that have intro snippets.
func (c *Catalog) IntroCategories() []string {
	return cloneOrEmpty(c.intros.categories)
}

// ClosingCategories returns the categories that have closing snippets.
func (c *Catalog) ClosingCategories() []string {
	return cloneOrEmpty(c.closings.categories)
}

// Intros returns the intro snippets for a category.
func (c *Catalog) Intros(cat string) []core.Snippet {
	return cloneOrEmpty(c.intros.byCategory[cat])
}

// Closings returns the closing snippets for a category.
func (c *Catalog) Closings(cat string) []core.Snippet {
	return cloneOrEmpty(c.closings.byCategory[cat])
}

// Stats reports counts of the loaded entities.
func (c *Catalog) Stats() Stats {
	withVectors := 0
	for _, rec := range c.records {
		if rec.HasEmbedding() {
			withVectors++
		}
	}
	return Stats{
		Records:            len(c.records),
		RecordsWithVectors: withVectors,
		MalformedVectors:   c.malformed,
		Agencies:           len(c.agencies),
		Snippets:           len(c.snippets),
		Conjunctions:       len(c.conjunctions),
	}
}

// snippetIndex groups snippets of one kind by category.
type snippetIndex struct {
	categories []string
	byCategory map[string][]core.Snippet
}

func newSnippetIndex(snippets []core.Snippet, kind core.SnippetKind) *snippetIndex {
	idx := &snippetIndex{byCategory: make(map[string][]core.Snippet)}
	for _, s := range snippets {
		if s.Kind != kind {
			continue
		}
		if _, ok := idx.byCategory[s.Category]; !ok {
			idx.categories = append(idx.categories, s.Category)
		}
		idx.byCategory[s.Category] = append(idx.byCategory[s.Category], s)
	}
	return idx
}
