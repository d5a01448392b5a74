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


package answerdesk

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/poiesic/answerdesk/catalog"
	"github.com/poiesic/answerdesk/core"
	"github.com/poiesic/answerdesk/embedding"
	"github.com/poiesic/answerdesk/search"
)

// Mode identifies how a Result was produced.
type Mode int

const (
	ModeBrowse Mode = iota + 1
	ModeKeyword
	ModeSemantic
)

func (m Mode) String() string {
	switch m {
	case ModeBrowse:
		return "browse"
	case ModeKeyword:
		return "keyword"
	case ModeSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Status tells a caller whether a query could run at all.
type Status int

const (
	// StatusOK means the query ran. Hits may still be empty.
	StatusOK Status = iota
	// StatusUnavailable means semantic search cannot run in this session.
	StatusUnavailable
)

func (s Status) String() string {
	if s == StatusUnavailable {
		return "unavailable"
	}
	return "ok"
}

// Result is the outcome of one query.
type Result struct {
	Mode   Mode
	Status Status
	Query  string
	Hits   []*core.SearchResult
}

// Unavailable reports whether the query mode could not be served, as opposed
// to running and finding nothing.
func (r *Result) Unavailable() bool {
	return r.Status == StatusUnavailable
}

// Records returns the hit records in result order.
func (r *Result) Records() []*core.AnswerRecord {
	records := make([]*core.AnswerRecord, len(r.Hits))
	for i, hit := range r.Hits {
		records[i] = hit.Record
	}
	return records
}

// Retriever is the single query surface over a catalog and an embedding
// engine. It holds no per-query state.
type Retriever struct {
	catalog *catalog.Catalog
	engine  *embedding.Engine
	ranker  *search.Ranker
	topK    int
	logger  *slog.Logger

	checkDims sync.Once
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever) error

// WithRetrieverLogger sets a custom logger.
// Default is slog.Default().
func WithRetrieverLogger(logger *slog.Logger) RetrieverOption {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithDefaultTopK sets the semantic result limit used when a call passes
// topK <= 0. Default is search.DefaultTopK.
func WithDefaultTopK(n int) RetrieverOption {
	return func(r *Retriever) error {
		if n > 0 {
			r.topK = n
		}
		return nil
	}
}

// NewRetriever creates a retriever over cat and engine.
func NewRetriever(cat *catalog.Catalog, engine *embedding.Engine, opts ...RetrieverOption) (*Retriever, error) {
	if cat == nil {
		return nil, ErrCatalogRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}

	r := &Retriever{
		catalog: cat,
		engine:  engine,
		topK:    search.DefaultTopK,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	ranker, err := search.NewRanker(engine, search.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	r.ranker = ranker
	r.logger = r.logger.With("component", "retriever")
	return r, nil
}

// TopCategories lists the first category level.
func (r *Retriever) TopCategories() []string {
	return r.catalog.TopCategories()
}

// SubCategories lists the second level under cat1.
func (r *Retriever) SubCategories(cat1 string) []string {
	return r.catalog.SubCategories(cat1)
}

// LeafCategories lists the third level under cat1/cat2.
func (r *Retriever) LeafCategories(cat1, cat2 string) []string {
	return r.catalog.LeafCategories(cat1, cat2)
}

// Browse returns the records filed under a full category path.
func (r *Retriever) Browse(cat1, cat2, cat3 string) *Result {
	return newResult(ModeBrowse, strings.Join([]string{cat1, cat2, cat3}, " / "),
		r.catalog.RecordsAt(cat1, cat2, cat3))
}

// Keyword returns records whose title or body contains term literally.
func (r *Retriever) Keyword(term string) *Result {
	return newResult(ModeKeyword, term, r.catalog.Search(term))
}

// Semantic ranks records by similarity to query, loading the model first if
// needed. topK <= 0 uses the retriever default.
//
// If the model cannot be loaded the Result is Unavailable. A failed
// inference is logged and yields an OK Result with no hits.
func (r *Retriever) Semantic(ctx context.Context, query string, topK int) *Result {
	res := &Result{Mode: ModeSemantic, Query: query, Hits: []*core.SearchResult{}}
	if err := r.LoadModel(ctx); err != nil {
		r.logger.Warn("semantic search unavailable", "err", err)
		res.Status = StatusUnavailable
		return res
	}
	if query == "" {
		return res
	}
	if topK <= 0 {
		topK = r.topK
	}

	hits, err := r.ranker.Rank(ctx, query, r.catalog.Records(), topK)
	if errors.Is(err, search.ErrQueryNotEmbedded) {
		r.logger.Info("query produced no embedding", "query", query)
		return res
	}
	if err != nil {
		r.logger.Error("semantic ranking failed", "query", query, "err", err)
		return res
	}
	res.Hits = hits
	return res
}

// LoadModel loads the embedding model. It is a no-op when already loaded.
func (r *Retriever) LoadModel(ctx context.Context) error {
	if r.engine.State() == embedding.StateLoaded {
		return nil
	}
	if err := r.engine.Load(ctx); err != nil {
		return err
	}
	r.checkDims.Do(r.checkStoredDimensions)
	return nil
}

// UnloadModel releases the embedding model.
func (r *Retriever) UnloadModel() error {
	return r.engine.Unload()
}

// ModelState reports the embedding engine's lifecycle state.
func (r *Retriever) ModelState() embedding.State {
	return r.engine.State()
}

// ModelInfo reports embedding engine diagnostics.
func (r *Retriever) ModelInfo() embedding.Info {
	return r.engine.Info()
}

// checkStoredDimensions logs stored vectors the ranker will skip because
// their length differs from the model's hidden size.
func (r *Retriever) checkStoredDimensions() {
	dim := r.engine.Config().HiddenSize
	mismatched := 0
	for _, rec := range r.catalog.Records() {
		if err := core.ValidateEmbedding(rec, dim); err != nil {
			r.logger.Debug("stored embedding rejected", "err", err)
			mismatched++
		}
	}
	if mismatched > 0 {
		r.logger.Warn("stored embeddings do not match model dimension",
			"count", mismatched, "hiddenSize", dim)
	}
}

func newResult(mode Mode, query string, records []*core.AnswerRecord) *Result {
	hits := make([]*core.SearchResult, len(records))
	for i, rec := range records {
		hits[i] = &core.SearchResult{Record: rec}
	}
	return &Result{Mode: mode, Status: StatusOK, Query: query, Hits: hits}
}
