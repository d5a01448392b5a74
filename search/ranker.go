package search

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/poiesic/answerdesk/core"
)

// DefaultTopK is the number of results returned when no limit is given.
const DefaultTopK = 20

// Embedder produces query vectors. *embedding.Engine implements it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, bool)
}

// Ranker scores answer records against a query by cosine similarity.
type Ranker struct {
	embedder Embedder
	logger   *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRanker creates a new ranker.
func NewRanker(embedder Embedder, opts ...Option) (*Ranker, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Ranker{
		embedder: embedder,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "ranker")
	return r, nil
}

// Rank returns up to topK records most similar to query.
// topK <= 0 means DefaultTopK.
func (r *Ranker) Rank(ctx context.Context, query string, corpus []*core.AnswerRecord, topK int) ([]*core.SearchResult, error) {
	return r.RankWithMonitor(ctx, query, corpus, topK, nil)
}

// RankWithMonitor is Rank with callbacks at each stage.
func (r *Ranker) RankWithMonitor(ctx context.Context, query string, corpus []*core.AnswerRecord, topK int, monitor RankMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	vector, ok := r.embedder.Embed(ctx, query)
	if !ok || len(vector) == 0 {
		r.logger.Debug("query produced no embedding", "query", query)
		return nil, ErrQueryNotEmbedded
	}
	monitor.AfterQueryEmbedding(vector)

	results := rankVector(vector, corpus, topK, monitor)
	monitor.Finish(results)
	return results, nil
}

// RankVector ranks corpus against an already embedded query.
func RankVector(query []float32, corpus []*core.AnswerRecord, topK int) []*core.SearchResult {
	return rankVector(query, corpus, topK, &noopMonitor{})
}

func rankVector(query []float32, corpus []*core.AnswerRecord, topK int, monitor RankMonitor) []*core.SearchResult {
	if topK <= 0 {
		topK = DefaultTopK
	}
	results := make([]*core.SearchResult, 0, min(topK, len(corpus)))
	if len(query) == 0 {
		return results
	}

	queryNorm := norm(query)
	scored := make([]*core.SearchResult, 0, len(corpus))
	for _, rec := range corpus {
		if rec == nil {
			continue
		}
		if !rec.HasEmbedding() {
			monitor.Skipped(rec, SkipNoEmbedding)
			continue
		}
		if len(rec.Embedding) != len(query) {
			monitor.Skipped(rec, SkipDimensionMismatch)
			continue
		}
		scored = append(scored, &core.SearchResult{
			Record: rec,
			Score:  cosine(query, rec.Embedding, queryNorm),
		})
	}

	// Stable so ties keep corpus order.
	slices.SortStableFunc(scored, func(a, b *core.SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return append(results, scored...)
}

// CosineSimilarity returns dot(a, b) / (|a| |b|), or 0 when either vector
// has zero length or the lengths differ.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return cosine(a, b, norm(a))
}

func cosine(a, b []float32, normA float64) float32 {
	normB := norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot / (normA * normB))
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
