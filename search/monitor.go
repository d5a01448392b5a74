package search

import "github.com/poiesic/answerdesk/core"

// SkipReason says why a record was left out of ranking.
type SkipReason int

const (
	// SkipNoEmbedding marks a record with no stored vector.
	SkipNoEmbedding SkipReason = iota + 1
	// SkipDimensionMismatch marks a record whose vector length differs from the query's.
	SkipDimensionMismatch
)

func (r SkipReason) String() string {
	switch r {
	case SkipNoEmbedding:
		return "no-embedding"
	case SkipDimensionMismatch:
		return "dimension-mismatch"
	default:
		return "unknown"
	}
}

// RankMonitor provides hooks to observe ranking.
// Implement this interface to track intermediate steps and results.
type RankMonitor interface {
	Start(query string)
	AfterQueryEmbedding(vector []float32)
	Skipped(record *core.AnswerRecord, reason SkipReason)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of RankMonitor
type noopMonitor struct{}

var _ RankMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                              {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)             {}
func (n *noopMonitor) Skipped(_ *core.AnswerRecord, _ SkipReason) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)               {}
