package catalog

import (
	"slices"

	"github.com/poiesic/answerdesk/core"
)

// categoryIndex groups records by their (cat1, cat2, cat3) path.
//
// The record buckets live in a single map keyed by the full path tuple.
// Separate slices keep each level's keys in first-seen order so listings are
// stable and follow the source table.
type categoryIndex struct {
	top     []string
	sub     map[string][]string
	leaf    map[[2]string][]string
	records map[[3]string][]*core.AnswerRecord
}

func newCategoryIndex(records []*core.AnswerRecord) *categoryIndex {
	idx := &categoryIndex{
		sub:     make(map[string][]string),
		leaf:    make(map[[2]string][]string),
		records: make(map[[3]string][]*core.AnswerRecord),
	}
	for _, rec := range records {
		idx.add(rec)
	}
	return idx
}

func (idx *categoryIndex) add(rec *core.AnswerRecord) {
	path := rec.Path()
	c1, c2, c3 := path[0], path[1], path[2]

	if _, ok := idx.sub[c1]; !ok {
		idx.top = append(idx.top, c1)
		idx.sub[c1] = nil
	}
	pair := [2]string{c1, c2}
	if _, ok := idx.leaf[pair]; !ok {
		idx.sub[c1] = append(idx.sub[c1], c2)
		idx.leaf[pair] = nil
	}
	if _, ok := idx.records[path]; !ok {
		idx.leaf[pair] = append(idx.leaf[pair], c3)
	}
	idx.records[path] = append(idx.records[path], rec)
}

func (idx *categoryIndex) topCategories() []string {
	return cloneOrEmpty(idx.top)
}

func (idx *categoryIndex) subCategories(cat1 string) []string {
	return cloneOrEmpty(idx.sub[cat1])
}

func (idx *categoryIndex) leafCategories(cat1, cat2 string) []string {
	return cloneOrEmpty(idx.leaf[[2]string{cat1, cat2}])
}

func (idx *categoryIndex) recordsAt(cat1, cat2, cat3 string) []*core.AnswerRecord {
	return cloneOrEmpty(idx.records[[3]string{cat1, cat2, cat3}])
}

// cloneOrEmpty copies s so callers cannot modify the index, returning an
// empty non-nil slice for a missing bucket.
func cloneOrEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return []T{}
	}
	return slices.Clone(s)
}
