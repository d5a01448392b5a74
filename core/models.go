package core

// UnknownCategory is the bucket used for records whose cat1, cat2 or cat3 is
// NULL or empty in the source table.
//
// A real category literally named "<unknown>" would share this bucket with the
// uncategorised records. The angle brackets make that unlikely in the authored
// data, which uses plain words for category names.
const UnknownCategory = "<unknown>"

// AnswerRecord is a pre-authored answer loaded from the answer table.
type AnswerRecord struct {
	ID        int64
	Code      string
	Cat1      string
	Cat2      string
	Cat3      string
	Title     string
	MainText  string
	Agency1   string
	Agency2   string
	Embedding []float32 // empty when no embedding was computed or the stored value was malformed
}

// HasEmbedding reports whether the record carries a stored vector.
func (r *AnswerRecord) HasEmbedding() bool {
	return len(r.Embedding) > 0
}

// AgencyNames returns the non-empty agency references in column order.
func (r *AnswerRecord) AgencyNames() []string {
	names := make([]string, 0, 2)
	for _, name := range []string{r.Agency1, r.Agency2} {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Path returns the record's category path with missing levels mapped to
// UnknownCategory.
func (r *AnswerRecord) Path() [3]string {
	return [3]string{
		CategoryOrUnknown(r.Cat1),
		CategoryOrUnknown(r.Cat2),
		CategoryOrUnknown(r.Cat3),
	}
}

// CategoryOrUnknown maps an empty category value to UnknownCategory.
func CategoryOrUnknown(cat string) string {
	if cat == "" {
		return UnknownCategory
	}
	return cat
}

// Agency describes an organisation an answer can refer the citizen to.
type Agency struct {
	ID      int64
	Name    string
	Website string
	Tel     string
	Paid    string // paid-call marker shown right after the phone number
}

// SnippetKind identifies whether a snippet opens or closes a reply.
type SnippetKind string

const (
	// SnippetIntro is an opening paragraph.
	SnippetIntro SnippetKind = "intro"
	// SnippetClosing is a closing paragraph.
	SnippetClosing SnippetKind = "closing"
)

// Snippet is an intro or closing paragraph grouped by a category label.
type Snippet struct {
	ID       int64
	Kind     SnippetKind
	Category string
	Text     string
}

// SearchResult is a record returned from a query together with its score.
// Score is only meaningful for semantic search; browse and keyword results
// carry zero.
type SearchResult struct {
	Record *AnswerRecord
	Score  float32
}
