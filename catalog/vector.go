package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseEmbedding decodes the stored text form of an embedding, a JSON array
// of floats.
//
// An empty or blank string, "null" and "[]" all decode to a nil vector with
// no error: no embedding was computed for the record. Anything else that is
// not a JSON array of numbers returns an error.
func ParseEmbedding(text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var vector []float32
	if err := json.Unmarshal([]byte(text), &vector); err != nil {
		return nil, fmt.Errorf("malformed embedding: %w", err)
	}
	if len(vector) == 0 {
		return nil, nil
	}
	return vector, nil
}

// FormatEmbedding encodes a vector in its stored text form.
// A nil or empty vector encodes as "[]", and so does a vector holding NaN or
// an infinity, which JSON cannot represent.
func FormatEmbedding(vector []float32) string {
	if len(vector) == 0 {
		return "[]"
	}
	data, err := json.Marshal(vector)
	if err != nil {
		return "[]"
	}
	return string(data)
}
