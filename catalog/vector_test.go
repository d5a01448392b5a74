package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []float32
		wantErr bool
	}{
		{name: "vector", text: "[0.5, -1, 2e-3]", want: []float32{0.5, -1, 0.002}},
		{name: "surrounding whitespace", text: "  [1,2]\n", want: []float32{1, 2}},
		{name: "blank", text: "   "},
		{name: "empty list", text: "[]"},
		{name: "json null", text: "null"},
		{name: "truncated", text: "[0.1, 0.2", wantErr: true},
		{name: "non numeric", text: `["a"]`, wantErr: true},
		{name: "object", text: `{"v": 1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEmbedding(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmbeddingRoundTrip(t *testing.T) {
	vector := []float32{0.123456789, -0.987654321, 1e-7, 3.4028235e38, 0}

	parsed, err := ParseEmbedding(FormatEmbedding(vector))
	require.NoError(t, err)
	require.Len(t, parsed, len(vector))
	for i := range vector {
		assert.InDelta(t, vector[i], parsed[i], 1e-6)
	}
}

func TestFormatEmbedding(t *testing.T) {
	assert.Equal(t, "[]", FormatEmbedding(nil))
	assert.Equal(t, "[1,0.5]", FormatEmbedding([]float32{1, 0.5}))
	assert.Equal(t, "[]", FormatEmbedding([]float32{float32(math.NaN())}))
}
