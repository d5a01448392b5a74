package onnx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPadID(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		doc     string
		want    int64
		wantErr bool
	}{
		{name: "padding section", doc: `{"padding": {"pad_id": 1, "pad_token": "<pad>"}}`, want: 1},
		{name: "no padding", doc: `{"model": {}}`, want: 0},
		{name: "null padding", doc: `{"padding": null}`, want: 0},
		{name: "malformed", doc: `{"padding": `, wantErr: true},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, string(rune('a'+i))+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0644))

			got, err := readPadID(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRuntime(t *testing.T) {
	_, err := NewRuntime(WithIntraOpThreads(-1))
	assert.Error(t, err)

	r, err := NewRuntime(WithLibraryPath("/opt/onnxruntime/libonnxruntime.so"), WithIntraOpThreads(2), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, "/opt/onnxruntime/libonnxruntime.so", r.libraryPath)
	assert.Equal(t, 2, r.threads)
}

func TestLoadTokenizer_MissingFile(t *testing.T) {
	r, err := NewRuntime()
	require.NoError(t, err)

	_, err = r.LoadTokenizer(filepath.Join(t.TempDir(), "tokenizer.json"))
	assert.Error(t, err)
}

func TestSessionClosed(t *testing.T) {
	s := &Session{}
	assert.NoError(t, s.Close())
	_, err := s.Run(t.Context(), []int64{1}, []int64{1})
	assert.Equal(t, ErrSessionClosed, err)
}
