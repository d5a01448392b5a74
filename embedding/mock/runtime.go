package mock

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/poiesic/answerdesk/embedding"
)

// Runtime is a test double for embedding.Runtime.
type Runtime struct {
	// LoadTokenizerFunc is called by LoadTokenizer if set.
	// If nil, returns Tokenizer.
	LoadTokenizerFunc func(path string) (embedding.Tokenizer, error)

	// LoadSessionFunc is called by LoadSession if set.
	// If nil, returns Session configured for cfg.
	LoadSessionFunc func(modelPath string, cfg embedding.ModelConfig) (embedding.Session, error)

	Tokenizer *Tokenizer
	Session   *Session

	mu        sync.Mutex
	loadCount int
}

// NewRuntime creates a runtime that hands out a word tokenizer and a
// deterministic session.
func NewRuntime() *Runtime {
	return &Runtime{
		Tokenizer: &Tokenizer{},
		Session:   &Session{},
	}
}

func (r *Runtime) LoadTokenizer(path string) (embedding.Tokenizer, error) {
	if r.LoadTokenizerFunc != nil {
		return r.LoadTokenizerFunc(path)
	}
	return r.Tokenizer, nil
}

func (r *Runtime) LoadSession(modelPath string, cfg embedding.ModelConfig) (embedding.Session, error) {
	r.mu.Lock()
	r.loadCount++
	r.mu.Unlock()

	if r.LoadSessionFunc != nil {
		return r.LoadSessionFunc(modelPath, cfg)
	}
	r.Session.configure(cfg)
	return r.Session, nil
}

// LoadCount returns how many sessions were requested.
func (r *Runtime) LoadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadCount
}

// Tokenizer splits text on whitespace and maps each word to a stable id.
// Id 1 is prepended as a start token.
type Tokenizer struct {
	// EncodeFunc is called by Encode if set.
	EncodeFunc func(text string) (embedding.Encoding, error)

	// Pad is returned by PadID.
	Pad int64
}

func (t *Tokenizer) Encode(text string) (embedding.Encoding, error) {
	if t.EncodeFunc != nil {
		return t.EncodeFunc(text)
	}
	words := strings.Fields(text)
	enc := embedding.Encoding{
		IDs:           make([]int64, 0, len(words)+1),
		AttentionMask: make([]int64, 0, len(words)+1),
	}
	enc.IDs = append(enc.IDs, 1)
	enc.AttentionMask = append(enc.AttentionMask, 1)
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		enc.IDs = append(enc.IDs, int64(h.Sum32()%30000)+2)
		enc.AttentionMask = append(enc.AttentionMask, 1)
	}
	return enc, nil
}

func (t *Tokenizer) PadID() int64 {
	return t.Pad
}

// Session produces deterministic output shaped for the configured model.
type Session struct {
	// RunFunc is called by Run if set.
	RunFunc func(ctx context.Context, ids, mask []int64) ([]float32, error)

	// CloseFunc is called by Close if set.
	CloseFunc func() error

	mu       sync.Mutex
	cfg      embedding.ModelConfig
	calls    int
	closed   int
	lastIDs  []int64
	lastMask []int64
}

func (s *Session) configure(cfg embedding.ModelConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *Session) Run(ctx context.Context, ids, mask []int64) ([]float32, error) {
	s.mu.Lock()
	s.calls++
	s.lastIDs = append([]int64(nil), ids...)
	s.lastMask = append([]int64(nil), mask...)
	cfg := s.cfg
	s.mu.Unlock()

	if s.RunFunc != nil {
		return s.RunFunc(ctx, ids, mask)
	}

	// Each token contributes a vector seeded by its id.
	out := make([]float32, cfg.OutputLen())
	if cfg.UsePooling {
		for t, id := range ids {
			copy(out[t*cfg.HiddenSize:(t+1)*cfg.HiddenSize], deterministicVector(id, cfg.HiddenSize))
		}
		return out, nil
	}
	for t, id := range ids {
		if mask[t] == 0 {
			continue
		}
		for i, v := range deterministicVector(id, cfg.HiddenSize) {
			out[i] += v
		}
	}
	return out, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	if s.CloseFunc != nil {
		return s.CloseFunc()
	}
	return nil
}

// Calls returns how many times Run was called.
func (s *Session) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Closed returns how many times Close was called.
func (s *Session) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// LastInput returns the ids and mask of the most recent Run.
func (s *Session) LastInput() (ids, mask []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastIDs, s.lastMask
}

// deterministicVector derives a vector in [0, 1) from a token id.
func deterministicVector(id int64, dim int) []float32 {
	seed := uint32(id)*2654435761 + 1
	vector := make([]float32, dim)
	for i := range vector {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}
	return vector
}

// DefaultConfig is the model_info WriteAssets uses when given a zero config.
var DefaultConfig = embedding.ModelConfig{
	ModelName:  "mock-minilm",
	License:    "apache-2.0",
	HiddenSize: 8,
	MaxLength:  16,
	OutputName: "last_hidden_state",
	UsePooling: true,
}

// WriteAssets creates the three model assets in dir. The graph and tokenizer
// files hold placeholder bytes.
func WriteAssets(dir string, cfg embedding.ModelConfig) error {
	if cfg == (embedding.ModelConfig{}) {
		cfg = DefaultConfig
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	info, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	files := map[string][]byte{
		embedding.ModelFile:     []byte("mock onnx graph"),
		embedding.TokenizerFile: []byte(`{"model": {"type": "WordLevel"}}`),
		embedding.ConfigFile:    info,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return err
		}
	}
	return nil
}
