package onnx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/poiesic/answerdesk/embedding"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Graph input names.
const (
	InputIDs           = "input_ids"
	InputAttentionMask = "attention_mask"
)

// ErrSessionClosed is returned by Run after Close.
var ErrSessionClosed = errors.New("inference session closed")

// environment is process wide in ONNX Runtime.
var (
	envMu       sync.Mutex
	envRefCount int
)

// Runtime loads models with ONNX Runtime.
type Runtime struct {
	libraryPath string
	threads     int
	logger      *slog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime) error

// WithLibraryPath sets the onnxruntime shared library to load.
// Default is the platform's library search path.
func WithLibraryPath(path string) Option {
	return func(r *Runtime) error {
		r.libraryPath = path
		return nil
	}
}

// WithIntraOpThreads limits the threads used inside one operator.
// Zero leaves the ONNX Runtime default.
func WithIntraOpThreads(n int) Option {
	return func(r *Runtime) error {
		if n < 0 {
			return fmt.Errorf("invalid thread count %d", n)
		}
		r.threads = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRuntime creates a runtime. The shared library is not loaded until the
// first session is created.
func NewRuntime(opts ...Option) (*Runtime, error) {
	r := &Runtime{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "onnx")
	return r, nil
}

var _ embedding.Runtime = (*Runtime)(nil)

// LoadTokenizer reads a HuggingFace tokenizer.json file.
func (r *Runtime) LoadTokenizer(path string) (embedding.Tokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokenizer %s: %w", path, err)
	}
	padID, err := readPadID(path)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{tk: tk, padID: padID}, nil
}

// LoadSession creates an inference session for the graph at modelPath.
func (r *Runtime) LoadSession(modelPath string, cfg embedding.ModelConfig) (embedding.Session, error) {
	if err := r.acquireEnvironment(); err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer options.Destroy()
	if r.threads > 0 {
		if err := options.SetIntraOpNumThreads(r.threads); err != nil {
			releaseEnvironment()
			return nil, fmt.Errorf("session options: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{InputIDs, InputAttentionMask},
		[]string{cfg.OutputName},
		options)
	if err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("create session: %w", err)
	}
	r.logger.Debug("inference session created", "model", modelPath, "output", cfg.OutputName)
	return &Session{session: session, cfg: cfg}, nil
}

func (r *Runtime) acquireEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefCount == 0 && !ort.IsInitialized() {
		if r.libraryPath != "" {
			ort.SetSharedLibraryPath(r.libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	envRefCount++
	return nil
}

func releaseEnvironment() {
	envMu.Lock()
	defer envMu.Unlock()

	envRefCount--
	if envRefCount == 0 && ort.IsInitialized() {
		ort.DestroyEnvironment()
	}
}

// Tokenizer adapts a sugarme tokenizer to embedding.Tokenizer.
type Tokenizer struct {
	tk    *tokenizer.Tokenizer
	padID int64
}

func (t *Tokenizer) Encode(text string) (embedding.Encoding, error) {
	enc, err := t.tk.EncodeSingle(text, true)
	if err != nil {
		return embedding.Encoding{}, err
	}
	out := embedding.Encoding{
		IDs:           make([]int64, len(enc.Ids)),
		AttentionMask: make([]int64, len(enc.Ids)),
	}
	for i, id := range enc.Ids {
		out.IDs[i] = int64(id)
		out.AttentionMask[i] = 1
		if i < len(enc.AttentionMask) {
			out.AttentionMask[i] = int64(enc.AttentionMask[i])
		}
	}
	return out, nil
}

func (t *Tokenizer) PadID() int64 {
	return t.padID
}

// readPadID reads padding.pad_id from tokenizer.json. Files without a padding
// section pad with id 0.
func readPadID(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var doc struct {
		Padding *struct {
			PadID int64 `json:"pad_id"`
		} `json:"padding"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse tokenizer %s: %w", path, err)
	}
	if doc.Padding == nil {
		return 0, nil
	}
	return doc.Padding.PadID, nil
}

// Session runs one graph. Runs are serialized.
type Session struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	cfg     embedding.ModelConfig
}

// Run executes the graph on one sequence. ONNX Runtime cannot be interrupted,
// so ctx is only checked before the run starts.
func (s *Session) Run(ctx context.Context, ids, mask []int64) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrSessionClosed
	}

	seqLen := int64(len(ids))
	shape := ort.NewShape(1, seqLen)
	idsTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, err
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, err
	}
	defer maskTensor.Destroy()

	outShape := ort.NewShape(1, int64(s.cfg.HiddenSize))
	if s.cfg.UsePooling {
		outShape = ort.NewShape(1, seqLen, int64(s.cfg.HiddenSize))
	}
	output, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, err
	}
	defer output.Destroy()

	if err := s.session.Run([]ort.Value{idsTensor, maskTensor}, []ort.Value{output}); err != nil {
		return nil, err
	}
	data := output.GetData()
	result := make([]float32, len(data))
	copy(result, data)
	return result, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	releaseEnvironment()
	return err
}
