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


package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"
)

// DefaultInferenceTimeout bounds a single inference run.
const DefaultInferenceTimeout = 30 * time.Second

// State is the lifecycle state of an Engine.
type State int

const (
	// StateUnconfigured means validation has not succeeded.
	StateUnconfigured State = iota
	// StateConfigValidated means the assets exist and model_info is valid.
	StateConfigValidated
	// StateLoaded means the tokenizer and session are ready for Embed.
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigValidated:
		return "config-validated"
	case StateLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Info describes the engine for diagnostics.
type Info struct {
	Dir         string
	State       State
	Config      ModelConfig
	Fingerprint string
	// Err is the startup validation failure, if any.
	Err error
}

// Engine embeds text with a local model. It is safe for concurrent use.
type Engine struct {
	dir     string
	runtime Runtime
	logger  *slog.Logger
	timeout time.Duration

	mu          sync.Mutex
	state       State
	attempted   bool
	validateErr error
	config      ModelConfig
	tokenizer   Tokenizer
	session     Session
	fingerprint string
	// inflight counts runs on the current session; each Load starts a new one.
	inflight    *sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithInferenceTimeout bounds each inference run.
// Default is DefaultInferenceTimeout.
func WithInferenceTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return ErrInvalidTimeout
		}
		e.timeout = d
		return nil
	}
}

// NewEngine creates an engine for the model assets in dir. It does not touch
// the filesystem; call Validate at startup.
func NewEngine(dir string, runtime Runtime, opts ...Option) (*Engine, error) {
	if runtime == nil {
		return nil, ErrNoRuntime
	}
	e := &Engine{
		dir:     dir,
		runtime: runtime,
		logger:  slog.Default(),
		timeout: DefaultInferenceTimeout,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "embedding")
	return e, nil
}

// Validate checks the model assets and parses model_info.
//
// Only the first call inspects the filesystem. If it fails, the engine stays
// Unconfigured and this and every later call return an error matching
// ErrLockedOut and the original cause.
func (e *Engine) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validateLocked()
}

func (e *Engine) validateLocked() error {
	if e.attempted {
		if e.validateErr != nil {
			return &lockedOut{cause: e.validateErr}
		}
		return nil
	}
	e.attempted = true

	cfg, err := e.checkAssets()
	if err != nil {
		e.validateErr = err
		e.logger.Error("model validation failed, semantic search disabled", "dir", e.dir, "err", err)
		return &lockedOut{cause: err}
	}

	e.config = cfg
	e.state = StateConfigValidated
	e.logger.Info("model config validated",
		"model", cfg.ModelName,
		"hiddenSize", cfg.HiddenSize,
		"maxLength", cfg.MaxLength,
		"pooling", cfg.UsePooling)
	return nil
}

func (e *Engine) checkAssets() (ModelConfig, error) {
	if missing := missingAssets(e.dir); len(missing) > 0 {
		return ModelConfig{}, &MissingAssetsError{Dir: e.dir, Missing: missing}
	}
	return LoadModelConfig(filepath.Join(e.dir, ConfigFile))
}

// Load prepares the tokenizer and inference session.
//
// Load validates first if Validate was never called. It returns ErrUnavailable
// when the engine is locked out. Loading an already loaded engine is a no-op.
// A failure leaves the engine ConfigValidated so Load can be retried.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.attempted {
		_ = e.validateLocked()
	}
	switch e.state {
	case StateUnconfigured:
		return fmt.Errorf("%w: %v", ErrUnavailable, e.validateErr)
	case StateLoaded:
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Assets can disappear after startup.
	if missing := missingAssets(e.dir); len(missing) > 0 {
		err := &MissingAssetsError{Dir: e.dir, Missing: missing}
		e.logger.Error("model assets vanished", "err", err)
		return err
	}

	tokenizer, err := e.runtime.LoadTokenizer(filepath.Join(e.dir, TokenizerFile))
	if err != nil {
		e.logger.Error("failed to load tokenizer", "err", err)
		return fmt.Errorf("load tokenizer: %w", err)
	}
	session, err := e.runtime.LoadSession(filepath.Join(e.dir, ModelFile), e.config)
	if err != nil {
		e.logger.Error("failed to load inference session", "err", err)
		return fmt.Errorf("load session: %w", err)
	}

	fingerprint, err := fingerprintAssets(e.dir)
	if err != nil {
		// Only diagnostics depend on the fingerprint.
		e.logger.Warn("failed to fingerprint model assets", "err", err)
	}

	e.tokenizer = tokenizer
	e.session = session
	e.inflight = &sync.WaitGroup{}
	e.fingerprint = fingerprint
	e.state = StateLoaded
	e.logger.Info("model loaded", "model", e.config.ModelName, "fingerprint", fingerprint)
	return nil
}

// Unload releases the session and tokenizer and returns the engine to
// ConfigValidated. The engine leaves Loaded at once; Unload then waits for
// inference runs still using the old session before closing it, without
// holding the engine lock.
func (e *Engine) Unload() error {
	e.mu.Lock()
	if e.state != StateLoaded {
		e.mu.Unlock()
		return nil
	}
	session, inflight := e.session, e.inflight
	e.session = nil
	e.tokenizer = nil
	e.inflight = nil
	e.fingerprint = ""
	e.state = StateConfigValidated
	e.mu.Unlock()

	inflight.Wait()
	if err := session.Close(); err != nil {
		e.logger.Warn("error closing inference session", "err", err)
		return err
	}
	e.logger.Info("model unloaded")
	return nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Config returns the validated model config. It is the zero value until
// Validate succeeds.
func (e *Engine) Config() ModelConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// Info reports the engine state for diagnostics.
func (e *Engine) Info() Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Info{
		Dir:         e.dir,
		State:       e.state,
		Config:      e.config,
		Fingerprint: e.fingerprint,
		Err:         e.validateErr,
	}
}

// Embed returns the unit-length embedding of text.
//
// It returns (nil, false) for empty text, when the engine is not loaded, and
// on any tokenization, inference or shape failure. Failures are logged.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, bool) {
	if text == "" {
		return nil, false
	}

	e.mu.Lock()
	if e.state != StateLoaded {
		state := e.state
		e.mu.Unlock()
		e.logger.Warn("embed requested but model not loaded", "state", state)
		return nil, false
	}
	tokenizer, session, cfg, inflight := e.tokenizer, e.session, e.config, e.inflight
	inflight.Add(1)
	e.mu.Unlock()

	vector, err := e.embed(ctx, inflight, tokenizer, session, cfg, text)
	if err != nil {
		e.logger.Error("embedding failed", "err", err)
		return nil, false
	}
	return vector, true
}

// embed owns one inflight slot and releases it when inference finishes,
// which can be after embed itself returns on timeout.
func (e *Engine) embed(ctx context.Context, inflight *sync.WaitGroup, tokenizer Tokenizer, session Session, cfg ModelConfig, text string) ([]float32, error) {
	released := false
	defer func() {
		if !released {
			inflight.Done()
		}
	}()

	enc, err := tokenizer.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	ids, mask := fitSequence(enc, cfg.MaxLength, tokenizer.PadID())

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type runResult struct {
		output []float32
		err    error
	}
	done := make(chan runResult, 1)
	released = true
	go func() {
		defer inflight.Done()
		output, err := session.Run(ctx, ids, mask)
		done <- runResult{output: output, err: err}
	}()

	var output []float32
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("inference: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("inference: %w", res.err)
		}
		output = res.output
	}

	return finishVector(output, mask, cfg)
}

// fitSequence truncates or pads an encoding to exactly maxLen tokens.
// Padding uses padID with a zero attention mask.
func fitSequence(enc Encoding, maxLen int, padID int64) (ids, mask []int64) {
	ids = make([]int64, maxLen)
	mask = make([]int64, maxLen)
	n := min(len(enc.IDs), maxLen)
	copy(ids, enc.IDs[:n])
	for i := range n {
		if i < len(enc.AttentionMask) {
			mask[i] = enc.AttentionMask[i]
		} else {
			mask[i] = 1
		}
	}
	for i := n; i < maxLen; i++ {
		ids[i] = padID
	}
	return ids, mask
}

// finishVector pools (if configured) and normalizes raw model output.
func finishVector(output []float32, mask []int64, cfg ModelConfig) ([]float32, error) {
	if len(output) != cfg.OutputLen() {
		return nil, fmt.Errorf("%w: output has %d values, want %d", errShape, len(output), cfg.OutputLen())
	}
	vector := output
	if cfg.UsePooling {
		pooled, err := MeanPool(output, mask, cfg.HiddenSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errShape, err)
		}
		vector = pooled
	}
	vector = NormalizeL2(vector)
	if len(vector) != cfg.HiddenSize {
		return nil, fmt.Errorf("%w: embedding has %d values, want %d", errShape, len(vector), cfg.HiddenSize)
	}
	return vector, nil
}

var errShape = errors.New("unexpected output shape")
