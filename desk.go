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


package answerdesk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/poiesic/answerdesk/catalog"
	"github.com/poiesic/answerdesk/embedding"
	"github.com/poiesic/answerdesk/embedding/onnx"
	"github.com/poiesic/answerdesk/usercontent"
)

// Config names the directories a Desk reads from.
type Config struct {
	// DataDir holds the four read-only answer sources.
	DataDir string
	// ModelDir holds model.onnx, tokenizer.json and model_info.
	ModelDir string
	// UserDir holds the badger database for templates and memos.
	UserDir string
}

// DefaultConfig lays the directories out under baseDir.
func DefaultConfig(baseDir string) Config {
	return Config{
		DataDir:  filepath.Join(baseDir, "database"),
		ModelDir: filepath.Join(baseDir, "model"),
		UserDir:  filepath.Join(baseDir, "user"),
	}
}

// Desk wires the catalog, embedding engine, retriever and user content store
// together for one process.
type Desk struct {
	catalog   *catalog.Catalog
	engine    *embedding.Engine
	retriever *Retriever
	users     *usercontent.Store
	logger    *slog.Logger
}

// DeskOption configures a Desk.
type DeskOption func(*deskOptions)

type deskOptions struct {
	logger        *slog.Logger
	runtime       embedding.Runtime
	timeout       time.Duration
	topK          int
	onnxLibrary   string
	loadWorkers   int
	inMemoryUsers bool
}

// WithLogger sets the logger shared by every component.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DeskOption {
	return func(o *deskOptions) {
		o.logger = logger
	}
}

// WithRuntime sets the inference runtime.
// Default is an ONNX Runtime.
func WithRuntime(runtime embedding.Runtime) DeskOption {
	return func(o *deskOptions) {
		o.runtime = runtime
	}
}

// WithONNXLibrary sets the onnxruntime shared library used by the default
// runtime.
func WithONNXLibrary(path string) DeskOption {
	return func(o *deskOptions) {
		o.onnxLibrary = path
	}
}

// WithInferenceTimeout bounds each embedding run.
func WithInferenceTimeout(d time.Duration) DeskOption {
	return func(o *deskOptions) {
		o.timeout = d
	}
}

// WithTopK sets the default semantic result limit.
func WithTopK(n int) DeskOption {
	return func(o *deskOptions) {
		o.topK = n
	}
}

// WithLoadWorkers sets how many answer sources are read in parallel.
func WithLoadWorkers(n int) DeskOption {
	return func(o *deskOptions) {
		o.loadWorkers = n
	}
}

// WithInMemoryUserContent keeps templates and memos in memory and ignores
// Config.UserDir.
func WithInMemoryUserContent() DeskOption {
	return func(o *deskOptions) {
		o.inMemoryUsers = true
	}
}

// OpenDesk loads the catalog and prepares the other components.
//
// A missing answer source is fatal and returned as a
// *catalog.MissingSourceError. Invalid model assets are not: the desk opens
// and semantic search reports StatusUnavailable for the rest of the process.
// The model itself is loaded on first semantic query or by LoadModel.
func OpenDesk(ctx context.Context, cfg Config, opts ...DeskOption) (*Desk, error) {
	options := &deskOptions{
		timeout: embedding.DefaultInferenceTimeout,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger

	catalogOpts := []catalog.Option{catalog.WithLogger(logger)}
	if options.loadWorkers > 0 {
		catalogOpts = append(catalogOpts, catalog.WithLoadConcurrency(options.loadWorkers))
	}
	cat, err := catalog.Load(ctx, cfg.DataDir, catalogOpts...)
	if err != nil {
		return nil, err
	}

	runtime := options.runtime
	if runtime == nil {
		runtime, err = onnx.NewRuntime(onnx.WithLibraryPath(options.onnxLibrary), onnx.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("create inference runtime: %w", err)
		}
	}
	engine, err := embedding.NewEngine(cfg.ModelDir, runtime,
		embedding.WithLogger(logger),
		embedding.WithInferenceTimeout(options.timeout))
	if err != nil {
		return nil, err
	}
	if err := engine.Validate(); err != nil {
		logger.Warn("model assets invalid, semantic search disabled", "dir", cfg.ModelDir, "err", err)
	}

	retriever, err := NewRetriever(cat, engine,
		WithRetrieverLogger(logger),
		WithDefaultTopK(options.topK))
	if err != nil {
		return nil, err
	}

	var users *usercontent.Store
	if options.inMemoryUsers {
		users, err = usercontent.OpenInMemory(usercontent.WithLogger(logger))
	} else {
		users, err = usercontent.Open(cfg.UserDir, usercontent.WithLogger(logger))
	}
	if err != nil {
		return nil, err
	}

	return &Desk{
		catalog:   cat,
		engine:    engine,
		retriever: retriever,
		users:     users,
		logger:    logger.With("component", "desk"),
	}, nil
}

// Close unloads the model and closes the user content store.
func (d *Desk) Close() error {
	var errs []error
	if err := d.engine.Unload(); err != nil {
		d.logger.Error("error unloading model", "err", err)
		errs = append(errs, err)
	}
	if err := d.users.Close(); err != nil {
		d.logger.Error("error closing user content store", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (d *Desk) Retriever() *Retriever {
	return d.retriever
}

func (d *Desk) Catalog() *catalog.Catalog {
	return d.catalog
}

func (d *Desk) Engine() *embedding.Engine {
	return d.engine
}

func (d *Desk) UserContent() *usercontent.Store {
	return d.users
}
