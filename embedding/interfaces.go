package embedding

import "context"

// Encoding is the tokenizer output for one text.
type Encoding struct {
	IDs           []int64
	AttentionMask []int64
}

// Tokenizer converts text into token ids.
type Tokenizer interface {
	// Encode tokenizes text including any special tokens the model expects.
	// The result is not truncated or padded.
	Encode(text string) (Encoding, error)

	// PadID is the id used to pad sequences to a fixed length.
	PadID() int64
}

// Session runs the inference graph.
type Session interface {
	// Run executes the graph on a single sequence and returns the configured
	// output tensor flattened in row-major order.
	Run(ctx context.Context, ids, mask []int64) ([]float32, error)

	// Close releases the session's resources.
	Close() error
}

// Runtime loads the tokenizer and inference session from model assets.
// The production implementation lives in embedding/onnx.
type Runtime interface {
	LoadTokenizer(path string) (Tokenizer, error)
	LoadSession(modelPath string, cfg ModelConfig) (Session, error)
}
