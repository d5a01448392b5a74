// Package mock provides test doubles for the embedding runtime.
//
// Runtime, Tokenizer and Session let tests drive embedding.Engine without an
// ONNX runtime or model files. Each double exposes function fields for custom
// behavior and falls back to deterministic defaults.
//
//	rt := mock.NewRuntime()
//	rt.Session.RunFunc = func(ctx context.Context, ids, mask []int64) ([]float32, error) {
//	    return []float32{1, 0, 0}, nil
//	}
//	engine, _ := embedding.NewEngine(dir, rt)
//
// WriteAssets creates a model directory with placeholder assets and a valid
// model_info document.
package mock
