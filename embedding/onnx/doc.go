// Package onnx is the production embedding.Runtime.
//
// Inference runs through ONNX Runtime (github.com/yalue/onnxruntime_go), which
// loads the onnxruntime shared library at run time. Tokenization uses a
// HuggingFace tokenizer.json file through github.com/sugarme/tokenizer.
package onnx
