// Package embedding turns query text into unit-length vectors with a local
// transformer model.
//
// A model directory holds three assets: the inference graph (model.onnx), the
// tokenizer definition (tokenizer.json) and a small JSON document describing
// the model (model_info). The Engine validates these once, loads them on
// demand through a pluggable Runtime, and embeds text by tokenizing, running
// inference, optionally mean pooling over the sequence and L2 normalizing the
// result.
//
// # Lifecycle
//
//	Unconfigured --Validate ok--> ConfigValidated --Load ok--> Loaded
//	                                     ^                        |
//	                                     +--------Unload----------+
//
// A failed first Validate locks the engine out for the lifetime of the
// process. Later calls return ErrLockedOut without looking at the filesystem
// again, even if the assets have since been repaired. Load failures are not
// sticky; the engine stays ConfigValidated and Load may be retried.
//
// Embed never returns an error. Any failure is logged and reported as
// (nil, false) so callers can treat "no vector" uniformly.
package embedding
