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


package core

import (
	"fmt"
)

// ValidateEmbedding checks a record's stored vector against the configured
// hidden size.
//
// Validation rules:
//   - dim must be positive
//   - an absent vector (length 0) is always valid
//   - a present vector must have exactly dim components
func ValidateEmbedding(record *AnswerRecord, dim int) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidAnswerRecord)
	}
	if dim <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	if !record.HasEmbedding() {
		return nil
	}
	if len(record.Embedding) != dim {
		return fmt.Errorf("%w: record %d has %d components, want %d",
			ErrDimensionMismatch, record.ID, len(record.Embedding), dim)
	}
	return nil
}

// ValidateSnippetKind returns an error unless kind is intro or closing.
func ValidateSnippetKind(kind SnippetKind) error {
	switch kind {
	case SnippetIntro, SnippetClosing:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSnippetKind, string(kind))
	}
}

// IsValidSnippetKind reports whether kind is intro or closing.
func IsValidSnippetKind(kind SnippetKind) bool {
	return ValidateSnippetKind(kind) == nil
}
