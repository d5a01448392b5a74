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

import "errors"

// Domain validation errors
var (
	// ErrInvalidAnswerRecord indicates an AnswerRecord failed validation.
	ErrInvalidAnswerRecord = errors.New("invalid answer record")

	// ErrDimensionMismatch indicates a stored embedding whose length differs
	// from the configured hidden size.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidSnippetKind indicates a snippet type other than intro or closing.
	ErrInvalidSnippetKind = errors.New("invalid snippet kind")

	// ErrInvalidDimension indicates a non-positive hidden size.
	ErrInvalidDimension = errors.New("dimension must be positive")
)
