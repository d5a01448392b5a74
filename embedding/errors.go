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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingAssets is matched by MissingAssetsError.
	ErrMissingAssets = errors.New("model assets missing")

	// ErrInvalidModelConfig is returned when model_info cannot be used.
	ErrInvalidModelConfig = errors.New("invalid model config")

	// ErrLockedOut is returned by every Validate after a failed first one.
	ErrLockedOut = errors.New("embedding engine locked out after failed startup validation")

	// ErrUnavailable is returned by Load when the engine was never configured.
	ErrUnavailable = errors.New("embedding engine unavailable")

	// ErrNoRuntime is returned by NewEngine without a Runtime.
	ErrNoRuntime = errors.New("embedding runtime is required")

	// ErrInvalidTimeout is returned for a non-positive inference timeout.
	ErrInvalidTimeout = errors.New("inference timeout must be positive")
)

// MissingAssetsError lists every model asset that was not found.
type MissingAssetsError struct {
	Dir     string
	Missing []string
}

func (e *MissingAssetsError) Error() string {
	return fmt.Sprintf("model assets missing in %s: %s", e.Dir, strings.Join(e.Missing, ", "))
}

func (e *MissingAssetsError) Is(target error) bool {
	return target == ErrMissingAssets
}

// lockedOut wraps the first validation failure so both ErrLockedOut and the
// original cause match with errors.Is.
type lockedOut struct {
	cause error
}

func (e *lockedOut) Error() string {
	return fmt.Sprintf("%s: %v", ErrLockedOut, e.cause)
}

func (e *lockedOut) Unwrap() []error {
	return []error{ErrLockedOut, e.cause}
}
