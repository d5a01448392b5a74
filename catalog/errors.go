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


package catalog

import (
	"errors"
	"strings"
)

var (
	// ErrMissingSource indicates one or more required data sources are absent.
	// The concrete error is *MissingSourceError.
	ErrMissingSource = errors.New("missing required data source")

	// ErrPoolSize is returned for a non-positive load concurrency.
	ErrPoolSize = errors.New("load concurrency must be at least 1")
)

// MissingSourceError lists every required source that could not be found.
type MissingSourceError struct {
	// Missing holds source names in the order of RequiredSources.
	Missing []string
}

func (e *MissingSourceError) Error() string {
	return ErrMissingSource.Error() + ": " + strings.Join(e.Missing, ", ")
}

// Is makes errors.Is(err, ErrMissingSource) true for *MissingSourceError.
func (e *MissingSourceError) Is(target error) bool {
	return target == ErrMissingSource
}
