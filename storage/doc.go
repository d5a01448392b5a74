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


// Package storage defines the persistence contract for user content.
//
// User content is what caseworkers create while working: reusable reply
// templates and private memos attached to answer records. The read-only answer
// catalog never goes through this package; it is loaded by package catalog
// from the sqlite sources in storage/sqlite.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: transaction support and lifecycle shared by all repositories
//   - TemplateRepository: templates with a unique title index
//   - MemoRepository: one memo per answer record
//
// storage/badger provides the BadgerDB implementation. Values are encoded
// with the MUS serializers in package core.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	templates, memos, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
