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


// Package search ranks answer records by cosine similarity to a query.
//
// The Ranker embeds the query once and scores every record that carries a
// stored vector of the same dimension. Records without a vector are never
// scored and never returned. Results are ordered by descending score; equal
// scores keep corpus order, so ranking is deterministic for a given corpus.
package search
