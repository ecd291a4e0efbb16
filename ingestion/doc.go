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


// Package ingestion loads hotel review documents into the search index.
//
// The pipeline stores incoming documents immediately so lexical retrieval
// can see them right away, then embeds their review text on a worker pool
// and writes the vectors back. Embedding failures are logged and leave the
// affected documents lexical-only; they never fail the ingest.
package ingestion
