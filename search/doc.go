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


// Package search provides hybrid lexical and semantic retrieval over hotel
// review documents.
//
// The Engine type implements a multi-stage retrieval algorithm that combines:
//   - Lexical search using term-frequency scoring with stop-word filtering
//   - Semantic search using vector embeddings
//   - Score fusion with a query-adaptive weighting between the two legs
//
// Results from each leg are min-max normalized before fusion, so the fusion
// weight compares like with like. A three-stage constraint-relaxation fallback
// widens the search when too few candidates survive filtering, and pluggable
// Reranker strategies reorder the fused results before they are returned.
package search
