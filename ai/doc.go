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


// Package ai provides abstractions for the AI services used in Itinera.
//
// This package defines interfaces for query parsing, response generation,
// text embeddings and relevance scoring. It follows the dependency inversion
// principle, allowing the workflow and search layers to depend on
// abstractions rather than concrete implementations.
//
// # Implementation Packages
//
// The ai package includes three implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/rules: Deterministic rule-based query parser, also used as the
//     fallback when the LLM parse fails
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewQueryParser, etc.)
// return INTERFACE types to enforce abstraction and prevent accidental
// coupling to concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.Provider
//
// Test utility constructors in ai/mock return CONCRETE types to enable test
// assertions and behavior injection via the mock's public methods.
//
//	mockParser := mock.NewMockQueryParser()      // returns *mock.MockQueryParser
//	mockParser.WithParseQueryFunc(...)           // needs concrete type
//	count := mockParser.CallCount()              // test assertion
package ai
