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


// Package rules provides a deterministic, rule-based query parser.
//
// The parser extracts travel intent with regular expressions and keyword
// tables instead of a language model. It needs no network access, responds
// in microseconds, and always produces the same output for the same input,
// which makes it both a dependable fallback when the LLM parser fails and a
// useful implementation for tests and offline operation.
//
// Coverage is intentionally narrow: capitalized place names after travel
// prepositions, absolute and common relative date phrases, party sizes,
// dollar budgets, and a fixed vocabulary of atmosphere and amenity terms
// in English and Korean.
package rules
