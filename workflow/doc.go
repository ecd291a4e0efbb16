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


// Package workflow drives the conversational turn state machine.
//
// The Orchestrator advances one user message through a closed set of states:
// parse, route, retrieve, enrich, generate, and the two stopping states
// await-feedback and done. Exactly one traversal happens per message, and
// control always returns to the caller at a stopping state.
//
// Failure policy: a parse failure or a generation failure ends the turn with
// an error; every other step degrades in place. Retrieval outages produce an
// empty candidate list plus a note, and enrichment failures simply leave
// their field absent. Session memory only ever grows during a turn, and the
// orchestrator snapshots it before generation so a generation failure cannot
// leave a partial write behind.
//
// The FeedbackRouter classifies follow-up messages into a closed action set,
// and the Manager serializes concurrent turns per session while persisting
// memory through a storage.SessionRepository.
package workflow
