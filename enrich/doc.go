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


// Package enrich gathers auxiliary travel data for retrieved candidates.
//
// Five provider contracts cover weather forecasts, live nightly prices,
// currency exchange rates, destination safety facts and activity
// suggestions. Every provider treats "no data" as a normal outcome: a
// (nil, nil) return means the data is simply not available for the request,
// and the conversation proceeds without it.
//
// The Fanout type dispatches one task per configured provider on a shared
// worker pool, bounds each task with its own timeout, and joins on a barrier
// that honors context cancellation. The activity provider is the exception:
// its suggestions depend on the forecast, so it runs after the barrier with
// the merged weather in hand. Failed or slow tasks are logged and dropped;
// whatever arrived in time is merged into a core.Enrichment.
package enrich
