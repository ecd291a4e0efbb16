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


package openai

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/itinera/ai"
	"github.com/poiesic/itinera/core"
)

const parseResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "destination": {"type": "string"},
    "check_in_date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$|^$"},
    "check_out_date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$|^$"},
    "traveler_count": {"type": "integer", "minimum": 0},
    "budget_max": {"type": "number", "minimum": 0},
    "atmosphere_keywords": {"type": "array", "items": {"type": "string"}},
    "amenity_requirements": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["destination", "atmosphere_keywords", "amenity_requirements"],
  "additionalProperties": false
}`

const parsePromptTemplate = `You are a travel planning expert. Extract travel booking intent from the user's message and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Leave unknown fields empty ("" for strings, 0 for numbers, [] for arrays). Do not guess.
- Dates must be absolute YYYY-MM-DD. Resolve relative phrases ("next weekend", "다음 주") against today's date: %s.
- atmosphere_keywords are mood/style terms (quiet, romantic, luxury, ...), lowercase English.
- amenity_requirements are concrete facilities (wifi, parking, breakfast, pool, ...), lowercase English.
- The user may write in English or Korean; extract the same fields either way.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "We need a quiet, romantic hotel in Paris Dec 15-18 for two, under $200 a night"
Output:
{
  "destination": "Paris",
  "check_in_date": "%d-12-15",
  "check_out_date": "%d-12-18",
  "traveler_count": 2,
  "budget_max": 200,
  "atmosphere_keywords": ["quiet", "romantic"],
  "amenity_requirements": []
}

Example (Korean, informal):
Input: "다음 주에 도쿄에서 조용한 호텔, 주차 되는 곳"
Output:
{
  "destination": "Tokyo",
  "check_in_date": "",
  "check_out_date": "",
  "traveler_count": 0,
  "budget_max": 0,
  "atmosphere_keywords": ["quiet"],
  "amenity_requirements": ["parking"]
}

Example (small talk, nothing to extract):
Input: "hey, what can you help me with?"
Output:
{
  "destination": "",
  "check_in_date": "",
  "check_out_date": "",
  "traveler_count": 0,
  "budget_max": 0,
  "atmosphere_keywords": [],
  "amenity_requirements": []
}`

// buildParsePrompt creates the parsing system prompt anchored to now.
func buildParsePrompt(now time.Time) string {
	return fmt.Sprintf(parsePromptTemplate,
		parseResponseSchema,
		now.Format("2006-01-02"),
		now.Year(), now.Year())
}

const generatePromptTemplate = `You are a professional travel consultant. Compose a reply for the traveler from the
structured trip data below.

Guidelines:
- Keep a friendly, professional tone; answer in the language the traveler wrote in.
- Present the recommended hotels in the given order with one concrete reason each,
  drawn from the review snippets. Never invent hotels or facts.
- If a search note is present, state it plainly before the recommendations.
- Weave in weather, nightly prices, and destination facts when they are provided.
- If there are no hotels to show, say so and ask one clarifying question.
- When hotels are shown, close by inviting the traveler to pick one or refine the search.
- Be concise: a few short paragraphs, no headings.`

// buildGenerateContent renders the turn's state view into the user prompt.
func buildGenerateContent(view *ai.StateView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Traveler message: %s\n", view.Query)
	b.WriteString(formatIntent(view.Parsed))

	if view.RelaxationNote != "" {
		fmt.Fprintf(&b, "\nSearch note: %s\n", view.RelaxationNote)
	}

	b.WriteString(formatCandidates(view.Candidates))
	b.WriteString(formatEnrichment(view.Enrichment))
	b.WriteString(formatHistory(view.ChatHistory))

	b.WriteString("\nCompose the reply now.")
	return b.String()
}

func formatIntent(query *core.TravelQuery) string {
	if query == nil {
		return "Parsed intent: none\n"
	}

	var b strings.Builder
	b.WriteString("Parsed intent:\n")
	if query.Destination != "" {
		fmt.Fprintf(&b, "- destination: %s\n", query.Destination)
	}
	if !query.CheckIn.IsZero() {
		fmt.Fprintf(&b, "- dates: %s to %s\n",
			query.CheckIn.Format("2006-01-02"), query.CheckOut.Format("2006-01-02"))
	}
	if query.PartySize > 0 {
		fmt.Fprintf(&b, "- travelers: %d\n", query.PartySize)
	}
	if query.BudgetMax > 0 {
		fmt.Fprintf(&b, "- budget: up to $%.0f per night\n", query.BudgetMax)
	}
	if prefs := query.PreferenceText(); prefs != "" {
		fmt.Fprintf(&b, "- preferences: %s\n", prefs)
	}
	return b.String()
}

func formatCandidates(candidates []*core.Candidate) string {
	if len(candidates) == 0 {
		return "\nRecommended hotels: none found\n"
	}

	var b strings.Builder
	b.WriteString("\nRecommended hotels (best first):\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "%d. %s (%s, rating %.1f", c.Rank, c.HotelName, c.Location, c.Rating)
		if price, ok := c.Decorations["nightly_price"]; ok {
			fmt.Fprintf(&b, ", ~%s/night", price)
		}
		b.WriteString(")\n")
		if c.Snippet != "" {
			fmt.Fprintf(&b, "   review: %q\n", c.Snippet)
		}
	}
	return b.String()
}

func formatEnrichment(enrichment *core.Enrichment) string {
	if enrichment == nil {
		return ""
	}

	var b strings.Builder
	if len(enrichment.Weather) > 0 {
		b.WriteString("\nWeather forecast:\n")
		for _, day := range enrichment.Weather {
			fmt.Fprintf(&b, "- %s: %s, %.0f to %.0f C\n",
				day.Date.Format("Jan 2"), day.Description, day.TempMin, day.TempMax)
		}
	}
	if len(enrichment.Activities) > 0 {
		b.WriteString("\nActivity suggestions:\n")
		for _, act := range enrichment.Activities {
			if act.Day > 0 {
				fmt.Fprintf(&b, "- day %d, %s: %s (%s, cost %s)\n",
					act.Day, act.Slot, act.Name, act.Duration, act.Cost)
			} else {
				fmt.Fprintf(&b, "- %s: %s (%s, cost %s)\n",
					act.Slot, act.Name, act.Duration, act.Cost)
			}
		}
	}
	if enrichment.Safety != nil {
		s := enrichment.Safety
		fmt.Fprintf(&b, "\nDestination facts: %s (%s), capital %s, currency %s\n",
			s.Country, s.Region, s.Capital, s.Currency)
		for _, tip := range s.Tips {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
	}
	return b.String()
}

// formatHistory includes a short tail of the conversation for continuity.
func formatHistory(history []core.ChatMessage) string {
	const tail = 6
	if len(history) == 0 {
		return ""
	}
	if len(history) > tail {
		history = history[len(history)-tail:]
	}

	var b strings.Builder
	b.WriteString("\nRecent conversation:\n")
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}
