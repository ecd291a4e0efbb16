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
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/itinera/ai"
	"github.com/poiesic/itinera/ai/rules"
	"github.com/poiesic/itinera/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// parseAttempts bounds retries on malformed JSON before falling back.
const parseAttempts = 3

const fallbackStayNights = 3

// QueryParser implements ai.QueryParser using OpenAI-compatible chat APIs,
// with the deterministic rules parser as a fallback.
type QueryParser struct {
	client   llms.Model
	fallback ai.QueryParser
	logger   *slog.Logger
}

// parsedQuery is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type parsedQuery struct {
	Destination string   `json:"destination"`
	CheckIn     string   `json:"check_in_date"`
	CheckOut    string   `json:"check_out_date"`
	PartySize   int      `json:"traveler_count"`
	BudgetMax   float64  `json:"budget_max"`
	Atmosphere  []string `json:"atmosphere_keywords"`
	Amenities   []string `json:"amenity_requirements"`
}

// newQueryParser is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newQueryParser(config *ai.Config) (*QueryParser, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &QueryParser{
		client:   client,
		fallback: rules.NewParser(),
		logger:   slog.Default().With("component", "openai-parser"),
	}, nil
}

// NewQueryParser creates a query parser using the provided configuration.
//
// Returns ai.QueryParser interface to enforce abstraction.
func NewQueryParser(config *ai.Config) (ai.QueryParser, error) {
	return newQueryParser(config)
}

// ParseQuery extracts a structured travel query with the chat model in JSON
// mode. Model transport errors and persistently malformed output both route
// through the rules fallback, so parsing only fails outright when the rules
// cannot extract anything either.
func (p *QueryParser) ParseQuery(ctx context.Context, utterance string, now time.Time) (*core.TravelQuery, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildParsePrompt(now))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(utterance)},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result parsedQuery
	var lastErr error
	for attempt := 0; attempt < parseAttempts; attempt++ {
		response, err := p.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			p.logger.Warn("chat model unavailable, using rules fallback", "attempt", attempt+1, "err", err)
			return p.fallback.ParseQuery(ctx, utterance, now)
		}

		if len(response.Choices) < 1 {
			p.logger.Debug("no choices returned from model")
			return p.fallback.ParseQuery(ctx, utterance, now)
		}

		responseText := repairJSON(stripFences(response.Choices[0].Content))
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			p.logger.Warn("error parsing model response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		p.logger.Error("model output stayed malformed after retries, using rules fallback", "err", lastErr)
		return p.fallback.ParseQuery(ctx, utterance, now)
	}

	return p.toTravelQuery(result), nil
}

// toTravelQuery converts the wire form into the domain query, resolving
// dates and discarding whatever does not parse.
func (p *QueryParser) toTravelQuery(wire parsedQuery) *core.TravelQuery {
	query := &core.TravelQuery{
		Destination: strings.TrimSpace(wire.Destination),
		PartySize:   wire.PartySize,
		BudgetMax:   wire.BudgetMax,
		Atmosphere:  normalizeTerms(wire.Atmosphere),
		Amenities:   normalizeTerms(wire.Amenities),
	}

	if checkIn, err := time.Parse("2006-01-02", wire.CheckIn); err == nil {
		query.CheckIn = checkIn
		query.CheckOut = checkIn.AddDate(0, 0, fallbackStayNights)
		if checkOut, err := time.Parse("2006-01-02", wire.CheckOut); err == nil && checkOut.After(checkIn) {
			query.CheckOut = checkOut
		}
	}
	return query
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			out = append(out, term)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
