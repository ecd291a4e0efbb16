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
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/itinera/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyCompletion is returned when the chat model produces no reply.
var ErrEmptyCompletion = errors.New("openai: model returned an empty completion")

// ResponseGenerator implements ai.ResponseGenerator using OpenAI-compatible chat APIs.
type ResponseGenerator struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newResponseGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newResponseGenerator(config *ai.Config) (*ResponseGenerator, error) {
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

	return &ResponseGenerator{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewResponseGenerator creates a response generator using the provided configuration.
//
// Returns ai.ResponseGenerator interface to enforce abstraction.
func NewResponseGenerator(config *ai.Config) (ai.ResponseGenerator, error) {
	return newResponseGenerator(config)
}

// GenerateResponse composes the assistant's reply from the turn's state view.
// A fully satisfied request closes the turn; NeedsFeedback is set when the
// reply presents options the traveler still needs to pick from or refine,
// such as a relaxed search or an intent missing stay dates.
func (g *ResponseGenerator) GenerateResponse(ctx context.Context, view *ai.StateView) (*ai.GeneratedResponse, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(generatePromptTemplate)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildGenerateContent(view))},
		},
	}

	response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(g.temperature))
	if err != nil {
		g.logger.Error("failed to generate response", "err", err)
		return nil, err
	}
	if len(response.Choices) < 1 {
		return nil, ErrEmptyCompletion
	}

	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return nil, ErrEmptyCompletion
	}

	g.logger.Debug("generated response",
		"length", len(text),
		"candidates", len(view.Candidates))

	return &ai.GeneratedResponse{
		Text:          text,
		NeedsFeedback: len(view.Candidates) > 0 && !view.RequestSatisfied(),
	}, nil
}
