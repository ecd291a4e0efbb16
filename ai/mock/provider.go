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


package mock

import "github.com/poiesic/itinera/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock parser, generator and embedder instances.
type MockProvider struct {
	parser    *MockQueryParser
	generator *MockResponseGenerator
	embedder  *MockEmbedder
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockParser()/GetMockGenerator()/GetMockEmbedder() to access concrete
// types for test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		parser:    NewMockQueryParser(),
		generator: NewMockResponseGenerator(),
		embedder:  NewMockEmbedder(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(parser *MockQueryParser, generator *MockResponseGenerator, embedder *MockEmbedder) ai.Provider {
	return &MockProvider{
		parser:    parser,
		generator: generator,
		embedder:  embedder,
	}
}

// QueryParser returns the mock parser.
func (p *MockProvider) QueryParser() ai.QueryParser {
	return p.parser
}

// ResponseGenerator returns the mock generator.
func (p *MockProvider) ResponseGenerator() ai.ResponseGenerator {
	return p.generator
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockParser returns the underlying mock parser for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockParser() *MockQueryParser {
	return p.parser
}

// GetMockGenerator returns the underlying mock generator for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockGenerator() *MockResponseGenerator {
	return p.generator
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}
