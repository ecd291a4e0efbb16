package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "qwen2.5:3b", cfg.ChatModel)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.InDelta(t, 0.3, cfg.Temperature, 1e-9)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		// Should have default values
		assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.ChatHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithChatHost("http://chat:9090/v1"),
			WithEmbeddingHost("http://embed:8080/v1"),
		)

		assert.Equal(t, "http://chat:9090/v1", cfg.ChatHost)
		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithChatModel("gpt-4o-mini"),
			WithEmbeddingModel("text-embedding-3-small"),
		)

		assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	})

	t.Run("with custom temperature", func(t *testing.T) {
		cfg := NewConfig(WithTemperature(0.7))

		assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name          string
		chatHost      string
		embedHost     string
		wantChat      string
		wantEmbedding string
	}{
		{
			name:          "already has /v1",
			chatHost:      "http://localhost:11434/v1",
			embedHost:     "http://localhost:11434/v1",
			wantChat:      "http://localhost:11434/v1",
			wantEmbedding: "http://localhost:11434/v1",
		},
		{
			name:          "missing /v1",
			chatHost:      "http://localhost:11434",
			embedHost:     "http://localhost:11434",
			wantChat:      "http://localhost:11434/v1",
			wantEmbedding: "http://localhost:11434/v1",
		},
		{
			name:          "has trailing slash",
			chatHost:      "http://localhost:11434/",
			embedHost:     "http://localhost:11434/",
			wantChat:      "http://localhost:11434/v1",
			wantEmbedding: "http://localhost:11434/v1",
		},
		{
			name:          "empty hosts",
			chatHost:      "",
			embedHost:     "",
			wantChat:      "",
			wantEmbedding: "",
		},
		{
			name:          "different formats",
			chatHost:      "http://chat:9090/v1",
			embedHost:     "http://embed:8080",
			wantChat:      "http://chat:9090/v1",
			wantEmbedding: "http://embed:8080/v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				ChatHost:      tt.chatHost,
				EmbeddingHost: tt.embedHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.wantChat, cfg.ChatHost)
			assert.Equal(t, tt.wantEmbedding, cfg.EmbeddingHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ChatHost:       "http://localhost:11434",
			EmbeddingHost:  "http://localhost:11434",
			ChatModel:      "qwen2.5:3b",
			EmbeddingModel: "embeddinggemma",
			Temperature:    0.3,
		}
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
		// Validate normalizes hosts as a side effect.
		assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	})

	t.Run("missing chat host", func(t *testing.T) {
		cfg := valid()
		cfg.ChatHost = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := valid()
		cfg.EmbeddingHost = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing chat model", func(t *testing.T) {
		cfg := valid()
		cfg.ChatModel = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := valid()
		cfg.EmbeddingModel = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("temperature out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Temperature = 2.5
		assert.Error(t, cfg.Validate())
	})
}
