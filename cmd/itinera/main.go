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

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/itinera"
	"github.com/poiesic/itinera/ai"
	"github.com/poiesic/itinera/ai/openai"
	"github.com/poiesic/itinera/api"
	"github.com/poiesic/itinera/core"
)

func main() {
	app := &cli.App{
		Name:  "itinera",
		Usage: "Conversational travel-planning assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "chat",
				Usage:  "Interactive chat session on the terminal",
				Action: chatCommand,
				Flags:  assistantFlags(),
			},
			{
				Name:   "serve",
				Usage:  "Serve the assistant over HTTP",
				Action: serveCommand,
				Flags: append(assistantFlags(),
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Address to listen on",
						Value: ":8080",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func assistantFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "chat-host",
			Usage: "Chat completion service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL (defaults to chat-host if not specified)",
		},
		&cli.StringFlag{
			Name:     "chat-model",
			Usage:    "Chat completion model name",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "embedding-model",
			Usage:    "Embedding model name",
			Required: true,
		},
		&cli.Float64Flag{
			Name:  "temperature",
			Usage: "Sampling temperature for response generation",
			Value: 0.7,
		},
		&cli.BoolFlag{
			Name:  "no-enrichment",
			Usage: "Disable enrichment providers (weather, prices, currency, safety, activities)",
		},
		&cli.BoolFlag{
			Name:  "cross-rerank",
			Usage: "Rerank candidates with the chat model instead of the lexical strategy",
		},
	}
}

func openAssistant(c *cli.Context) (*itinera.Assistant, error) {
	chatHost := c.String("chat-host")
	embeddingHost := c.String("embedding-host")
	if embeddingHost == "" {
		embeddingHost = chatHost
	}

	aiConfig := ai.NewConfig(
		ai.WithChatHost(chatHost),
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithTemperature(c.Float64("temperature")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []itinera.AssistantOption{itinera.WithAIConfig(aiConfig)}
	if c.Bool("no-enrichment") {
		opts = append(opts, itinera.WithoutEnrichment())
	}
	if c.Bool("cross-rerank") {
		scorer, err := openai.NewRelevanceScorer(aiConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create relevance scorer: %w", err)
		}
		opts = append(opts, itinera.WithCrossReranker(scorer))
	}

	assistant, err := itinera.NewAssistant(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open assistant: %w", err)
	}
	return assistant, nil
}

func chatCommand(c *cli.Context) error {
	assistant, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer assistant.Close()

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	sessionID := ""

	fmt.Fprintln(os.Stderr, "Where would you like to go? (ctrl-d to quit)")

	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}

		result, err := assistant.Chat(ctx, sessionID, message)
		if err != nil && result == nil {
			return fmt.Errorf("chat turn failed: %w", err)
		}
		sessionID = result.SessionId

		fmt.Println(result.Response)

		if result.Outcome == core.OutcomeDone && isFarewell(message) {
			break
		}
	}

	return scanner.Err()
}

func isFarewell(message string) bool {
	lower := strings.ToLower(message)
	for _, word := range []string{"bye", "goodbye", "thanks", "thank you"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func serveCommand(c *cli.Context) error {
	assistant, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer assistant.Close()

	server, err := api.NewServer(assistant)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Shut down cleanly on interrupt so live sessions get persisted.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		if err := server.Shutdown(); err != nil {
			slog.Error("server shutdown failed", "err", err)
		}
	}()

	if err := server.Listen(c.String("listen")); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
