package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/poiesic/itinera"
	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/workflow"
)

var (
	// ErrAssistantRequired is returned when NewServer is called without an assistant.
	ErrAssistantRequired = errors.New("assistant is required")
)

// ChatRequest is one conversation turn from a client.
type ChatRequest struct {
	SessionId string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the assistant's reply for one turn.
type ChatResponse struct {
	SessionId     string   `json:"session_id"`
	Response      string   `json:"response"`
	Outcome       string   `json:"outcome"`
	Relaxed       bool     `json:"relaxed"`
	ExecutionPath []string `json:"execution_path"`
}

// IngestRequest is a batch of review documents to index.
type IngestRequest struct {
	Documents []*core.ReviewDocument `json:"documents"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the assistant over HTTP.
type Server struct {
	app       *fiber.App
	assistant *itinera.Assistant
	logger    *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server) error

// WithLogger sets the logger used by the server.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates an HTTP server around an assistant.
func NewServer(assistant *itinera.Assistant, opts ...ServerOption) (*Server, error) {
	if assistant == nil {
		return nil, ErrAssistantRequired
	}

	s := &Server{
		assistant: assistant,
		logger:    slog.Default().With("component", "api"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.app = fiber.New(fiber.Config{
		BodyLimit:             4 * 1024 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	// Middleware
	s.app.Use(recover.New())
	s.app.Use(cors.New())

	s.registerRoutes()

	return s, nil
}

// App returns the underlying fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves requests on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.health)

	v1 := s.app.Group("/api/v1")
	v1.Post("/chat", s.chat)
	v1.Delete("/sessions/:id", s.endSession)
	v1.Post("/documents", s.ingest)
}

func (s *Server) health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) chat(ctx *fiber.Ctx) error {
	var req ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "message is required")
	}

	result, err := s.assistant.Chat(ctx.Context(), req.SessionId, req.Message)
	if err != nil {
		// Parse failures produce a clarification turn, not a 500.
		if errors.Is(err, workflow.ErrParseFailure) && result != nil {
			return ctx.JSON(toChatResponse(result))
		}
		s.logger.Error("chat turn failed", "session", req.SessionId, "err", err)
		return fiber.NewError(fiber.StatusInternalServerError, "chat turn failed")
	}

	return ctx.JSON(toChatResponse(result))
}

func (s *Server) endSession(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("id")
	if err := s.assistant.EndSession(ctx.Context(), sessionID); err != nil {
		s.logger.Error("end session failed", "session", sessionID, "err", err)
		return fiber.NewError(fiber.StatusInternalServerError, "end session failed")
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (s *Server) ingest(ctx *fiber.Ctx) error {
	var req IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if len(req.Documents) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "documents are required")
	}

	pipeline, err := s.assistant.NewIngestionPipeline()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "ingestion unavailable")
	}
	defer pipeline.Release()

	if err := pipeline.Ingest(ctx.Context(), req.Documents...); err != nil {
		s.logger.Error("ingestion failed", "count", len(req.Documents), "err", err)
		return fiber.NewError(fiber.StatusInternalServerError, "ingestion failed")
	}

	return ctx.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": len(req.Documents)})
}

func (s *Server) handleError(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return ctx.Status(code).JSON(errorResponse{Error: err.Error()})
}

func toChatResponse(result *workflow.TurnResult) ChatResponse {
	return ChatResponse{
		SessionId:     result.SessionId,
		Response:      result.Response,
		Outcome:       result.Outcome.String(),
		Relaxed:       result.Relaxed,
		ExecutionPath: result.ExecutionPath,
	}
}
