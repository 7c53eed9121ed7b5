package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/poiesic/statute/answer"
	"github.com/poiesic/statute/core"
)

const requestIDHeader = "X-Request-ID"

// Asker answers questions.
type Asker interface {
	AskDetailed(ctx context.Context, question string) *answer.Answer
}

// DocumentLister lists stored documents.
type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]core.DocumentSummary, error)
}

// Server is the HTTP boundary around an Asker.
type Server struct {
	app       *fiber.App
	asker     Asker
	documents DocumentLister
	logger    *slog.Logger
}

type options struct {
	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*options)

// WithTimeouts sets the read and write timeouts of the listener.
func WithTimeouts(read, write time.Duration) Option {
	return func(o *options) {
		o.readTimeout = read
		o.writeTimeout = write
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates a server and registers its routes.
func New(asker Asker, documents DocumentLister, opts ...Option) *Server {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	s := &Server{
		asker:     asker,
		documents: documents,
		logger:    o.logger.With("component", "http-server"),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "statute",
		ErrorHandler:          errorHandler(s.logger),
		ReadTimeout:           o.readTimeout,
		WriteTimeout:          o.writeTimeout,
		DisableStartupMessage: true,
	})

	var (
		check = s.app.Group("/check")
		apiv1 = s.app.Group("/api/v1", requestID)
	)
	check.Get("/healthy", s.handleHealthy)
	apiv1.Post("/ask", s.handleAsk)
	apiv1.Get("/documents", s.handleDocuments)

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the listener, waiting for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func requestID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Locals(requestIDHeader, id)
	c.Set(requestIDHeader, id)
	return c.Next()
}

func (s *Server) handleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrBadRequest()
	}
	req.Question = strings.TrimSpace(req.Question)
	if fields := validateStruct(&req); len(fields) > 0 {
		return NewValidationError(fields)
	}

	result := s.asker.AskDetailed(c.UserContext(), req.Question)

	resp := &AskResponse{
		Answer:     result.Text,
		Status:     string(result.Status),
		Sources:    []Source{},
		RequestID:  c.Locals(requestIDHeader).(string),
		Timestamp:  time.Now().UTC(),
		DurationMs: result.Duration.Milliseconds(),
	}
	if r := result.Resolution; r != nil {
		resp.Resolution = r.Kind.String()
		resp.Label = r.Label
		for i, a := range r.Articles {
			src := Source{DocumentID: a.DocumentID, Label: a.Label}
			if i < len(r.Scores) {
				src.Score = r.Scores[i]
			}
			resp.Sources = append(resp.Sources, src)
		}
	} else {
		resp.Resolution = "empty"
	}

	s.logger.Info("question answered", "request_id", resp.RequestID, "status", resp.Status, "resolution", resp.Resolution)
	return c.JSON(resp)
}

func (s *Server) handleDocuments(c *fiber.Ctx) error {
	docs, err := s.documents.ListDocuments(c.UserContext())
	if err != nil {
		return err
	}

	resp := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		resp[i] = DocumentResponse{
			DocumentID: d.DocumentID,
			Articles:   d.Articles,
			InsertedAt: d.InsertedAt,
		}
	}
	return c.JSON(resp)
}
