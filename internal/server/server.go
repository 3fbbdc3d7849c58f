// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package server exposes the record services over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dacolabs/records/internal/logging"
	"github.com/dacolabs/records/internal/records"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// ShutdownTimeout bounds graceful shutdown; open connections are dropped after it.
const ShutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// Development exposes internal error messages in 500 responses.
	Development bool
	Version     string
	// Missing lists collections without a configured id, for /health.
	Missing []string
	Logger  *log.Logger
	Now     func() time.Time
}

// Server serves the collections of a registry.
type Server struct {
	app      *fiber.App
	registry *records.Registry
	opts     Options
	logger   *log.Logger
}

// problem is the body of responses that are not produced by a record operation.
type problem struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}

// New creates the fiber app and registers every route.
func New(registry *records.Registry, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{registry: registry, opts: opts, logger: opts.Logger}

	s.app = fiber.New(fiber.Config{
		AppName:               "records",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	s.app.Use(cors.New())
	s.app.Use(s.logRequests)
	s.app.Use(recover.New())

	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Listen(addr) }()

	s.logger.Info("server listening", "addr", addr, "collections", len(s.registry.Names()))
	for _, name := range s.registry.Names() {
		s.logger.Info("endpoint", "path", "/api/"+name)
	}
	if len(s.opts.Missing) > 0 {
		s.logger.Warn("some collection ids are not configured", "collections", s.opts.Missing)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", ShutdownTimeout)
	if err := s.app.ShutdownWithTimeout(ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// logRequests logs one line per request after the error handler has run,
// so the logged status is the one sent to the client.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	kv := []any{
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start).Round(time.Microsecond),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	}
	switch {
	case status >= fiber.StatusInternalServerError:
		s.logger.Error("request", kv...)
	case status >= fiber.StatusBadRequest:
		s.logger.Warn("request", kv...)
	default:
		s.logger.Info("request", kv...)
	}
	return nil
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		if fe.Code == fiber.StatusNotFound {
			return s.notFound(c)
		}
		return c.Status(fe.Code).JSON(problem{Error: fe.Message, Path: c.Path()})
	}

	s.logger.Error("unhandled error", "path", c.Path(), "err", err)
	body := problem{Error: "internal server error"}
	if s.opts.Development {
		body.Message = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}

func (s *Server) notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(problem{Error: "endpoint not found", Path: c.Path()})
}

// respond writes a successful envelope.
func respond(c *fiber.Ctx, status int, env records.Envelope) error {
	return c.Status(status).JSON(env)
}

// fail writes the envelope of a record operation error.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(records.StatusOf(err)).JSON(records.Fail(err))
}

// badRequest writes a 400 envelope for a malformed request.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(records.Envelope{Error: msg})
}
