// Package server exposes the conversational core over a thin HTTP surface.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	coreerrors "github.com/quillhq/concierge/internal/errors"
	"github.com/quillhq/concierge/internal/observability"
	"github.com/quillhq/concierge/internal/profile"
	"github.com/quillhq/concierge/plugin/ai/chatbot"
)

// chatRateLimit bounds requests per second per client IP.
const chatRateLimit = 20

// ChatRequest is the POST /api/v1/chat body. An empty session_id starts
// a new session.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Message string `json:"message"`
}

// Server hosts the chat API.
type Server struct {
	echoServer *echo.Echo
	engine     *chatbot.Engine
	profile    *profile.Profile
}

// NewServer builds the echo instance with routes and middleware.
func NewServer(p *profile.Profile, engine *chatbot.Engine) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(chatRateLimit)))

	s := &Server{
		echoServer: e,
		engine:     engine,
		profile:    p,
	}

	e.GET("/healthz", s.handleHealth)

	g := e.Group("/api/v1")
	g.POST("/chat", s.handleChat)
	g.DELETE("/sessions/:id", s.handleEvictSession)
	g.DELETE("/qa/cache", s.handleInvalidateAnswerCache)

	return s
}

// handleChat runs one conversational turn.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "malformed request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "message is required"})
	}

	reqCtx := observability.NewRequestContext(slog.Default(), req.SessionID)
	ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)

	reply, err := s.engine.HandleTurn(ctx, req.SessionID, req.Message)
	if err != nil {
		reqCtx.Error("turn failed", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}

	return c.JSON(http.StatusOK, reply)
}

// handleEvictSession drops a session's state.
func (s *Server) handleEvictSession(c echo.Context) error {
	id := c.Param("id")
	if !s.engine.Evict(id) {
		return c.JSON(http.StatusNotFound, errorResponse{Message: coreerrors.SessionNotFound(id).Message})
	}
	return c.NoContent(http.StatusNoContent)
}

// handleInvalidateAnswerCache flushes cached QA answers. Operators call
// this after re-indexing the document corpus.
func (s *Server) handleInvalidateAnswerCache(c echo.Context) error {
	if err := s.engine.InvalidateAnswers(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "cache invalidation failed"})
	}
	slog.Info("qa answer cache invalidated")
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": s.profile.Version})
}

// Start blocks serving HTTP until Shutdown or failure.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	slog.Info("http server listening", "addr", addr)

	if err := s.echoServer.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echoServer.Shutdown(ctx)
}
