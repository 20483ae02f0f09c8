package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zaynkorai/research-agents-gograph/agent"
)

// Runner answers one research question.
type Runner interface {
	Run(ctx context.Context, researchQuestion string) (agent.Result, error)
}

type Server struct {
	Engine *gin.Engine
	runner Runner
	logger *zap.Logger
}

func NewServer(runner Runner, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		Engine: gin.New(),
		runner: runner,
		logger: logger,
	}
	s.Engine.Use(gin.Recovery(), s.requestLogger())
	s.Engine.POST("/chat", s.handleChat)
	s.Engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) handleChat(c *gin.Context) {
	var history ChatHistory
	if err := c.ShouldBindJSON(&history); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}
	if len(history.Messages) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "No messages provided"})
		return
	}
	question, err := agent.GetResearchTopic(history.toMessages())
	if err != nil || strings.TrimSpace(question) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "No user message found in history"})
		return
	}

	result, err := s.runner.Run(c.Request.Context(), question)
	if result.RunID != "" {
		c.Header("X-Run-ID", result.RunID)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if agent.ErrorIsHard(err) {
			status = http.StatusBadGateway
		}
		s.logger.Error("Research run failed", zap.String("run_id", result.RunID), zap.Error(err))
		c.JSON(status, ErrorResponse{Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Response: result.Text()})
}

func (s *Server) Start(port string) error {
	if port == "" {
		port = "8123"
	}
	addr := fmt.Sprintf(":%s", port)
	s.logger.Info("Server starting", zap.String("addr", addr))
	if err := s.Engine.Run(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
