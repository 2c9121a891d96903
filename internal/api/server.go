// Package api exposes the assistant core over HTTP. The routes are the
// Go-native stand-in for the upstream UI layer: report analysis, report Q&A
// and case chat.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medreport-assistant-server/internal/chat"
	"github.com/medreport-assistant-server/internal/domain"
	"github.com/medreport-assistant-server/internal/middleware"
	"github.com/medreport-assistant-server/internal/reports"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	analyzer      domain.ReportAnalyzer
	store         reports.Store
	chatStore     *chat.Store
	responder     *chat.Responder
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(
	configManager domain.ConfigManager,
	analyzer domain.ReportAnalyzer,
	store reports.Store,
	chatStore *chat.Store,
	responder *chat.Responder,
	logger *logrus.Logger,
) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())

	server := &Server{
		configManager: configManager,
		analyzer:      analyzer,
		store:         store,
		chatStore:     chatStore,
		responder:     responder,
		logger:        logger,
		router:        router,
	}

	server.setupRoutes()

	return server
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/reports/analyze", s.handleAnalyzeReport)
		v1.POST("/reports/question", s.handleAnswerQuestion)
		v1.GET("/reports", s.handleListReports)

		v1.POST("/chat/rooms", s.handleCreateRoom)
		v1.GET("/chat/rooms", s.handleListRooms)
		v1.GET("/chat/rooms/:id/messages", s.handleRoomMessages)
		v1.POST("/chat/rooms/:id/messages", s.handlePostMessage)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

type analyzeRequest struct {
	Filename string `json:"filename" binding:"required"`
	// Text may be empty; uninterpretable input still yields the fixed
	// offline message rather than a request error.
	Text string `json:"text"`
}

// handleAnalyzeReport ingests extracted report text and returns its summary.
func (s *Server) handleAnalyzeReport(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}

	summary, err := s.analyzer.AnalyzeReport(c.Request.Context(), req.Filename, req.Text)
	if err != nil {
		s.logger.WithError(err).Error("report analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

type questionRequest struct {
	Question string `json:"question" binding:"required"`
}

// handleAnswerQuestion answers a question against the accumulated reports.
func (s *Server) handleAnswerQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	answer, err := s.analyzer.AnswerQuestion(c.Request.Context(), req.Question)
	if err != nil {
		s.logger.WithError(err).Error("question answering failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "question answering failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// handleListReports returns every stored report record.
func (s *Server) handleListReports(c *gin.Context) {
	records, err := s.store.All(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": records, "count": len(records)})
}

type createRoomRequest struct {
	Creator     string `json:"creator"`
	Description string `json:"description"`
}

// handleCreateRoom creates a case discussion room.
func (s *Server) handleCreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Tolerate an empty body; defaults apply.
		req = createRoomRequest{}
	}

	room, err := s.chatStore.CreateRoom(c.Request.Context(), req.Creator, req.Description)
	if err != nil {
		s.logger.WithError(err).Error("failed to create chat room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// handleListRooms returns all case discussion rooms.
func (s *Server) handleListRooms(c *gin.Context) {
	rooms, err := s.chatStore.Rooms(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list chat rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// handleRoomMessages returns the message history of a room.
func (s *Server) handleRoomMessages(c *gin.Context) {
	messages, err := s.chatStore.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, chat.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		s.logger.WithError(err).Error("failed to read chat messages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type postMessageRequest struct {
	User    string `json:"user" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// handlePostMessage records a user message and returns the assistant reply.
func (s *Server) handlePostMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user and content are required"})
		return
	}

	roomID := c.Param("id")
	if _, err := s.chatStore.AddMessage(c.Request.Context(), roomID, req.User, req.Content); err != nil {
		if errors.Is(err, chat.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		s.logger.WithError(err).Error("failed to record message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record message"})
		return
	}

	reply, err := s.responder.Respond(c.Request.Context(), roomID, req.Content)
	if err != nil {
		s.logger.WithError(err).Error("assistant reply failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assistant reply failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Length")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
