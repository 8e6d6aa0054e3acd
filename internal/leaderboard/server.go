package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sadopc/hard75/internal/store"
)

const (
	defaultLimit = 50
	maxLimit     = 500
	maxBodySize  = 4 << 10
)

type listResponse struct {
	Entries []store.LeaderboardEntry `json:"entries"`
}

// Server is the leaderboard HTTP API.
type Server struct {
	scores Scores
	log    *slog.Logger
	router *gin.Engine
	now    func() time.Time
}

func NewServer(scores Scores, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		scores: scores,
		log:    logger,
		router: router,
		now:    time.Now,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/scores", s.handleSubmit)
		api.GET("/leaderboard", s.handleList)
	}

	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("leaderboard listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSubmit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var sub Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub.UserID = strings.TrimSpace(sub.UserID)
	sub.UserName = strings.TrimSpace(sub.UserName)
	if sub.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if sub.TotalScore < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "total_score must not be negative"})
		return
	}
	if sub.UserName == "" {
		sub.UserName = "Anonymous"
	}
	if sub.CompletedAt.IsZero() {
		sub.CompletedAt = s.now()
	}

	if err := s.scores.UpsertScore(sub.entry()); err != nil {
		s.log.Error("store score", "user_id", sub.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store score"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": sub.UserID, "total_score": sub.TotalScore})
}

func (s *Server) handleList(c *gin.Context) {
	limit := defaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLimit)
	}

	entries, err := s.scores.ListLeaderboard(limit)
	if err != nil {
		s.log.Error("list leaderboard", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load leaderboard"})
		return
	}
	if entries == nil {
		entries = []store.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, listResponse{Entries: entries})
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
