// Package api serves claimer status over HTTP and accepts injected screen
// events.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mj1618/luckydog/internal/classifier"
	"github.com/mj1618/luckydog/internal/logging"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/mj1618/luckydog/internal/report"
	"github.com/rs/zerolog"
)

// Server is the HTTP front of a running claimer.
type Server struct {
	router *gin.Engine
	stats  *report.Stats
	serial string
	events chan platform.ScreenEvent
	log    zerolog.Logger

	mu  sync.RWMutex
	cls classifier.Classifier
}

var _ platform.EventSource = (*Server)(nil)

// NewServer builds the router. stats may be nil.
func NewServer(stats *report.Stats, cls classifier.Classifier, serial string) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		router: gin.New(),
		stats:  stats,
		serial: serial,
		events: make(chan platform.ScreenEvent, 16),
		log:    logging.For("api"),
		cls:    cls,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/stats", s.getStats)
		api.POST("/events", s.injectEvent)
		api.POST("/classify", s.classify)
	}
}

// Handler exposes the router for tests and custom listeners.
func (s *Server) Handler() http.Handler { return s.router }

// SetClassifier swaps the classifier after a config reload.
func (s *Server) SetClassifier(c classifier.Classifier) {
	s.mu.Lock()
	s.cls = c
	s.mu.Unlock()
}

// Events returns the stream of events posted to /api/v1/events.
func (s *Server) Events(ctx context.Context) (<-chan platform.ScreenEvent, error) {
	return s.events, nil
}

// Run listens on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

// eventRequest is the body of /events and /classify.
type eventRequest struct {
	Package      string                 `json:"package" binding:"required"`
	Type         string                 `json:"type"`
	Class        string                 `json:"class"`
	Notification *platform.Notification `json:"notification"`
}

func (r eventRequest) event() (platform.ScreenEvent, error) {
	typ, err := platform.ParseEventType(r.Type)
	if err != nil {
		return platform.ScreenEvent{}, err
	}
	return platform.ScreenEvent{
		Package:      r.Package,
		Type:         typ,
		ClassName:    r.Class,
		Notification: r.Notification,
		Time:         time.Now(),
	}, nil
}

func bindEvent(c *gin.Context) (platform.ScreenEvent, bool) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return platform.ScreenEvent{}, false
	}
	ev, err := req.event()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid event type",
			"details": err.Error(),
		})
		return platform.ScreenEvent{}, false
	}
	return ev, true
}

func (s *Server) healthCheck(c *gin.Context) {
	resp := gin.H{"status": "healthy", "serial": s.serial}
	if s.stats != nil {
		resp["uptime"] = s.stats.Snapshot().Uptime
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getStats(c *gin.Context) {
	if s.stats == nil {
		c.JSON(http.StatusOK, report.Snapshot{})
		return
	}
	c.JSON(http.StatusOK, s.stats.Snapshot())
}

func (s *Server) injectEvent(c *gin.Context) {
	ev, ok := bindEvent(c)
	if !ok {
		return
	}
	select {
	case s.events <- ev:
		c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "Event queued"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Event queue full"})
	}
}

func (s *Server) classify(c *gin.Context) {
	ev, ok := bindEvent(c)
	if !ok {
		return
	}
	s.mu.RLock()
	cat := s.cls.Classify(ev)
	s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{"category": cat.String()})
}
