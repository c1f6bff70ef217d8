// Package server exposes the pricer over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/metrics"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Server is the REST front end of the pricer.
type Server struct {
	engine  *gin.Engine
	metrics *metrics.Metrics
}

// New builds the router. m must not be nil.
func New(m *metrics.Metrics) *Server {
	s := &Server{engine: gin.New(), metrics: m}

	s.engine.Use(s.requestLogger(), gin.CustomRecovery(recovery))

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Unix()})
	})
	s.engine.GET("/metrics", gin.WrapH(m.Handler()))

	api := s.engine.Group("/api/v1")
	{
		api.POST("/price", s.handlePrice)
		api.POST("/implied-vol", s.handleImpliedVol)
	}
	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting REST server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Infof("shutting down REST server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := c.Writer.Status()
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()

		logger.Debugf("request_id=%s %s %s status=%d duration=%s",
			requestID, c.Request.Method, c.Request.URL.Path, code, time.Since(start))
	}
}

func recovery(c *gin.Context, recovered any) {
	requestID, _ := c.Get(requestIDKey)
	logger.Errorf("request_id=%v panic: %v", requestID, recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":      "internal server error",
		"request_id": requestID,
	})
}
