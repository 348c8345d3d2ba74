// Package server is the HTTP surface over the receiver: health, metrics and
// the last-seen record per message.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/danmuck/ubxctl/internal/observability"
	"github.com/danmuck/ubxctl/internal/receiver"
)

var startedAt = time.Now()

type Server struct {
	recv   *receiver.Receiver
	router *gin.Engine
}

// New builds the gin engine with recovery, request logging, metrics and
// CORS middleware.
func New(recv *receiver.Receiver, logger zerolog.Logger, corsOrigins []string) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetricsMiddleware())
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	s := &Server{recv: recv, router: r}
	s.registerRoutes()
	return s
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
