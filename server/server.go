package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chatbridge/go-wa-gateway/internal/config"
	"github.com/chatbridge/go-wa-gateway/pairing"
	"github.com/chatbridge/go-wa-gateway/sessions"
)

// SessionService is the slice of the supervisor the HTTP layer uses.
type SessionService interface {
	CreateSession(ctx context.Context, id, webhookURL string) (pairing.Result, error)
	SendText(ctx context.Context, id, to, text string) error
	Teardown(ctx context.Context, id string) error
}

type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	service  SessionService
	registry sessions.Registry
	log      zerolog.Logger
}

func New(config config.Config, service SessionService, registry sessions.Registry, logger zerolog.Logger) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		service:  service,
		registry: registry,
		log:      logger.With().Str("component", "server").Logger(),
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
