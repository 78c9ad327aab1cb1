package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gametrack/gametrack/internal/config"
	"github.com/gametrack/gametrack/internal/database"
	"github.com/gametrack/gametrack/internal/engine"
)

type Server struct {
	config  *config.Config
	handler *Handler
	server  *http.Server
}

func NewServer(cfg *config.Config, repo *database.Repository, eng *engine.Engine) *Server {
	handler := NewHandler(repo, eng)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		config:  cfg,
		handler: handler,
		server:  httpServer,
	}
}

func (s *Server) Start() error {
	log.Printf("Starting web server on http://%s", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}
