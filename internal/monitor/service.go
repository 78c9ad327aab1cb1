package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gametrack/gametrack/internal/config"
	"github.com/gametrack/gametrack/internal/engine"
)

// Service drives the session engine at the configured poll cadence. It is
// the single writer of entity state; everything else only reads Status.
type Service struct {
	config   *config.Config
	engine   *engine.Engine
	stopChan chan struct{}
	running  bool
}

func NewService(cfg *config.Config, eng *engine.Engine) *Service {
	return &Service{
		config:   cfg,
		engine:   eng,
		stopChan: make(chan struct{}),
		running:  false,
	}
}

// Start runs the reconcile loop until the context is cancelled or Stop is
// called, then drains every active session through the recorder.
func (s *Service) Start(ctx context.Context) error {
	if s.running {
		return fmt.Errorf("monitor is already running")
	}

	s.running = true
	log.Printf("Starting monitor with %v poll interval", s.config.Monitor.PollInterval)

	ticker := time.NewTicker(s.config.Monitor.PollInterval)
	defer ticker.Stop()

	s.engine.Tick()

	for {
		select {
		case <-ctx.Done():
			log.Println("Monitor stopped by context")
			s.engine.Shutdown()
			s.running = false
			return ctx.Err()

		case <-s.stopChan:
			log.Println("Monitor stopped")
			s.engine.Shutdown()
			s.running = false
			return nil

		case <-ticker.C:
			s.engine.Tick()
		}
	}
}

func (s *Service) Stop() {
	if s.running {
		close(s.stopChan)
	}
}

func (s *Service) IsRunning() bool {
	return s.running
}

// Engine exposes the engine for read-only status consumers.
func (s *Service) Engine() *engine.Engine {
	return s.engine
}
