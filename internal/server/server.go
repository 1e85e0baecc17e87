// Package server provides the HTTP server for the application.
// It owns the background services (log ingestion, queue reconciliation,
// progress tracking, scheduling) and handles graceful shutdown.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pontohub/pontohub/internal/api/router"
	"github.com/pontohub/pontohub/internal/config"
	"github.com/pontohub/pontohub/internal/logbuf"
	"github.com/pontohub/pontohub/internal/progress"
	"github.com/pontohub/pontohub/internal/reconcile"
	"github.com/pontohub/pontohub/internal/remote"
	"github.com/pontohub/pontohub/internal/scheduler"
	"github.com/pontohub/pontohub/internal/store"
	"github.com/pontohub/pontohub/internal/submit"
	"github.com/pontohub/pontohub/pkg/logger"
)

// HTTP server timeout configuration
const (
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second
	defaultStopTimeout     = 5 * time.Second
)

// Server represents the HTTP server and its background services
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	router     *gin.Engine

	remote     *remote.Client
	buffer     *logbuf.Buffer
	ingestor   *logbuf.Ingestor
	reconciler *reconcile.Reconciler
	tracker    *progress.Tracker
	scheduler  *scheduler.Service
	cleanup    *store.ScheduleCleanupService

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new server instance wired to the given store
func New(cfg *config.Config, st store.Store) *Server {
	// Set Gin mode based on debug flag
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	ctx, cancel := context.WithCancel(context.Background())

	remoteClient := remote.New(cfg.QueueService)
	buffer := logbuf.NewBuffer(cfg.Buffer.Capacity, cfg.Buffer.DedupCapacity)
	ingestor := logbuf.NewIngestor(ctx, buffer, remoteClient,
		time.Duration(cfg.Polling.LogInterval)*time.Second)
	reconciler := reconcile.New(ctx, remoteClient,
		time.Duration(cfg.Polling.QueueInterval)*time.Second)
	tracker := progress.NewTracker(buffer, cfg.Buffer.CurrentActionWindow)
	submitClient := submit.New(remoteClient,
		time.Duration(cfg.Polling.WatchInterval)*time.Second)

	scheduleStore := st.Schedule()
	if cfg.Schedules.RemoteSync {
		scheduleStore = store.NewSyncedScheduleStore(scheduleStore, remoteClient)
	}
	sched := scheduler.New(ctx, scheduleStore, remoteClient)
	cleanup := store.NewScheduleCleanupService(st.Schedule(), cfg.Schedules.RetentionDays)

	srv := &Server{
		cfg:        cfg,
		router:     r,
		remote:     remoteClient,
		buffer:     buffer,
		ingestor:   ingestor,
		reconciler: reconciler,
		tracker:    tracker,
		scheduler:  sched,
		cleanup:    cleanup,
		ctx:        ctx,
		cancel:     cancel,
	}

	router.Setup(r, router.Deps{
		Config:     cfg,
		Buffer:     buffer,
		Reconciler: reconciler,
		Tracker:    tracker,
		Remote:     remoteClient,
		Submit:     submitClient,
		Schedules:  scheduleStore,
		Scheduler:  sched,
	})

	return srv
}

// Start starts the background services and the HTTP server
func (s *Server) Start() error {
	s.tracker.Start()
	s.ingestor.Start()
	s.reconciler.Start()

	if s.cfg.Schedules.Enabled {
		if err := s.scheduler.Start(); err != nil {
			return err
		}
		if err := s.cleanup.Start(); err != nil {
			return err
		}
	} else {
		logger.Info("Recurrence scheduler disabled by configuration")
	}

	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Address(),
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	logger.Info("Starting HTTP server",
		zap.String("address", s.cfg.Server.Address()),
		zap.Bool("debug", s.cfg.Server.Debug),
	)

	// Start server in goroutine
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	return nil
}

// WaitForShutdown waits for shutdown signal and gracefully stops the server
// First signal triggers graceful shutdown, second signal forces immediate exit
func (s *Server) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("Received shutdown signal, starting graceful shutdown (press Ctrl+C again to force exit)",
		zap.String("signal", sig.String()))

	go func() {
		sig := <-quit
		logger.Warn("Received second shutdown signal, forcing exit",
			zap.String("signal", sig.String()))
		os.Exit(1)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	s.stopServices()

	logger.Info("Server stopped")
}

// Stop stops the server immediately
func (s *Server) Stop() error {
	s.stopServices()

	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultStopTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// stopServices shuts down the background services in dependency order
func (s *Server) stopServices() {
	if s.cfg.Schedules.Enabled {
		s.scheduler.Stop()
		s.cleanup.Stop()
	}
	s.reconciler.Stop()
	s.ingestor.Stop()
	s.tracker.Stop()
	s.cancel()
}

// Router returns the underlying Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}
