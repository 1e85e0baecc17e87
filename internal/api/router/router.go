// Package router sets up the API routes for the application.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pontohub/pontohub/consts"
	"github.com/pontohub/pontohub/internal/api/handler"
	"github.com/pontohub/pontohub/internal/api/middleware"
	"github.com/pontohub/pontohub/internal/config"
	"github.com/pontohub/pontohub/internal/logbuf"
	"github.com/pontohub/pontohub/internal/progress"
	"github.com/pontohub/pontohub/internal/reconcile"
	"github.com/pontohub/pontohub/internal/remote"
	"github.com/pontohub/pontohub/internal/scheduler"
	"github.com/pontohub/pontohub/internal/store"
	"github.com/pontohub/pontohub/internal/submit"
)

// Deps holds the services the routes are built on
type Deps struct {
	Config     *config.Config
	Buffer     *logbuf.Buffer
	Reconciler *reconcile.Reconciler
	Tracker    *progress.Tracker
	Remote     *remote.Client
	Submit     *submit.Client
	Schedules  store.ScheduleStore
	Scheduler  *scheduler.Service
}

// Setup configures all API routes
func Setup(r *gin.Engine, deps Deps) {
	cfg := deps.Config

	// Apply global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))

	// Health check endpoint (public)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"version": consts.Version,
		})
	})

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")

	// Log buffer routes
	logsHandler := handler.NewLogsHandler(deps.Buffer)
	v1.GET("/logs", logsHandler.List)
	v1.DELETE("/logs", logsHandler.Clear)

	// Queue routes
	queueHandler := handler.NewQueueHandler(deps.Reconciler, deps.Remote)
	queue := v1.Group("/queue")
	{
		queue.GET("", queueHandler.Get)
		queue.GET("/tasks/:id/position", queueHandler.Position)
		queue.DELETE("/tasks/:id", queueHandler.DeletePending)
		queue.DELETE("/history", queueHandler.ClearHistory)
	}

	// Submission routes
	submissionHandler := handler.NewSubmissionHandler(deps.Submit, deps.Remote)
	submissions := v1.Group("/submissions")
	{
		submissions.POST("", submissionHandler.Create)
		submissions.GET("/:id", submissionHandler.Status)
		submissions.GET("/:id/wait", submissionHandler.Wait)
	}

	// Schedule rule routes
	scheduleHandler := handler.NewScheduleHandler(deps.Schedules, deps.Scheduler)
	schedules := v1.Group("/schedules")
	{
		schedules.GET("", scheduleHandler.List)
		schedules.POST("", scheduleHandler.Create)
		schedules.GET("/:id", scheduleHandler.Get)
		schedules.PUT("/:id", scheduleHandler.Update)
		schedules.DELETE("/:id", scheduleHandler.Delete)
		schedules.POST("/:id/toggle", scheduleHandler.Toggle)
		schedules.POST("/:id/run", scheduleHandler.RunNow)
	}

	// Roster and progress routes
	rosterHandler := handler.NewRosterHandler(deps.Tracker)
	v1.POST("/roster", rosterHandler.Upload)
	v1.GET("/progress", rosterHandler.Progress)

	// Report catalog (static, for the frontend dropdown)
	reportsHandler := handler.NewReportsHandler()
	v1.GET("/reports", reportsHandler.List)
}
