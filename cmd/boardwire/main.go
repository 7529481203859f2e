// Command boardwire runs the message-dispatch core: a websocket server
// that accepts typed commands and queries over work items, sprints,
// comments, time entries, dependencies and projects, broadcasting
// resulting state changes to subscribed connections.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boardwire/boardwire/internal/auth"
	"github.com/boardwire/boardwire/internal/authz"
	"github.com/boardwire/boardwire/internal/breaker"
	"github.com/boardwire/boardwire/internal/broadcast"
	"github.com/boardwire/boardwire/internal/config"
	"github.com/boardwire/boardwire/internal/connection"
	"github.com/boardwire/boardwire/internal/dbops"
	"github.com/boardwire/boardwire/internal/dispatcher"
	"github.com/boardwire/boardwire/internal/handlers"
	"github.com/boardwire/boardwire/internal/hierarchy"
	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/registry"
	"github.com/boardwire/boardwire/internal/retry"
	"github.com/boardwire/boardwire/internal/server"
	"github.com/boardwire/boardwire/internal/shutdown"
	"github.com/boardwire/boardwire/internal/storage/sqlite"
	"github.com/boardwire/boardwire/internal/validate"
	"github.com/boardwire/boardwire/internal/wire"
)

const defaultShutdownFallback = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a boardwire config YAML file")
	dbPath := flag.String("db", "boardwire.db", "path to the SQLite database file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, closer := logging.New(logging.Options{
		FilePath:   cfg.Logging.FilePath,
		Level:      cfg.Logging.Level,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer closer.Close()

	ctx := context.Background()
	store, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	readBreaker := breaker.New("read", cfg.Breaker)
	writeBreaker := breaker.New("write", cfg.Breaker)
	retryPolicy := retry.New(cfg.Retry)
	ops := dbops.New(readBreaker, writeBreaker, retryPolicy, cfg.HandlerTimeout(), logger)

	validator := validate.New(cfg.Validate)
	checker := authz.NewSingleTenantChecker()
	hierarchyValidator := hierarchy.New(store.WorkItems())

	reg := registry.New()
	fanout := broadcast.New(reg, logger)

	h := handlers.New(store, ops, validator, checker, hierarchyValidator, fanout, logger)

	disp := dispatcher.New(cfg.HandlerTimeout(), logger)
	registerHandlers(disp, h)

	authValidator, err := auth.New(cfg.Auth)
	if err != nil {
		log.Fatalf("build auth validator: %v", err)
	}

	coord := shutdown.New(cfg.DrainDeadline())
	mgr := connection.New(*cfg, authValidator, reg, disp, logger, coord.Draining)

	srv := server.New(cfg.Server, mgr, logger)

	listener, err := net.Listen("tcp", srv.Addr())
	if err != nil {
		log.Fatalf("listen on %s: %v", srv.Addr(), err)
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr())
		if err := srv.Serve(listener); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	signal.Stop(quit)

	logger.Info("shutdown initiated")
	coord.Shutdown()

	drainDeadline := coord.DrainDeadline()
	if drainDeadline <= 0 {
		drainDeadline = defaultShutdownFallback
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), drainDeadline)
	defer cancel()

	if err := srv.Shutdown(drainCtx); err != nil {
		logger.Warn("forced shutdown", "error", err)
	}
	logger.Info("shutdown complete")
}

// registerHandlers binds every EntityHandler method to the wire Kind of
// the request it answers.
func registerHandlers(disp *dispatcher.Dispatcher, h *handlers.Handlers) {
	register := func(kind string, fn func(context.Context, wire.Payload) (wire.Payload, error)) {
		disp.Register(kind, fn)
	}

	register("CreateProjectRequest", h.CreateProject)
	register("UpdateProjectRequest", h.UpdateProject)
	register("DeleteProjectRequest", h.DeleteProject)
	register("GetProjectsRequest", h.GetProjects)

	register("CreateWorkItemRequest", h.CreateWorkItem)
	register("UpdateWorkItemRequest", h.UpdateWorkItem)
	register("DeleteWorkItemRequest", h.DeleteWorkItem)
	register("GetWorkItemRequest", h.GetWorkItem)
	register("GetWorkItemsRequest", h.GetWorkItems)

	register("CreateSprintRequest", h.CreateSprint)
	register("UpdateSprintRequest", h.UpdateSprint)
	register("DeleteSprintRequest", h.DeleteSprint)
	register("GetSprintsRequest", h.GetSprints)

	register("CreateCommentRequest", h.CreateComment)
	register("UpdateCommentRequest", h.UpdateComment)
	register("DeleteCommentRequest", h.DeleteComment)
	register("GetCommentsRequest", h.GetComments)

	register("StartTimeEntryRequest", h.StartTimeEntry)
	register("StopTimeEntryRequest", h.StopTimeEntry)
	register("UpdateTimeEntryRequest", h.UpdateTimeEntry)
	register("DeleteTimeEntryRequest", h.DeleteTimeEntry)
	register("GetTimeEntryRequest", h.GetTimeEntry)
	register("GetTimeEntriesRequest", h.GetTimeEntries)

	register("CreateDependencyRequest", h.CreateDependency)
	register("DeleteDependencyRequest", h.DeleteDependency)
	register("GetDependenciesRequest", h.GetDependencies)

	register("GetActivityLogRequest", h.GetActivityLog)
}
