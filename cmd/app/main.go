// @title TillSync Local API
// @version 1.0
// @description Offline-first sync agent for a point-of-sale terminal: shifts, sync queue and conflicts.
// @host 127.0.0.1:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osse101/TillSync_Go/internal/bootstrap"
	"github.com/osse101/TillSync_Go/internal/concurrency"
	"github.com/osse101/TillSync_Go/internal/config"
	"github.com/osse101/TillSync_Go/internal/conflict"
	"github.com/osse101/TillSync_Go/internal/connectivity"
	"github.com/osse101/TillSync_Go/internal/database/sqlite"
	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/mutation"
	"github.com/osse101/TillSync_Go/internal/queue"
	"github.com/osse101/TillSync_Go/internal/reconciliation"
	"github.com/osse101/TillSync_Go/internal/scheduler"
	"github.com/osse101/TillSync_Go/internal/server"
	"github.com/osse101/TillSync_Go/internal/shift"
	"github.com/osse101/TillSync_Go/internal/sse"
	"github.com/osse101/TillSync_Go/internal/syncengine"
	"github.com/osse101/TillSync_Go/internal/validation"
	"github.com/osse101/TillSync_Go/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("TillSync agent exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, bootstrap.DirPermission); err != nil {
		return err
	}

	store, err := sqlite.Open(ctx, cfg.LocalDBPath())
	if err != nil {
		return err
	}

	payloads, err := validation.NewPayloadValidator()
	if err != nil {
		store.Close()
		return err
	}

	pending, err := queue.New(ctx, store, payloads)
	if err != nil {
		store.Close()
		return err
	}

	eventBus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		store.Close()
		return err
	}

	rc, err := bootstrap.SetupRemote(ctx, cfg)
	if err != nil {
		store.Close()
		return err
	}

	monitor := connectivity.NewMonitor(store, pending, publisher, cfg.ConnectivityDebounce)
	monitor.Load(ctx)

	engine := syncengine.NewEngine(pending, store, rc.Remote, rc.SessionProvider(), conflict.NewStore(), monitor, publisher, syncengine.Options{
		MaxAttempts:      cfg.SyncMaxAttempts,
		AttemptsPerCycle: cfg.SyncAttemptsPerCycle,
		RetryBaseDelay:   cfg.SyncRetryBaseDelay,
	})

	calculator := reconciliation.NewCalculator(rc.Remote, reconciliation.Thresholds{
		Alert: domain.Amount(cfg.VarianceAlertThreshold),
		High:  domain.Amount(cfg.VarianceHighThreshold),
	}, cfg.ReconcileLegacyCutoff)

	writer := mutation.NewService(rc.Remote, pending, payloads, monitor)
	shifts := shift.NewService(rc.Remote, writer, store, calculator, monitor, publisher, concurrency.NewLockManager())

	hub := sse.NewHub()
	hub.Start()
	bootstrap.RegisterEventHandlers(ctx, bootstrap.EventHandlerDependencies{EventBus: eventBus, Hub: hub})

	pool := worker.NewPool(worker.DefaultWorkers, worker.DefaultQueueSize)
	pool.Start(ctx)

	syncJob := worker.NewSyncJob(engine)
	probeJob := worker.NewProbeJob(monitor, rc.Remote)
	monitor.OnReconnect(func(ctx context.Context) {
		pool.Enqueue(ctx, syncJob)
	})

	sched := scheduler.New(pool)
	sched.Schedule(ctx, cfg.SyncInterval, syncJob)
	sched.Schedule(ctx, cfg.ConnectivityProbeInterval, probeJob)
	// Learn the real connectivity state before the first probe tick
	pool.Enqueue(ctx, probeJob)

	deps := server.Deps{
		Local:        store,
		Shifts:       shifts,
		Mutations:    writer,
		Engine:       engine,
		Queue:        pending,
		Connectivity: monitor,
		Hub:          hub,
	}
	if rc.Sessions != nil {
		deps.Sessions = rc.Sessions
	}
	srv := server.NewServer(server.Config{
		BindAddress: cfg.BindAddress,
		Port:        cfg.Port,
		APIKey:      cfg.LocalAPIKey,
		Version:     cfg.Version,
		TerminalID:  cfg.TerminalID,
		RemoteMode:  cfg.RemoteMode,
	}, deps)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(ctx)
	}()

	slog.Info("TillSync agent ready", "bind_address", cfg.BindAddress, "port", cfg.Port, "pending", pending.Len())

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:             srv,
		Scheduler:          sched,
		Pool:               pool,
		Monitor:            monitor,
		Engine:             engine,
		Hub:                hub,
		ResilientPublisher: publisher,
		Remote:             rc,
		Local:              store,
	})

	return runErr
}
