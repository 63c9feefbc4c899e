package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/endurancy/platform/internal/config"
	"github.com/endurancy/platform/internal/database"
	"github.com/endurancy/platform/internal/notification"
	"github.com/endurancy/platform/internal/queue"
	"github.com/endurancy/platform/internal/queue/workers"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPool(context.Background(), cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	notifSvc := notification.NewService(db,
		cfg.Notifications.RetentionDays, cfg.Notifications.StaleTicketMins)
	worker := workers.NewNotificationWorker(notifSvc)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeNotificationCleanup, worker.ProcessCleanup)
	mux.HandleFunc(queue.TypeSystemScan, worker.ProcessSystemScan)

	// The sweeps run on a cadence; the API can also enqueue them on demand.
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
	if _, err := scheduler.Register(cfg.Notifications.CleanupSpec,
		asynq.NewTask(queue.TypeNotificationCleanup, nil)); err != nil {
		slog.Error("failed to register cleanup schedule", "error", err)
		os.Exit(1)
	}
	if _, err := scheduler.Register(cfg.Notifications.ScanSpec,
		asynq.NewTask(queue.TypeSystemScan, nil)); err != nil {
		slog.Error("failed to register scan schedule", "error", err)
		os.Exit(1)
	}

	if err := scheduler.Start(); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Shutdown()

	slog.Info("starting worker",
		"cleanup_spec", cfg.Notifications.CleanupSpec,
		"scan_spec", cfg.Notifications.ScanSpec)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
