package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/danglnh07/notify-relay/api"
	"github.com/danglnh07/notify-relay/service/notify"
	"github.com/danglnh07/notify-relay/service/scheduler"
	"github.com/danglnh07/notify-relay/service/worker"
	"github.com/danglnh07/notify-relay/util"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load config
	config := util.LoadConfig(".env")
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// run wires the relay and serves until ctx is cancelled. Every component it
// starts is stopped before it returns, error or not.
func run(ctx context.Context, config *util.Config, logger *slog.Logger) error {
	// The hub and the server share one lifetime
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start the hub, it closes every connection once ctx is cancelled
	hub := notify.NewHub(config.HeartbeatInterval, logger)
	hub.SetAckHandler(func(clientID string, ack notify.Acknowledgement) {
		logger.Info("Notification acknowledged", "client", clientID, "title", ack.Title, "timestamp", ack.Timestamp)
	})
	go hub.Run(ctx)

	// Deferred notifications need Redis, the relay runs without them otherwise
	var distributor worker.TaskDistributor
	if config.RedisAddr != "" {
		if err := worker.PingRedis(ctx, config.RedisAddr); err != nil {
			logger.Warn("Redis unavailable, scheduled notifications disabled", "address", config.RedisAddr, "error", err)
		} else {
			redisOpts := asynq.RedisClientOpt{Addr: config.RedisAddr}
			distributor = worker.NewRedisTaskDistributor(redisOpts, logger)
			defer distributor.Close()

			processor := worker.NewRedisTaskProcessor(redisOpts, hub, logger)
			if err := processor.Start(); err != nil {
				return fmt.Errorf("start task processor: %w", err)
			}
			defer processor.Shutdown()
		}
	}

	// Run the cron
	s := scheduler.NewScheduler()
	if err := s.AddJob(config.StatsSchedule, scheduler.StatsJob(hub, logger)); err != nil {
		logger.Warn("Invalid stats schedule", "schedule", config.StatsSchedule, "error", err)
	}
	if config.AnnounceSchedule != "" {
		announcement := notify.Notification{Title: config.AnnounceTitle, Message: config.AnnounceMessage}
		if err := s.AddJob(config.AnnounceSchedule, scheduler.AnnouncementJob(hub, announcement, logger)); err != nil {
			logger.Warn("Invalid announcement schedule", "schedule", config.AnnounceSchedule, "error", err)
		}
	}
	s.RunCronJobs()
	defer func() { <-s.Stop().Done() }()

	// Start server
	server := api.NewServer(config, hub, distributor, logger)
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
