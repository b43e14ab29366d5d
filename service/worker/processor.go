package worker

import (
	"log/slog"

	"github.com/danglnh07/notify-relay/service/notify"
	"github.com/hibiken/asynq"
)

// Anything that can fan a notification out to connected clients
type Broadcaster interface {
	Broadcast(notification notify.Notification) int
}

// Task processor interface
type TaskProcessor interface {
	Start() error
	Shutdown()
}

// Redis task processor
type RedisTaskProcessor struct {
	// Asynq server
	server *asynq.Server

	// Dependencies
	hub Broadcaster

	// Logger for debugging
	logger *slog.Logger
}

// Constructor method for Redis task processor
func NewRedisTaskProcessor(redisOpts asynq.RedisClientOpt, hub Broadcaster, logger *slog.Logger) *RedisTaskProcessor {
	return &RedisTaskProcessor{
		server: asynq.NewServer(redisOpts, asynq.Config{
			Concurrency: 4,
			LogLevel:    asynq.WarnLevel,
		}),
		hub:    hub,
		logger: logger,
	}
}

// Method to start the worker server, it returns once the workers are running
func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(BroadcastNotification, processor.ProcessTaskBroadcastNotification)

	return processor.server.Start(mux)
}

func (processor *RedisTaskProcessor) Shutdown() {
	processor.server.Shutdown()
}
