package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danglnh07/notify-relay/service/notify"
	"github.com/hibiken/asynq"
)

type BroadcastNotificationPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

const BroadcastNotification = "broadcast-notification"

var ErrInvalidPayload = errors.New("invalid payload for this task")

// Queue a broadcast that runs after delay
func DistributeTaskBroadcastNotification(
	ctx context.Context,
	distributor TaskDistributor,
	payload BroadcastNotificationPayload,
	delay time.Duration,
) error {
	opts := []asynq.Option{asynq.MaxRetry(0)}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}
	return distributor.DistributeTask(ctx, BroadcastNotification, payload, opts...)
}

func (processor *RedisTaskProcessor) ProcessTaskBroadcastNotification(ctx context.Context, task *asynq.Task) error {
	// Unmarshal the payload
	var payload BroadcastNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%w: %v: %w", ErrInvalidPayload, err, asynq.SkipRetry)
	}

	// Process task -> decoupling method for unit test
	return processor.BroadcastNotification(payload)
}

func (processor *RedisTaskProcessor) BroadcastNotification(payload BroadcastNotificationPayload) error {
	if payload.Title == "" || payload.Message == "" {
		return fmt.Errorf("%w: title and message are required: %w", ErrInvalidPayload, asynq.SkipRetry)
	}

	// Delivery is best effort, there is no one to retry for
	delivered := processor.hub.Broadcast(notify.Notification{
		Title:   payload.Title,
		Message: payload.Message,
	})
	processor.logger.Info("Scheduled notification sent", "title", payload.Title, "delivered", delivered)

	return nil
}
