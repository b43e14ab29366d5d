package scheduler

import (
	"context"
	"log/slog"

	"github.com/danglnh07/notify-relay/service/notify"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	c *cron.Cron
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		c: cron.New(cron.WithSeconds()),
	}
}

func (scheduler *Scheduler) AddJob(schedule string, job cron.FuncJob) error {
	_, err := scheduler.c.AddFunc(schedule, job)
	return err
}

func (scheduler *Scheduler) RunCronJobs() {
	scheduler.c.Start()
}

// Stop scheduling new runs, the returned context is done once running jobs finish
func (scheduler *Scheduler) Stop() context.Context {
	return scheduler.c.Stop()
}

type Broadcaster interface {
	Broadcast(notification notify.Notification) int
}

type Counter interface {
	Count() int
}

// Job that broadcasts the same announcement on every run
func AnnouncementJob(hub Broadcaster, announcement notify.Notification, logger *slog.Logger) cron.FuncJob {
	return func() {
		delivered := hub.Broadcast(announcement)
		logger.Info("Announcement sent", "title", announcement.Title, "delivered", delivered)
	}
}

// Job that logs how many clients are connected
func StatsJob(hub Counter, logger *slog.Logger) cron.FuncJob {
	return func() {
		logger.Info("Connected clients", "count", hub.Count())
	}
}
