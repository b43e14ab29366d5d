package scheduler

import (
	"bytes"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danglnh07/notify-relay/service/notify"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

type MockHub struct {
	broadcasts atomic.Int32
}

func (mock *MockHub) Broadcast(notification notify.Notification) int {
	mock.broadcasts.Add(1)
	return 2
}

func (mock *MockHub) Count() int {
	return 2
}

func TestCronJob(t *testing.T) {
	scheduler := NewScheduler()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var count atomic.Int32
	err := scheduler.AddJob("@every 1s", func() {
		logger.Info("", "time", time.Now())
		count.Add(1)
	})
	require.NoError(t, err)

	scheduler.RunCronJobs()
	time.Sleep(3500 * time.Millisecond)
	<-scheduler.Stop().Done()

	// Runs are aligned to whole seconds, so the first one may come early
	require.GreaterOrEqual(t, count.Load(), int32(3))
	require.LessOrEqual(t, count.Load(), int32(4))
}

func TestInvalidSchedule(t *testing.T) {
	scheduler := NewScheduler()
	require.Error(t, scheduler.AddJob("every now and then", func() {}))
}

func TestAnnouncementJob(t *testing.T) {
	hub := &MockHub{}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	job := AnnouncementJob(hub, notify.Notification{Title: "News", Message: "Hello"}, logger)
	job.Run()
	job.Run()

	require.Equal(t, int32(2), hub.broadcasts.Load())
}

func TestStatsJob(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buffer, nil))

	StatsJob(&MockHub{}, logger).Run()
	require.Contains(t, buffer.String(), "count=2")
}
