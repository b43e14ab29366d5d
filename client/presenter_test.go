package client

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/danglnh07/notify-relay/service/notify"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

type MockPlatform struct {
	mu         sync.Mutex
	supported  bool
	permission Permission
	answer     Permission
	answerErr  error
	requests   int
	shown      []Display
	alerts     []string
	focused    int
}

func newMockPlatform(permission Permission) *MockPlatform {
	return &MockPlatform{supported: true, permission: permission, answer: PermissionGranted}
}

func (mock *MockPlatform) Supported() bool { return mock.supported }

func (mock *MockPlatform) Permission() Permission {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.permission
}

func (mock *MockPlatform) RequestPermission(ctx context.Context) (Permission, error) {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	mock.requests++
	if mock.answerErr != nil {
		return PermissionError, mock.answerErr
	}
	mock.permission = mock.answer
	return mock.answer, nil
}

func (mock *MockPlatform) Show(display Display) error {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	mock.shown = append(mock.shown, display)
	return nil
}

func (mock *MockPlatform) Alert(text string) {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	mock.alerts = append(mock.alerts, text)
}

func (mock *MockPlatform) Focus() {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	mock.focused++
}

func (mock *MockPlatform) Shown() []Display {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return append([]Display(nil), mock.shown...)
}

type MockSender struct {
	connected bool
	sent      []any
}

func (mock *MockSender) Send(v any) error {
	if !mock.connected {
		return ErrNotConnected
	}
	mock.sent = append(mock.sent, v)
	return nil
}

func (mock *MockSender) Connected() bool { return mock.connected }

func newTestPresenter(platform Platform, sender Sender, options PresenterOptions) *Presenter {
	presenter := NewPresenter(platform, sender, options, logger)
	presenter.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return presenter
}

func TestPresenterGrantedShowsAndAcknowledges(t *testing.T) {
	platform := newMockPlatform(PermissionGranted)
	sender := &MockSender{connected: true}
	presenter := newTestPresenter(platform, sender, PresenterOptions{Icon: "icon.png", Acknowledge: true})

	require.NoError(t, presenter.Show(context.Background(), "Hi", "World"))

	shown := platform.Shown()
	require.Len(t, shown, 1)
	require.Equal(t, "Hi", shown[0].Title)
	require.Equal(t, "World", shown[0].Body)
	require.Equal(t, "icon.png", shown[0].Icon)
	require.Equal(t, notificationTag, shown[0].Tag)
	require.True(t, shown[0].Renotify)

	require.Equal(t, []any{notify.Acknowledgement{
		Type:      notify.TypeAcknowledgement,
		Title:     "Hi",
		Message:   "World",
		Timestamp: 1700000000000,
	}}, sender.sent)
	require.Zero(t, platform.requests)
}

func TestPresenterAcknowledgementIsOptional(t *testing.T) {
	// Disabled by option
	sender := &MockSender{connected: true}
	presenter := newTestPresenter(newMockPlatform(PermissionGranted), sender, PresenterOptions{})
	require.NoError(t, presenter.Show(context.Background(), "Hi", "World"))
	require.Empty(t, sender.sent)

	// Enabled, but nothing to send it on
	sender = &MockSender{connected: false}
	platform := newMockPlatform(PermissionGranted)
	presenter = newTestPresenter(platform, sender, PresenterOptions{Acknowledge: true})
	require.NoError(t, presenter.Show(context.Background(), "Hi", "World"))
	require.Empty(t, sender.sent)
	require.Len(t, platform.Shown(), 1)
}

func TestPresenterDenied(t *testing.T) {
	platform := newMockPlatform(PermissionDenied)
	sender := &MockSender{connected: true}
	presenter := newTestPresenter(platform, sender, PresenterOptions{Acknowledge: true})

	require.NoError(t, presenter.Show(context.Background(), "Hi", "World"))
	require.Empty(t, platform.Shown())
	require.Empty(t, sender.sent)
	require.Zero(t, platform.requests)
}

func TestPresenterDefaultRequestsThenDisplaysOnce(t *testing.T) {
	platform := newMockPlatform(PermissionDefault)
	presenter := newTestPresenter(platform, nil, PresenterOptions{})
	require.Equal(t, PermissionDefault, presenter.Permission())

	require.NoError(t, presenter.Show(context.Background(), "Hi", "World"))
	require.Equal(t, 1, platform.requests)
	require.Len(t, platform.Shown(), 1)
	require.Equal(t, PermissionGranted, presenter.Permission())

	// Permission is remembered
	require.NoError(t, presenter.Show(context.Background(), "Again", "World"))
	require.Equal(t, 1, platform.requests)
	require.Len(t, platform.Shown(), 2)
}

func TestPresenterDefaultRequestRefused(t *testing.T) {
	platform := newMockPlatform(PermissionDefault)
	platform.answer = PermissionDenied
	presenter := newTestPresenter(platform, nil, PresenterOptions{})

	require.NoError(t, presenter.Show(context.Background(), "Hi", "World"))
	require.Equal(t, 1, platform.requests)
	require.Empty(t, platform.Shown())
	require.Equal(t, PermissionDenied, presenter.Permission())
}

func TestPresenterRequestError(t *testing.T) {
	platform := newMockPlatform(PermissionDefault)
	platform.answerErr = errors.New("prompt failed")
	presenter := newTestPresenter(platform, nil, PresenterOptions{})

	require.NoError(t, presenter.Show(context.Background(), "Hi", "World"))
	require.Equal(t, PermissionError, presenter.Permission())
	require.Empty(t, platform.Shown())

	// An error is a decision too, the user is not asked again
	require.NoError(t, presenter.Show(context.Background(), "Hi", "World"))
	require.Equal(t, 1, platform.requests)

	// Until the platform reports a change
	platform.answerErr = nil
	presenter.SetPermission(PermissionDefault)
	require.NoError(t, presenter.Show(context.Background(), "Hi", "World"))
	require.Len(t, platform.Shown(), 1)
}

func TestPresenterUnsupportedFallsBackToAlert(t *testing.T) {
	platform := newMockPlatform(PermissionGranted)
	platform.supported = false
	presenter := newTestPresenter(platform, &MockSender{connected: true}, PresenterOptions{Acknowledge: true})

	require.Equal(t, PermissionUnsupported, presenter.Initialize(context.Background()))
	require.NoError(t, presenter.Show(context.Background(), "Hi", "World"))

	require.Equal(t, []string{"Hi: World"}, platform.alerts)
	require.Empty(t, platform.Shown())
	require.Zero(t, platform.requests)
}

func TestPresenterInitialize(t *testing.T) {
	platform := newMockPlatform(PermissionDefault)
	presenter := newTestPresenter(platform, nil, PresenterOptions{})

	require.Equal(t, PermissionGranted, presenter.Initialize(context.Background()))
	require.Equal(t, PermissionGranted, presenter.Initialize(context.Background()))
	require.Equal(t, 1, platform.requests)
}

func TestPresenterClick(t *testing.T) {
	platform := newMockPlatform(PermissionGranted)
	clicked := 0
	presenter := newTestPresenter(platform, nil, PresenterOptions{OnClick: func() { clicked++ }})

	require.NoError(t, presenter.Show(context.Background(), "Hi", "World"))
	shown := platform.Shown()
	require.Len(t, shown, 1)
	require.NotNil(t, shown[0].OnClick)

	shown[0].OnClick()
	require.Equal(t, 1, clicked)
	require.Equal(t, 1, platform.focused)
}

func TestPresenterHandleMessage(t *testing.T) {
	platform := newMockPlatform(PermissionGranted)
	presenter := newTestPresenter(platform, nil, PresenterOptions{})

	presenter.HandleMessage(context.Background(), notify.InboundMessage{Type: notify.TypeNotification, Title: "Hi", Message: "World"})
	presenter.HandleMessage(context.Background(), notify.InboundMessage{Type: notify.TypeMessage, Text: "ignored"})
	presenter.HandleMessage(context.Background(), notify.InboundMessage{Type: notify.TypeAcknowledgement, Title: "ignored"})

	require.Equal(t, 1, presenter.Count())
	require.Len(t, platform.Shown(), 1)
}

func TestParsePermission(t *testing.T) {
	require.Equal(t, PermissionGranted, ParsePermission("granted"))
	require.Equal(t, PermissionDenied, ParsePermission("denied"))
	require.Equal(t, PermissionDefault, ParsePermission("prompt"))
	require.Equal(t, PermissionDefault, ParsePermission("error"))
}
