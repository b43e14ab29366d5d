package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danglnh07/notify-relay/service/notify"
)

// Tag shared by every notification, so a new one replaces the previous
const notificationTag = "websocket-notification"

// Sender is the channel acknowledgements go back on
type Sender interface {
	Send(v any) error
	Connected() bool
}

type PresenterOptions struct {
	Icon  string
	Badge string

	// Send an acknowledgement for every displayed notification
	Acknowledge bool

	// Called after the client was focused by a click on a notification
	OnClick func()
}

// Presenter turns notification messages into platform notifications, subject
// to the permission the user gave.
type Presenter struct {
	platform Platform
	sender   Sender
	options  PresenterOptions
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	permission Permission
	count      int
}

func NewPresenter(platform Platform, sender Sender, options PresenterOptions, logger *slog.Logger) *Presenter {
	permission := PermissionUnsupported
	if platform.Supported() {
		permission = platform.Permission()
	}

	return &Presenter{
		platform:   platform,
		sender:     sender,
		options:    options,
		logger:     logger,
		now:        time.Now,
		permission: permission,
	}
}

func (presenter *Presenter) Permission() Permission {
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	return presenter.permission
}

// Record a permission change reported by the platform
func (presenter *Presenter) SetPermission(permission Permission) {
	presenter.mu.Lock()
	presenter.permission = permission
	presenter.mu.Unlock()
}

// Number of notification messages received so far
func (presenter *Presenter) Count() int {
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	return presenter.count
}

// Ask for permission once at startup, so the first notification doesn't have to
func (presenter *Presenter) Initialize(ctx context.Context) Permission {
	return presenter.requestPermission(ctx)
}

// HandleMessage is the Manager's message handler
func (presenter *Presenter) HandleMessage(ctx context.Context, msg notify.InboundMessage) {
	if msg.Type != notify.TypeNotification {
		return
	}

	presenter.mu.Lock()
	presenter.count++
	presenter.mu.Unlock()

	if err := presenter.Show(ctx, msg.Title, msg.Message); err != nil {
		presenter.logger.Error("Error showing notification", "error", err)
	}
}

// Show a notification according to the current permission. With no decision
// yet it first requests permission, then displays at most once.
func (presenter *Presenter) Show(ctx context.Context, title, message string) error {
	if !presenter.platform.Supported() {
		presenter.platform.Alert(title + ": " + message)
		return nil
	}

	permission := presenter.Permission()
	if permission == PermissionDefault {
		permission = presenter.requestPermission(ctx)
	}

	switch permission {
	case PermissionGranted:
		return presenter.display(title, message)
	case PermissionDenied:
		presenter.logger.Info("Notifications blocked", "title", title)
	default:
		presenter.logger.Info("Notification dropped", "title", title, "permission", permission)
	}
	return nil
}

func (presenter *Presenter) requestPermission(ctx context.Context) Permission {
	if !presenter.platform.Supported() {
		presenter.logger.Info("This terminal does not support desktop notification")
		presenter.SetPermission(PermissionUnsupported)
		return PermissionUnsupported
	}

	current := presenter.Permission()
	if current != PermissionDefault {
		return current
	}

	permission, err := presenter.platform.RequestPermission(ctx)
	if err != nil {
		presenter.logger.Error("Error requesting notification permission", "error", err)
		permission = PermissionError
	}

	presenter.SetPermission(permission)
	return permission
}

func (presenter *Presenter) display(title, message string) error {
	presenter.logger.Debug("Log Notification start", "title", title)

	err := presenter.platform.Show(Display{
		Title:     title,
		Body:      message,
		Icon:      presenter.options.Icon,
		Badge:     presenter.options.Badge,
		Tag:       notificationTag,
		Timestamp: presenter.now(),
		Renotify:  true,
		OnClick:   presenter.click,
	})
	if err != nil {
		return err
	}

	if presenter.options.Acknowledge && presenter.sender != nil && presenter.sender.Connected() {
		err := presenter.sender.Send(notify.Acknowledgement{
			Type:      notify.TypeAcknowledgement,
			Title:     title,
			Message:   message,
			Timestamp: presenter.now().UnixMilli(),
		})
		if err != nil {
			presenter.logger.Warn("Failed to send acknowledgement", "title", title, "error", err)
		}
	}

	return nil
}

func (presenter *Presenter) click() {
	presenter.logger.Debug("Notification clicked")
	presenter.platform.Focus()
	if presenter.options.OnClick != nil {
		presenter.options.OnClick()
	}
}
