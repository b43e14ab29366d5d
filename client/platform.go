package client

import (
	"context"
	"time"
)

// Display is everything a platform needs to show one notification
type Display struct {
	Title     string
	Body      string
	Icon      string
	Badge     string
	Tag       string
	Timestamp time.Time

	// Replace a previous notification with the same tag and alert again
	Renotify bool

	// Called when the user activates the notification
	OnClick func()
}

// Platform is the notification capability of the environment the client runs in
type Platform interface {
	// False when the environment has no notification support at all
	Supported() bool

	// Permission as currently reported by the platform
	Permission() Permission

	// Ask the user for permission. Returns the current permission without
	// asking if the user already decided.
	RequestPermission(ctx context.Context) (Permission, error)

	Show(display Display) error

	// Disruptive fallback used when notifications are not supported
	Alert(text string)

	// Bring the client in front of the user
	Focus()
}
