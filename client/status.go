package client

// Status of the connection manager
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Permission to display platform notifications
type Permission string

const (
	PermissionDefault     Permission = "default"
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionUnsupported Permission = "unsupported"
	PermissionError       Permission = "error"
)

// Parse a configured permission. "prompt" and unknown values mean the user
// has not decided yet.
func ParsePermission(value string) Permission {
	switch Permission(value) {
	case PermissionGranted, PermissionDenied:
		return Permission(value)
	default:
		return PermissionDefault
	}
}
