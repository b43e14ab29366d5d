package notify

import (
	"encoding/json"
	"fmt"
)

type MessageType string

const (
	TypeNotification    MessageType = "notification"
	TypeAcknowledgement MessageType = "acknowledgement"
	TypeMessage         MessageType = "message"
)

// Notification is the payload the hub fans out. It is built per broadcast and never stored
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Welcome is sent once to every connection right after it is registered
var Welcome = Notification{
	Title:   "Connected",
	Message: "Successfully connected to notification server",
}

// NotificationMessage is the server to client frame
type NotificationMessage struct {
	Type    MessageType `json:"type"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

func NewNotificationMessage(notification Notification) NotificationMessage {
	return NotificationMessage{
		Type:    TypeNotification,
		Title:   notification.Title,
		Message: notification.Message,
	}
}

// Encoded welcome frame, shared by every registration
var welcomeFrame = mustEncode(NewNotificationMessage(Welcome))

func mustEncode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("notify: encode %T: %v", v, err))
	}
	return data
}

// Acknowledgement is sent by a client once it has displayed a notification.
// Timestamp is in unix milliseconds.
type Acknowledgement struct {
	Type      MessageType `json:"type"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	Timestamp int64       `json:"timestamp"`
}

// TextMessage is the free form client to server frame
type TextMessage struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

// InboundMessage is the decoded form of any frame on the channel. Only the
// fields that belong to Type are meaningful.
type InboundMessage struct {
	Type      MessageType `json:"type"`
	Title     string      `json:"title,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
	Text      string      `json:"text,omitempty"`
}

// Custom error: the frame is valid JSON but carries a type we don't handle
type UnknownTypeErr struct {
	Type MessageType
}

func (err *UnknownTypeErr) Error() string {
	return fmt.Sprintf("unknown message type %q", err.Type)
}

// Decode a raw frame into an InboundMessage. Malformed JSON and unknown types
// are returned as errors so the caller can log and drop them.
func ParseInbound(data []byte) (InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return InboundMessage{}, fmt.Errorf("malformed message: %w", err)
	}

	switch msg.Type {
	case TypeNotification, TypeAcknowledgement, TypeMessage:
		return msg, nil
	default:
		return msg, &UnknownTypeErr{Type: msg.Type}
	}
}

// Notification view of an inbound notification frame
func (msg InboundMessage) Notification() Notification {
	return Notification{Title: msg.Title, Message: msg.Message}
}

// Acknowledgement view of an inbound acknowledgement frame
func (msg InboundMessage) Acknowledgement() Acknowledgement {
	return Acknowledgement{
		Type:      TypeAcknowledgement,
		Title:     msg.Title,
		Message:   msg.Message,
		Timestamp: msg.Timestamp,
	}
}
