package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/danglnh07/notify-relay/service/notify"
	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

var ErrNotConnected = errors.New("websocket is not connected")

// Handler receives every well formed message the server sends
type Handler func(ctx context.Context, msg notify.InboundMessage)

// Manager keeps one websocket connection to the relay open, reconnecting
// after every loss. Attempts run one after the other inside Run, so there is
// never more than one in flight.
type Manager struct {
	url    string
	dialer *websocket.Dialer
	policy ReconnectPolicy
	logger *slog.Logger

	// Hooks, set before Run
	onStatus  func(Status)
	onMessage Handler

	mu     sync.Mutex
	status Status
	conn   *websocket.Conn

	// Serialises all conn writes
	writeMu sync.Mutex
}

func NewManager(url string, policy ReconnectPolicy, logger *slog.Logger) *Manager {
	if policy == nil {
		policy = FixedDelay(DefaultReconnectInterval)
	}

	return &Manager{
		url:    url,
		dialer: websocket.DefaultDialer,
		policy: policy,
		logger: logger,
		status: StatusDisconnected,
	}
}

func (manager *Manager) OnStatusChange(fn func(Status)) {
	manager.onStatus = fn
}

func (manager *Manager) OnMessage(fn Handler) {
	manager.onMessage = fn
}

func (manager *Manager) Status() Status {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return manager.status
}

func (manager *Manager) Connected() bool {
	return manager.Status() == StatusConnected
}

// Run connects and keeps reconnecting until ctx is cancelled. Both a closed
// connection and a failed attempt schedule the next attempt after the
// policy's delay.
func (manager *Manager) Run(ctx context.Context) error {
	for {
		manager.setStatus(StatusConnecting)

		conn, _, err := manager.dialer.DialContext(ctx, manager.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				manager.setStatus(StatusDisconnected)
				return ctx.Err()
			}
			manager.logger.Error("WebSocket connection error", "url", manager.url, "error", err)
			manager.setStatus(StatusError)
		} else {
			manager.policy.Reset()
			manager.serve(ctx, conn)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := manager.policy.NextDelay()
		manager.logger.Info("Reconnecting", "in", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// serve reads from conn until it closes
func (manager *Manager) serve(ctx context.Context, conn *websocket.Conn) {
	manager.mu.Lock()
	manager.conn = conn
	manager.mu.Unlock()

	manager.logger.Info("WebSocket Connected", "url", manager.url)
	manager.setStatus(StatusConnected)

	// Unblock the read below once the manager is stopped
	stop := context.AfterFunc(ctx, func() {
		manager.writeMu.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		manager.writeMu.Unlock()
		conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			manager.mu.Lock()
			manager.conn = nil
			manager.mu.Unlock()
			conn.Close()

			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) && ctx.Err() == nil {
				// A fault without a close frame, the connection is gone all the same
				manager.logger.Error("WebSocket Error", "error", err)
				manager.setStatus(StatusError)
			}

			manager.logger.Info("WebSocket Disconnected")
			manager.setStatus(StatusDisconnected)
			return
		}

		msg, err := notify.ParseInbound(data)
		if err != nil {
			manager.logger.Warn("Error processing message", "error", err)
			continue
		}

		if manager.onMessage != nil {
			manager.onMessage(ctx, msg)
		}
	}
}

// Send v as a JSON frame on the current connection
func (manager *Manager) Send(v any) error {
	manager.mu.Lock()
	conn := manager.conn
	manager.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	manager.writeMu.Lock()
	defer manager.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

// Send a free text message to the server
func (manager *Manager) SendText(text string) error {
	return manager.Send(notify.TextMessage{Type: notify.TypeMessage, Text: text})
}

func (manager *Manager) setStatus(status Status) {
	manager.mu.Lock()
	changed := manager.status != status
	manager.status = status
	manager.mu.Unlock()

	if changed && manager.onStatus != nil {
		manager.onStatus(status)
	}
}
