package notify

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write one frame to the peer
	writeWait = 10 * time.Second

	// Maximum frame size accepted from a client
	maxMessageSize = 4096

	// Outbound frames buffered per client before new ones are dropped
	sendBufferSize = 64
)

var (
	ErrClientClosed   = errors.New("client connection is closed")
	ErrSendBufferFull = errors.New("client send buffer is full")
)

// Client is one open websocket connection tracked by the hub.
//
// alive and closed belong to the hub's event loop and are never touched from
// the pump goroutines. broken is set by the write pump when the socket fails.
type Client struct {
	ClientID string
	conn     *websocket.Conn
	send     chan []byte
	ping     chan struct{}

	alive  bool
	closed bool
	broken atomic.Bool
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ClientID: uuid.NewString(),
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		ping:     make(chan struct{}, 1),
	}
}

// Queue an encoded frame for the write pump without blocking
func (client *Client) enqueue(data []byte) error {
	if client.closed || client.broken.Load() {
		return ErrClientClosed
	}

	select {
	case client.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Ask the write pump to send a ping. A probe already pending is enough.
func (client *Client) probe() {
	select {
	case client.ping <- struct{}{}:
	default:
	}
}

// Terminate the connection. Only the hub loop calls this, exactly once.
func (client *Client) close() {
	client.closed = true
	close(client.send)
	client.conn.Close()
}

// writePump drains the send buffer and pending pings onto the socket
func (client *Client) writePump() {
	defer client.conn.Close()

	for {
		select {
		case data, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub removed the client
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				client.broken.Store(true)
				return
			}

		case <-client.ping:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				client.broken.Store(true)
				return
			}
		}
	}
}

// readPump reads frames until the connection fails, then unsubscribes the client
func (client *Client) readPump(hub *Hub) {
	defer hub.Unsubscribe(client)

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetPongHandler(func(string) error {
		hub.markAlive(client)
		return nil
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				hub.logger.Warn("Websocket read error", "client_id", client.ClientID, "error", err)
			}
			return
		}

		hub.handleInbound(client, data)
	}
}
