package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Default interval between two liveness probes
const DefaultHeartbeatInterval = 30 * time.Second

type broadcastRequest struct {
	data   []byte
	result chan int
}

// Hub is the connection registry. A single event loop (Run) owns the client
// set and every liveness flag; all other methods only talk to that loop
// through channels, so the registry itself is never locked.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastRequest
	pong       chan *Client
	count      chan chan int
	done       chan struct{}

	interval time.Duration
	onAck    func(clientID string, ack Acknowledgement)
	logger   *slog.Logger
}

func NewHub(interval time.Duration, logger *slog.Logger) *Hub {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastRequest),
		pong:       make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		interval:   interval,
		logger:     logger,
	}
}

// SetAckHandler registers a hook called for every acknowledgement a client
// sends. Must be called before Run.
func (hub *Hub) SetAckHandler(handler func(clientID string, ack Acknowledgement)) {
	hub.onAck = handler
}

// Run the event loop and the liveness monitor until ctx is cancelled. On
// return every remaining connection has been closed.
func (hub *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(hub.interval)
	defer func() {
		ticker.Stop()
		hub.closeAll()
		close(hub.done)
	}()

	for {
		select {
		case <-ctx.Done():
			hub.logger.Info("Hub shutting down", "clients", len(hub.clients))
			return

		case client := <-hub.register:
			hub.add(client)

		case client := <-hub.unregister:
			hub.remove(client)

		case client := <-hub.pong:
			// Pongs from a client that was already evicted are ignored
			if _, ok := hub.clients[client]; ok {
				client.alive = true
			}

		case req := <-hub.broadcast:
			req.result <- hub.fanOut(req.data)

		case reply := <-hub.count:
			reply <- len(hub.clients)

		case <-ticker.C:
			hub.checkLiveness()
		}
	}
}

// Connect takes ownership of an upgraded connection: it starts the pumps and
// registers the client with the hub.
func (hub *Hub) Connect(conn *websocket.Conn) *Client {
	client := NewClient(conn)
	go client.writePump()
	hub.Subscribe(client)
	go client.readPump(hub)
	return client
}

func (hub *Hub) Subscribe(client *Client) {
	select {
	case hub.register <- client:
	case <-hub.done:
		// Hub already stopped, nobody will ever own this connection
		client.close()
	}
}

// Unsubscribe removes the client and closes its connection. Removing a client
// that is not registered is a no-op.
func (hub *Hub) Unsubscribe(client *Client) {
	select {
	case hub.unregister <- client:
	case <-hub.done:
	}
}

// Broadcast hands the notification to every open client and returns how many
// accepted it. A client that fails never stops delivery to the others.
func (hub *Hub) Broadcast(notification Notification) int {
	data, err := json.Marshal(NewNotificationMessage(notification))
	if err != nil {
		hub.logger.Error("Failed to marshal notification", "error", err)
		return 0
	}

	req := broadcastRequest{data: data, result: make(chan int, 1)}
	select {
	case hub.broadcast <- req:
	case <-hub.done:
		return 0
	}

	select {
	case delivered := <-req.result:
		return delivered
	case <-hub.done:
		return 0
	}
}

// Count returns the number of registered clients
func (hub *Hub) Count() int {
	reply := make(chan int, 1)
	select {
	case hub.count <- reply:
	case <-hub.done:
		return 0
	}

	select {
	case n := <-reply:
		return n
	case <-hub.done:
		return 0
	}
}

func (hub *Hub) markAlive(client *Client) {
	select {
	case hub.pong <- client:
	case <-hub.done:
	}
}

// --- event loop internals, only called from Run ---

func (hub *Hub) add(client *Client) {
	if _, ok := hub.clients[client]; ok {
		return
	}

	client.alive = true
	hub.clients[client] = struct{}{}
	hub.logger.Info("New client connected", "client_id", client.ClientID, "clients", len(hub.clients))

	if err := client.enqueue(welcomeFrame); err != nil {
		hub.logger.Warn("Failed to send welcome message", "client_id", client.ClientID, "error", err)
	}
}

func (hub *Hub) remove(client *Client) {
	if _, ok := hub.clients[client]; !ok {
		return
	}

	delete(hub.clients, client)
	client.close()
	hub.logger.Info("Client disconnected", "client_id", client.ClientID, "clients", len(hub.clients))
}

func (hub *Hub) fanOut(data []byte) int {
	delivered := 0
	for client := range hub.clients {
		if err := client.enqueue(data); err != nil {
			if !errors.Is(err, ErrClientClosed) {
				hub.logger.Warn("Error sending message to client", "client_id", client.ClientID, "error", err)
			}
			continue
		}
		delivered++
	}
	return delivered
}

// checkLiveness evicts every client that did not answer the previous probe
// and probes the rest.
func (hub *Hub) checkLiveness() {
	for client := range hub.clients {
		if !client.alive {
			hub.logger.Debug("Evicting unresponsive client", "client_id", client.ClientID)
			hub.remove(client)
			continue
		}

		client.alive = false
		client.probe()
	}
}

func (hub *Hub) closeAll() {
	for client := range hub.clients {
		delete(hub.clients, client)
		client.close()
	}
}

// handleInbound runs on the client's read goroutine
func (hub *Hub) handleInbound(client *Client, data []byte) {
	msg, err := ParseInbound(data)
	if err != nil {
		hub.logger.Warn("Error processing message", "client_id", client.ClientID, "error", err)
		return
	}

	hub.logger.Debug("Received", "client_id", client.ClientID, "type", msg.Type)

	switch msg.Type {
	case TypeAcknowledgement:
		ack := msg.Acknowledgement()
		hub.logger.Info("Client acknowledged", "client_id", client.ClientID, "title", ack.Title, "timestamp", ack.Timestamp)
		if hub.onAck != nil {
			hub.onAck(client.ClientID, ack)
		}
	case TypeMessage:
		hub.logger.Info("Client message", "client_id", client.ClientID, "text", msg.Text)
	}
}
