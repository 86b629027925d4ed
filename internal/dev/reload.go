package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/fsroute/pkg/router"
)

// ReloadMessageType represents the type of reload message.
type ReloadMessageType string

const (
	ReloadTypeRoutes ReloadMessageType = "routes"
	ReloadTypeError  ReloadMessageType = "error"
	ReloadTypeClear  ReloadMessageType = "clear"
)

// RouteEntry describes one route in a routes message.
type RouteEntry struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern"`
}

// ReloadMessage is sent to watchers via WebSocket.
type ReloadMessage struct {
	Type   ReloadMessageType `json:"type"`
	Routes []RouteEntry      `json:"routes,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// RoutesMessage builds the message announcing t.
func RoutesMessage(t *router.Table) ReloadMessage {
	msg := ReloadMessage{Type: ReloadTypeRoutes, Routes: []RouteEntry{}}
	if t == nil {
		return msg
	}
	for _, r := range t.SortedRoutes() {
		msg.Routes = append(msg.Routes, RouteEntry{ID: r.ID, Pattern: r.Pattern})
	}
	return msg
}

// ReloadServer pushes route table updates to WebSocket clients.
type ReloadServer struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// current is sent to each client on connect.
	current func() ReloadMessage
}

// NewReloadServer creates a new reload server. current, when non-nil,
// supplies the message a newly connected client receives first.
func NewReloadServer(logger *slog.Logger, current func() ReloadMessage) *ReloadServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadServer{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:  logger.With("component", "reload"),
		current: current,
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (r *ReloadServer) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	if r.current != nil {
		if data, err := json.Marshal(r.current()); err == nil {
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				conn.Close()
				return
			}
		}
	}

	r.mu.Lock()
	r.clients[conn] = true
	r.mu.Unlock()

	// Clients never send anything meaningful; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	r.mu.Lock()
	delete(r.clients, conn)
	r.mu.Unlock()
	conn.Close()
}

// NotifyRoutes announces a newly installed table.
func (r *ReloadServer) NotifyRoutes(t *router.Table) {
	r.broadcast(RoutesMessage(t))
}

// NotifyError announces a failed rebuild.
func (r *ReloadServer) NotifyError(errMsg string) {
	r.broadcast(ReloadMessage{Type: ReloadTypeError, Error: errMsg})
}

// ClearError announces that a previous error is resolved.
func (r *ReloadServer) ClearError() {
	r.broadcast(ReloadMessage{Type: ReloadTypeClear})
}

func (r *ReloadServer) broadcast(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	r.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(r.clients))
	for client := range r.clients {
		clients = append(clients, client)
	}
	r.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			r.mu.Lock()
			delete(r.clients, client)
			r.mu.Unlock()
			client.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (r *ReloadServer) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close closes all client connections.
func (r *ReloadServer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for client := range r.clients {
		client.Close()
		delete(r.clients, client)
	}
}
