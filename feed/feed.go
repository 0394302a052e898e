// Package feed publishes live simulation events to websocket
// subscribers. Spectator dashboards connect to /ws and receive every
// broadcast as a JSON message.
package feed

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// client wraps one subscriber connection. Writes are serialized; the
// game loop and the ping path must not interleave frames.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Server broadcasts simulation events to all connected subscribers.
// A nil Server is valid and discards everything.
type Server struct {
	addr string

	mu      sync.Mutex
	clients map[*client]struct{}

	srv *http.Server
	ln  net.Listener
}

// NewServer creates a feed server for the given listen address.
func NewServer(addr string) *Server {
	return &Server{
		addr:    addr,
		clients: make(map[*client]struct{}),
	}
}

// Start begins listening and serving in the background.
func (s *Server) Start() error {
	if s == nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.srv = &http.Server{Handler: mux}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("feed server stopped", "err", err)
		}
	}()
	slog.Info("feed listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound listen address, empty before Start.
func (s *Server) Addr() string {
	if s == nil || s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("feed upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	slog.Info("feed subscriber connected", "clients", n)

	// Drain inbound frames; the feed is one-way but the read loop is
	// what detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	conn.Close()
}

// Broadcast sends v as JSON to every subscriber. Failed clients are
// dropped.
func (s *Server) Broadcast(v interface{}) {
	if s == nil {
		return
	}
	s.mu.Lock()
	list := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		list = append(list, c)
	}
	s.mu.Unlock()

	for _, c := range list {
		if err := c.send(v); err != nil {
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
			c.conn.Close()
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (s *Server) ClientCount() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close shuts the server down and disconnects all subscribers.
func (s *Server) Close() error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(context.Background())
}
