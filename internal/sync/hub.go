package sync

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bookswap/internal/collection"
	"bookswap/internal/logger"
)

const (
	queueSize    = 256
	writeTimeout = 2 * time.Second
)

// Hub fans collection snapshots out to raw TCP listeners and WebSocket
// clients. Published snapshots pass through one queue drained by a single
// goroutine, so every client receives them in publish order.
type Hub struct {
	sources []func() collection.Snapshot

	mu  sync.Mutex // guards the client sets and every write to a client
	tcp map[net.Conn]struct{}
	ws  map[*websocket.Conn]struct{}

	queue     chan SnapshotEvent
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

// NewHub starts a hub. New clients are first sent the current snapshot of
// every source.
func NewHub(sources ...func() collection.Snapshot) *Hub {
	h := &Hub{
		sources: sources,
		tcp:     make(map[net.Conn]struct{}),
		ws:      make(map[*websocket.Conn]struct{}),
		queue:   make(chan SnapshotEvent, queueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go h.run()
	return h
}

// Publisher returns an observer that queues each snapshot for broadcast.
// Collections call observers in mutation order, which the queue preserves.
func (h *Hub) Publisher() collection.Observer {
	return func(s collection.Snapshot) {
		select {
		case h.queue <- NewSnapshotEvent(s):
		case <-h.done:
		}
	}
}

// Add greets conn with the current snapshots and registers it. Both happen
// under the hub lock, so a snapshot published meanwhile is either already
// reflected in the greeting or broadcast to conn afterwards.
func (h *Hub) Add(conn net.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, line := range h.greeting() {
		if err := writeTCP(conn, line); err != nil {
			return err
		}
	}
	h.tcp[conn] = struct{}{}
	return nil
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.tcp, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// AddWS is Add for WebSocket clients.
func (h *Hub) AddWS(ws *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, line := range h.greeting() {
		if err := writeWS(ws, line); err != nil {
			return err
		}
	}
	h.ws[ws] = struct{}{}
	return nil
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.ws, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.tcp),
		WSClients:  len(h.ws),
	}
}

// Close stops the broadcast loop and disconnects every client. Snapshots
// still queued are dropped.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		<-h.stopped

		h.mu.Lock()
		defer h.mu.Unlock()
		for c := range h.tcp {
			_ = c.Close()
			delete(h.tcp, c)
		}
		for ws := range h.ws {
			_ = ws.Close()
			delete(h.ws, ws)
		}
	})
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case <-h.done:
			return
		case ev := <-h.queue:
			h.broadcast(ev)
		}
	}
}

func (h *Hub) broadcast(ev SnapshotEvent) {
	line, err := ev.line()
	if err != nil {
		logger.Component("sync").Error().Err(err).Str("collection", ev.Collection).Msg("encode snapshot")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.tcp {
		if err := writeTCP(c, line); err != nil {
			_ = c.Close()
			delete(h.tcp, c)
		}
	}
	for ws := range h.ws {
		if err := writeWS(ws, line); err != nil {
			_ = ws.Close()
			delete(h.ws, ws)
		}
	}
}

// greeting must be called with mu held.
func (h *Hub) greeting() [][]byte {
	lines := make([][]byte, 0, len(h.sources))
	for _, src := range h.sources {
		ev := NewSnapshotEvent(src())
		line, err := ev.line()
		if err != nil {
			logger.Component("sync").Error().Err(err).Str("collection", ev.Collection).Msg("encode snapshot")
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func writeTCP(c net.Conn, line []byte) error {
	_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := c.Write(line)
	return err
}

func writeWS(ws *websocket.Conn, line []byte) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return ws.WriteMessage(websocket.TextMessage, line)
}
