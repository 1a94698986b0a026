package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Scrimzay/npcbattle/internal/world"
)

// Source is what the hub needs from a running simulation.
type Source interface {
	LastFrame() (world.Frame, bool)
	Kills() int64
}

type outbound struct {
	kind int // websocket message type
	data []byte
}

type KillEvent struct {
	Type   string `json:"type"`
	Killer string `json:"killer"`
	Victim string `json:"victim"`
}

type StatsEvent struct {
	Type   string `json:"type"`
	Tick   uint64 `json:"tick"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alive  int    `json:"alive"`
	Kills  int64  `json:"kills"`
}

// Hub fans frames and kill events out to websocket clients. Frames go out as
// binary row-major cells followed by a stats message; kills go out as JSON
// text. Producers never block: when the queue is full the event is dropped.
type Hub struct {
	source     Source
	log        *zap.Logger
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	queue      chan outbound
	mu         sync.RWMutex
	writeMu    map[*websocket.Conn]*sync.Mutex // per-conn write locks
	done       chan struct{}
	dropped    int64
}

func NewHub(source Source, log *zap.Logger) *Hub {
	return &Hub{
		source:     source,
		log:        log.Named("hub"),
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		queue:      make(chan outbound, 256),
		writeMu:    make(map[*websocket.Conn]*sync.Mutex),
		done:       make(chan struct{}),
	}
}

// SetSource attaches the simulation once it exists.
func (h *Hub) SetSource(source Source) {
	h.mu.Lock()
	h.source = source
	h.mu.Unlock()
}

// Run owns the client set until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.writeMu[conn] = &sync.Mutex{}
			h.mu.Unlock()

			// Send current state
			if f, ok := h.lastFrame(); ok {
				for _, msg := range h.frameMessages(f) {
					if err := h.write(conn, msg); err != nil {
						h.log.Debug("Initial send failed", zap.Error(err))
						h.drop(conn)
						break
					}
				}
			}

		case conn := <-h.unregister:
			h.drop(conn)

		case msg := <-h.queue:
			h.broadcast(msg)
		}
	}
}

// Register reports false once the hub has stopped; the caller keeps
// ownership of conn in that case.
func (h *Hub) Register(conn *websocket.Conn) bool {
	select {
	case h.register <- conn:
		return true

	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:

	case <-h.done:
		conn.Close()
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) OnKill(killer, victim string) {
	data, err := json.Marshal(KillEvent{Type: "kill", Killer: killer, Victim: victim})
	if err != nil {
		h.log.Warn("Kill marshal failed", zap.Error(err))
		return
	}

	h.enqueue(outbound{kind: websocket.TextMessage, data: data})
}

func (h *Hub) ShowFrame(f world.Frame) {
	for _, msg := range h.frameMessages(f) {
		h.enqueue(msg)
	}
}

func (h *Hub) enqueue(msg outbound) {
	select {
	case h.queue <- msg:

	default:
		h.mu.Lock()
		h.dropped++
		h.mu.Unlock()
	}
}

func (h *Hub) frameMessages(f world.Frame) []outbound {
	var kills int64
	h.mu.RLock()
	if h.source != nil {
		kills = h.source.Kills()
	}
	h.mu.RUnlock()

	stats, err := json.Marshal(StatsEvent{
		Type:   "stats",
		Tick:   f.Tick,
		Width:  f.Width,
		Height: f.Height,
		Alive:  f.Alive,
		Kills:  kills,
	})
	if err != nil {
		h.log.Warn("Stats marshal failed", zap.Error(err))
		return nil
	}

	cells := append([]byte(nil), f.Cells...)
	return []outbound{
		{kind: websocket.BinaryMessage, data: cells},
		{kind: websocket.TextMessage, data: stats},
	}
}

func (h *Hub) lastFrame() (world.Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.source == nil {
		return world.Frame{}, false
	}

	return h.source.LastFrame()
}

func (h *Hub) broadcast(msg outbound) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := h.write(conn, msg); err != nil {
			h.log.Debug("Broadcast failed", zap.Error(err))
			h.drop(conn)
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, msg outbound) error {
	h.mu.RLock()
	mu, ok := h.writeMu[conn]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()
	return conn.WriteMessage(msg.kind, msg.data)
}

// writeDirect sends to one client outside the broadcast queue.
func (h *Hub) writeDirect(conn *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return h.write(conn, outbound{kind: websocket.TextMessage, data: data})
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		delete(h.writeMu, conn)
		conn.Close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
	h.writeMu = make(map[*websocket.Conn]*sync.Mutex)

	if h.dropped > 0 {
		h.log.Info("Hub closed", zap.Int64("dropped", h.dropped))
	}
}

var (
	_ world.Observer = (*Hub)(nil)
	_ world.Display  = (*Hub)(nil)
)
