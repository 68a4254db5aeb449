package net

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/barrage/server/internal/world"
)

// Hub upgrades spectator connections and fans snapshots out to them.
// Publish is called from the game loop; ServeHTTP from net/http goroutines.
type Hub struct {
	upgrader     websocket.Upgrader
	nextID       atomic.Uint64
	outSize      int
	writeTimeout time.Duration
	every        int64
	log          *zap.Logger

	mu       sync.Mutex
	sessions map[uint64]*Session
	latest   []byte
}

func NewHub(outSize int, writeTimeout time.Duration, publishEvery int, log *zap.Logger) *Hub {
	if publishEvery <= 0 {
		publishEvery = 1
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  maxInbound,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		outSize:      outSize,
		writeTimeout: writeTimeout,
		every:        int64(publishEvery),
		log:          log,
		sessions:     make(map[uint64]*Session),
	}
}

// ServeHTTP upgrades the request and registers the spectator. A newcomer
// gets the latest frame right away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("upgrade failed", zap.Error(err))
		return
	}

	id := h.nextID.Add(1)
	sess := NewSession(conn, id, h.outSize, h.writeTimeout, h.log)
	sess.onClose = h.remove

	h.mu.Lock()
	h.sessions[id] = sess
	latest := h.latest
	h.mu.Unlock()

	sess.Start()
	h.log.Info("spectator connected", zap.Uint64("session", id), zap.String("ip", sess.IP))
	if latest != nil {
		sess.Send(latest)
	}
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID)
	h.mu.Unlock()
	h.log.Info("spectator disconnected", zap.Uint64("session", s.ID))
}

// Count returns the number of connected spectators.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Publish encodes the snapshot once and queues it for every spectator.
// Only every Nth tick is sent. Never blocks.
func (h *Hub) Publish(snap *world.Snapshot) {
	if snap.Tick%h.every != 0 {
		return
	}
	data, err := EncodeFrame(snap)
	if err != nil {
		h.log.Error("snapshot encode failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.latest = data
	subs := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	// Send may close a session, which takes h.mu in remove.
	for _, s := range subs {
		s.Send(data)
	}
}

// Serve runs an HTTP server with the hub mounted at path until ctx is done.
func (h *Hub) Serve(ctx context.Context, addr, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, h)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	h.closeAll()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	subs := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		s.Close()
	}
}
