package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxInbound caps what a spectator may send; the feed is one-way.
const maxInbound = 512

// Session is one spectator connection. The writer goroutine owns the
// websocket for writes; the game loop only touches OutQueue via Send.
type Session struct {
	ID   uint64
	conn *websocket.Conn

	OutQueue chan []byte // writer goroutine reads from here

	IP string

	writeTimeout time.Duration
	onClose      func(*Session)

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn *websocket.Conn, id uint64, outSize int, writeTimeout time.Duration, log *zap.Logger) *Session {
	return &Session{
		ID:           id,
		conn:         conn,
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		log:          log.With(zap.Uint64("session", id)),
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send queues a frame without blocking. If OutQueue is full, the session is
// disconnected (backpressure).
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- data:
	default:
		s.log.Warn("output queue full, dropping slow spectator")
		s.Close()
	}
}

// Close shuts the session down once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop discards inbound messages and notices when the peer goes away.
func (s *Session) readLoop() {
	defer s.Close()
	s.conn.SetReadLimit(maxInbound)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
	}
}

// writeLoop drains OutQueue onto the websocket.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
