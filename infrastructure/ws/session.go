package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gamechat/contract"
	"gamechat/domain/event"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var _ contract.EventSink = (*Session)(nil)

var errSendBufferFull = fmt.Errorf("send buffer full")

// Session wraps one websocket connection. Outbound events go through a
// bounded channel so a slow reader never blocks a publisher; when the
// buffer is full the event is dropped.
type Session struct {
	Username string

	log   *slog.Logger
	conn  *websocket.Conn
	send  chan []byte
	once  sync.Once
	close chan struct{}
}

func NewSession(username string, conn *websocket.Conn, log *slog.Logger, bufferSize int) *Session {
	return &Session{
		Username: username,
		log:      log,
		conn:     conn,
		send:     make(chan []byte, bufferSize),
		close:    make(chan struct{}),
	}
}

// Consume enqueues an event for delivery. It never blocks.
func (s *Session) Consume(ctx context.Context, e event.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	select {
	case <-s.close:
		return websocket.ErrCloseSent
	case <-ctx.Done():
		return ctx.Err()
	case s.send <- payload:
		return nil
	default:
		return errSendBufferFull
	}
}

// Start launches the write loop. Call exactly once.
func (s *Session) Start() {
	go s.writeLoop()
}

// Close terminates the connection and stops the write loop.
func (s *Session) Close(code int, reason string) {
	s.once.Do(func() {
		close(s.close)
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = s.conn.Close()
	})
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.close:
			return
		case payload := <-s.send:
			if err := s.writeMessage(payload); err != nil {
				s.log.Debug("Write failed, closing session", "username", s.Username, "error", err)
				s.Close(websocket.CloseGoingAway, "write failed")
				return
			}
		case <-ticker.C:
			if err := s.writePing(); err != nil {
				s.Close(websocket.CloseGoingAway, "ping failed")
				return
			}
		}
	}
}

func (s *Session) writeMessage(payload []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *Session) writePing() error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}
