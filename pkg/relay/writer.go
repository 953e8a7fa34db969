package relay

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ErrStreamClosed is the expected terminal condition for writes after the
// caller hung up or the stream was ended. It is not an application error.
var ErrStreamClosed = errors.New("stream closed")

// wsConn is the slice of *websocket.Conn the writer needs.
type wsConn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Writer serializes outbound frames onto one websocket. The turn-processing
// loop and the payment-wait watcher both write to the same stream, so every
// write goes through the mutex, and a closed stream is remembered so late
// writers (the watcher, typically) can bail out instead of erroring.
type Writer struct {
	mu           sync.Mutex
	conn         wsConn
	writeTimeout time.Duration
	closed       atomic.Bool
}

// NewWriter wraps a websocket connection.
func NewWriter(conn wsConn, writeTimeout time.Duration) *Writer {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Writer{conn: conn, writeTimeout: writeTimeout}
}

// WriteText sends one spoken token; last marks the end of the turn.
func (w *Writer) WriteText(token string, last bool) error {
	return w.write(EncodeText(token, last))
}

// WriteEnd sends the stream-termination frame and marks the stream closed.
func (w *Writer) WriteEnd() error {
	err := w.write(EncodeEnd())
	w.closed.Store(true)
	return err
}

func (w *Writer) write(data []byte) error {
	if w.closed.Load() {
		return ErrStreamClosed
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed.Load() {
		return ErrStreamClosed
	}
	_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		w.closed.Store(true)
		return errors.Join(ErrStreamClosed, err)
	}
	return nil
}

// MarkClosed records that the underlying stream is gone (e.g. the read loop
// saw a disconnect). Subsequent writes return ErrStreamClosed.
func (w *Writer) MarkClosed() {
	w.closed.Store(true)
}

// Closed reports whether the stream can no longer be written to.
func (w *Writer) Closed() bool {
	return w.closed.Load()
}
