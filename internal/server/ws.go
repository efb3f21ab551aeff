// Package server adapts gateway WebSocket connections into the byte-stream
// form the relay expects, so WebSocket and raw TCP clients share one pool.
package server

import (
	"io"

	"github.com/gorilla/websocket"
)

// wsStream wraps a WebSocket connection as an io.ReadWriteCloser. Each Read
// yields the payload of one inbound message, matching the relay's
// one-read-one-message model; each Write sends one text message.
type wsStream struct {
	conn    *websocket.Conn
	pending []byte
}

func newWSStream(conn *websocket.Conn) *wsStream {
	return &wsStream{conn: conn}
}

func (ws *wsStream) Read(p []byte) (int, error) {
	if len(ws.pending) == 0 {
		_, payload, err := ws.conn.ReadMessage()
		if err != nil {
			return 0, translateWSError(err)
		}
		ws.pending = payload
	}

	n := copy(p, ws.pending)
	// A message larger than the buffer is truncated, as with a TCP read.
	ws.pending = nil
	return n, nil
}

func (ws *wsStream) Write(p []byte) (int, error) {
	if err := ws.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, translateWSError(err)
	}
	return len(p), nil
}

func (ws *wsStream) Close() error {
	return ws.conn.Close()
}

// translateWSError maps normal WebSocket closure onto io.EOF so the session
// handler treats it like any other end of stream.
func translateWSError(err error) error {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) {
		return io.EOF
	}
	return err
}
