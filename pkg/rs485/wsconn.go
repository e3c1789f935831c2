// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package rs485

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ErrConnectionClosed is returned when reading from a closed WebSocket tunnel.
var ErrConnectionClosed = errors.New("rs485: websocket connection closed")

// WSConn tunnels the RS-485 byte stream over a WebSocket, for running the
// bridge against a remote serial endpoint. A reader goroutine pumps binary
// messages into a channel so ReadBytes can be timeout-bounded; gorilla
// connections do not survive per-read deadlines. Direction control happens
// at the far end; SetTxMode is a no-op here.
type WSConn struct {
	conn      *websocket.Conn
	incoming  chan []byte
	buf       []byte
	bufOffset int
	closed    atomic.Bool
}

// DialWS connects to a serial-over-WebSocket endpoint with optional HTTP
// Basic auth.
func DialWS(wsURL, username, password string, skipSSLVerify bool) (*WSConn, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	w := &WSConn{
		conn:     conn,
		incoming: make(chan []byte, 32),
	}
	go w.readLoop()
	return w, nil
}

func (w *WSConn) readLoop() {
	defer close(w.incoming)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed.Store(true)
			return
		}
		if messageType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}
		w.incoming <- data
	}
}

// Available returns the number of buffered bytes from the last message.
func (w *WSConn) Available() int {
	return len(w.buf) - w.bufOffset
}

// ReadBytes fills p from buffered messages, waiting no longer than the read
// timeout for more data.
func (w *WSConn) ReadBytes(p []byte) (int, error) {
	got := 0
	deadline := time.NewTimer(ReadTimeout)
	defer deadline.Stop()

	for got < len(p) {
		if w.bufOffset < len(w.buf) {
			n := copy(p[got:], w.buf[w.bufOffset:])
			w.bufOffset += n
			got += n
			continue
		}

		select {
		case data, ok := <-w.incoming:
			if !ok {
				if got > 0 {
					return got, nil
				}
				return 0, ErrConnectionClosed
			}
			w.buf = data
			w.bufOffset = 0
		case <-deadline.C:
			return got, nil
		}
	}
	return got, nil
}

// WriteBytes sends p as one binary message.
func (w *WSConn) WriteBytes(p []byte) (int, error) {
	if w.closed.Load() {
		return 0, ErrConnectionClosed
	}
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Flush is a no-op; messages are framed and sent whole.
func (w *WSConn) Flush() error {
	return nil
}

// SetTxMode is a no-op; the remote end owns the direction line.
func (w *WSConn) SetTxMode(bool) error {
	return nil
}

// Close closes the tunnel.
func (w *WSConn) Close() error {
	w.closed.Store(true)
	return w.conn.Close()
}
