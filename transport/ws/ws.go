// Copyright 2026 The SwitchEmu Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ws relays report frames over a WebSocket, one binary message
// per frame. It is used to bridge a relay session to a remote tool, for
// example a capture viewer or an emulated console running off-box.
package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	joyrelay "github.com/switchemu/go-joyrelay"
)

// Transport implements joyrelay.Transport over a WebSocket connection.
//
// Errors from a gorilla read loop are permanent, so a single reader
// goroutine owns the connection's read side and hands binary messages
// to ReadFrame over a channel. Cancellation comes from the context or
// from Close, never from read deadlines.
type Transport struct {
	conn    *websocket.Conn
	name    string
	frames  chan []byte
	readErr error
	errMu   sync.Mutex
	writeMu sync.Mutex

	timeoutMu sync.Mutex
	timeout   time.Duration

	closed    chan struct{}
	closeOnce sync.Once
}

// Dial connects to a WebSocket endpoint (ws:// or wss:// URL).
func Dial(ctx context.Context, url string) (*Transport, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return newTransport(conn, url), nil
}

// Upgrade turns an incoming HTTP request into a frame transport. The
// caller owns routing and auth; this only performs the protocol upgrade.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Transport, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket upgrade failed: %w", err)
	}
	return newTransport(conn, r.RemoteAddr), nil
}

// NewFromConn wraps an already-established WebSocket connection.
func NewFromConn(conn *websocket.Conn) *Transport {
	return newTransport(conn, conn.RemoteAddr().String())
}

func newTransport(conn *websocket.Conn, name string) *Transport {
	t := &Transport{
		conn:    conn,
		name:    name,
		frames:  make(chan []byte, 16),
		timeout: 500 * time.Millisecond,
		closed:  make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// readLoop is the connection's single reader. It exits on the first
// error, which for a WebSocket is terminal by contract.
func (t *Transport) readLoop() {
	defer close(t.frames)
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			t.errMu.Lock()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.readErr = joyrelay.ErrLinkClosed
			} else {
				t.readErr = err
			}
			t.errMu.Unlock()
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		select {
		case t.frames <- data:
		case <-t.closed:
			return
		}
	}
}

func (t *Transport) takeReadErr() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	if t.readErr != nil {
		return t.readErr
	}
	return joyrelay.ErrTransportClosed
}

// ReadFrame returns the next binary message. The configured timeout
// bounds the wait and surfaces as a retryable error so the caller can
// observe cancellation.
func (t *Transport) ReadFrame(ctx context.Context) ([]byte, error) {
	var wait <-chan time.Time
	if d := t.opTimeout(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		wait = timer.C
	}

	select {
	case data, ok := <-t.frames:
		if !ok {
			return nil, joyrelay.NewTransportReadError("ReadFrame", t.name, t.takeReadErr())
		}
		return data, nil
	case <-wait:
		return nil, joyrelay.NewTimeoutError("ReadFrame", t.name)
	case <-t.closed:
		return nil, joyrelay.NewTransportReadError("ReadFrame", t.name, joyrelay.ErrTransportClosed)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WriteFrame writes one frame as a binary message.
func (t *Transport) WriteFrame(ctx context.Context, frame []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if !t.IsConnected() {
		return joyrelay.NewTransportWriteError("WriteFrame", t.name, joyrelay.ErrTransportClosed)
	}

	if d := t.opTimeout(); d > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(d)); err != nil {
			return joyrelay.NewTransportWriteError("WriteFrame", t.name, err)
		}
	}
	if err := t.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return joyrelay.NewTransportWriteError("WriteFrame", t.name, err)
	}
	return nil
}

// SetTimeout sets how long a ReadFrame waits before reporting a
// retryable timeout, and the write deadline.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeoutMu.Lock()
	defer t.timeoutMu.Unlock()
	t.timeout = timeout
	return nil
}

func (t *Transport) opTimeout() time.Duration {
	t.timeoutMu.Lock()
	defer t.timeoutMu.Unlock()
	return t.timeout
}

// Close sends a close frame on a best-effort basis and tears the
// connection down. Pending reads return with an error.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = t.conn.Close()
	})
	if err != nil {
		return fmt.Errorf("websocket close failed: %w", err)
	}
	return nil
}

// IsConnected reports whether the connection is still open.
func (t *Transport) IsConnected() bool {
	select {
	case <-t.closed:
		return false
	default:
		return true
	}
}

// Type returns the transport type.
func (*Transport) Type() joyrelay.TransportType {
	return joyrelay.TransportWS
}

// Ensure Transport implements joyrelay.Transport
var _ joyrelay.Transport = (*Transport)(nil)
