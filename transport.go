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

package joyrelay

import (
	"context"
	"sync"
	"time"
)

// Transport is one duplex frame channel to an endpoint (the peripheral or
// the host). Frame boundaries come from the transport itself: L2CAP
// SEQPACKET datagrams, WebSocket binary messages, or a length prefix on
// serial links. Closing a transport must unblock any pending ReadFrame.
type Transport interface {
	// ReadFrame blocks until one whole frame arrives
	ReadFrame(ctx context.Context) ([]byte, error)

	// WriteFrame sends one whole frame
	WriteFrame(ctx context.Context, frame []byte) error

	// Close closes the transport connection
	Close() error

	// SetTimeout sets the read timeout for the transport
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportL2CAP represents a Bluetooth L2CAP SEQPACKET channel.
	TransportL2CAP TransportType = "l2cap"
	// TransportUART represents a serial rail-connector channel.
	TransportUART TransportType = "uart"
	// TransportWS represents a WebSocket frame tunnel.
	TransportWS TransportType = "ws"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// MockTransport provides a channel-backed Transport for testing. Frames
// queued with QueueFrame come out of ReadFrame; frames written with
// WriteFrame are recorded and also delivered on the Written channel so
// tests can wait on them.
type MockTransport struct {
	inbound   chan []byte
	written   chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	writeLog  [][]byte
	readErr   error
	writeErr  error
	timeout   time.Duration
}

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		inbound: make(chan []byte, 64),
		written: make(chan []byte, 64),
		closed:  make(chan struct{}),
		timeout: time.Second,
	}
}

// ReadFrame implements Transport
func (m *MockTransport) ReadFrame(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	injected := m.readErr
	m.mu.Unlock()
	if injected != nil {
		return nil, injected
	}

	select {
	case f, ok := <-m.inbound:
		if !ok {
			return nil, ErrTransportClosed
		}
		return f, nil
	case <-m.closed:
		return nil, ErrTransportClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WriteFrame implements Transport
func (m *MockTransport) WriteFrame(ctx context.Context, frame []byte) error {
	m.mu.Lock()
	injected := m.writeErr
	m.mu.Unlock()
	if injected != nil {
		return injected
	}

	select {
	case <-m.closed:
		return ErrTransportClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	dup := append([]byte(nil), frame...)
	m.mu.Lock()
	m.writeLog = append(m.writeLog, dup)
	m.mu.Unlock()

	select {
	case m.written <- dup:
	default:
		// Test is not draining the channel; the log still has the frame
	}
	return nil
}

// Close implements Transport
func (m *MockTransport) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

// SetTimeout implements Transport
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	m.timeout = timeout
	m.mu.Unlock()
	return nil
}

// IsConnected implements Transport
func (m *MockTransport) IsConnected() bool {
	select {
	case <-m.closed:
		return false
	default:
		return true
	}
}

// Type implements Transport
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Test helper methods

// QueueFrame makes a frame available to the next ReadFrame call
func (m *MockTransport) QueueFrame(frame []byte) {
	m.inbound <- append([]byte(nil), frame...)
}

// Written returns a channel delivering frames as they are written
func (m *MockTransport) Written() <-chan []byte {
	return m.written
}

// WriteLog returns a snapshot of every frame written so far
func (m *MockTransport) WriteLog() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writeLog))
	copy(out, m.writeLog)
	return out
}

// SetReadError injects an error returned by subsequent ReadFrame calls
func (m *MockTransport) SetReadError(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// SetWriteError injects an error returned by subsequent WriteFrame calls
func (m *MockTransport) SetWriteError(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}
