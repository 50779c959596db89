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

// Package uart relays report frames over a serial line to a debug probe
// or Joy-Con breakout board. The line carries no framing of its own, so
// each report is prefixed with a 2-byte big-endian length.
package uart

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	joyrelay "github.com/switchemu/go-joyrelay"
)

// Joy-Con UART links run at 3 Mbaud after the initial handshake.
const defaultBaudRate = 3000000

const lengthPrefixSize = 2

// Transport implements joyrelay.Transport over a serial port.
type Transport struct {
	port     serial.Port
	portName string
	readMu   sync.Mutex
	writeMu  sync.Mutex
	closed   bool
	closeMu  sync.Mutex
}

// New opens the named serial port at the Joy-Con line rate.
func New(portName string) (*Transport, error) {
	return NewWithBaudRate(portName, defaultBaudRate)
}

// NewWithBaudRate opens the named serial port at an explicit line rate,
// for probes that bridge at a slower speed.
func NewWithBaudRate(portName string, baudRate int) (*Transport, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open UART port %s: %w", portName, err)
	}

	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set UART read timeout: %w", err)
	}

	return &Transport{
		port:     port,
		portName: portName,
	}, nil
}

// ReadFrame reads one length-prefixed frame. A timeout elapsing with no
// bytes received returns a retryable timeout error; a timeout striking
// mid-frame is a framing fault and is reported as a read error.
func (t *Transport) ReadFrame(ctx context.Context) ([]byte, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var prefix [lengthPrefixSize]byte
	n, err := t.port.Read(prefix[:])
	if err != nil {
		return nil, joyrelay.NewTransportReadError("ReadFrame", t.portName, err)
	}
	if n == 0 {
		return nil, joyrelay.NewTimeoutError("ReadFrame", t.portName)
	}
	if n < lengthPrefixSize {
		if err := t.readFull(ctx, prefix[n:]); err != nil {
			return nil, err
		}
	}

	frameLen := int(binary.BigEndian.Uint16(prefix[:]))
	if frameLen == 0 || frameLen > 1024 {
		return nil, joyrelay.NewTransportReadError("ReadFrame", t.portName,
			fmt.Errorf("implausible frame length %d", frameLen))
	}

	buf := make([]byte, frameLen)
	if err := t.readFull(ctx, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readFull reads until buf is filled, tolerating the zero-byte reads the
// serial layer produces on its internal timeout.
func (t *Transport) readFull(ctx context.Context, buf []byte) error {
	got := 0
	for got < len(buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := t.port.Read(buf[got:])
		if err != nil {
			return joyrelay.NewTransportReadError("ReadFrame", t.portName, err)
		}
		got += n
	}
	return nil
}

// WriteFrame writes one length-prefixed frame.
func (t *Transport) WriteFrame(ctx context.Context, frame []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(frame) > 0xFFFF {
		return joyrelay.NewTransportWriteError("WriteFrame", t.portName,
			fmt.Errorf("frame too large for length prefix: %d bytes", len(frame)))
	}

	var prefix [lengthPrefixSize]byte
	binary.BigEndian.PutUint16(prefix[:], uint16(len(frame)))

	for _, chunk := range [][]byte{prefix[:], frame} {
		n, err := t.port.Write(chunk)
		if err != nil {
			return joyrelay.NewTransportWriteError("WriteFrame", t.portName, err)
		}
		if n != len(chunk) {
			return joyrelay.NewTransportWriteError("WriteFrame", t.portName,
				errors.New("short write"))
		}
	}
	if err := t.port.Drain(); err != nil {
		return joyrelay.NewTransportWriteError("WriteFrame", t.portName, err)
	}
	return nil
}

// SetTimeout sets the per-read timeout of the underlying port.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if err := t.port.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("UART set timeout failed: %w", err)
	}
	return nil
}

// Close closes the port. Pending reads return with an error.
func (t *Transport) Close() error {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("UART close failed: %w", err)
	}
	return nil
}

// IsConnected reports whether the port is still open.
func (t *Transport) IsConnected() bool {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	return !t.closed
}

// Type returns the transport type.
func (*Transport) Type() joyrelay.TransportType {
	return joyrelay.TransportUART
}

// Ensure Transport implements joyrelay.Transport
var _ joyrelay.Transport = (*Transport)(nil)
