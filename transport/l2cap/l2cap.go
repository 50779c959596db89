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

//go:build linux

// Package l2cap relays report frames over Bluetooth L2CAP sockets. The
// Joy-Con HID channels are SEQPACKET, so one socket read or write is
// exactly one frame and no extra framing layer is needed.
package l2cap

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	joyrelay "github.com/switchemu/go-joyrelay"
)

// HID over Bluetooth uses fixed PSMs for the two channels.
const (
	PSMControl   = 17
	PSMInterrupt = 19
)

// A SEQPACKET read must offer a buffer at least as large as the incoming
// packet or the kernel truncates it. HID frames are well under 1 KiB.
const readBufferSize = 1024

// Transport implements joyrelay.Transport over one connected L2CAP
// socket.
type Transport struct {
	fd      int
	name    string
	readMu  sync.Mutex
	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
}

// ParseBDAddr parses a Bluetooth device address in AA:BB:CC:DD:EE:FF
// form into the little-endian byte order the kernel expects.
func ParseBDAddr(addr string) ([6]byte, error) {
	var out [6]byte
	parts := strings.Split(addr, ":")
	if len(parts) != 6 {
		return out, fmt.Errorf("invalid Bluetooth address %q", addr)
	}
	for i, p := range parts {
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return out, fmt.Errorf("invalid Bluetooth address %q: %w", addr, err)
		}
		out[5-i] = byte(b)
	}
	return out, nil
}

// FormatBDAddr renders a kernel-order address back into display form.
func FormatBDAddr(addr [6]byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		addr[5], addr[4], addr[3], addr[2], addr[1], addr[0])
}

func newSocket() (int, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET|unix.SOCK_CLOEXEC, unix.BTPROTO_L2CAP)
	if err != nil {
		return -1, fmt.Errorf("failed to create L2CAP socket: %w", err)
	}
	return fd, nil
}

// Dial connects to the given device address on the given PSM.
func Dial(addr string, psm uint16) (*Transport, error) {
	bd, err := ParseBDAddr(addr)
	if err != nil {
		return nil, err
	}

	fd, err := newSocket()
	if err != nil {
		return nil, err
	}

	sa := &unix.SockaddrL2{PSM: psm, Addr: bd}
	if err := unix.Connect(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to connect to %s psm %d: %w", addr, psm, err)
	}

	t := &Transport{fd: fd, name: fmt.Sprintf("%s/%d", addr, psm)}
	if err := t.SetTimeout(500 * time.Millisecond); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return t, nil
}

// Listener accepts one L2CAP connection on a local PSM.
type Listener struct {
	fd   int
	psm  uint16
	once sync.Once
}

// Listen binds the adapter's own address (or any, if addr is empty) on
// the given PSM and starts listening.
func Listen(addr string, psm uint16) (*Listener, error) {
	var bd [6]byte
	if addr != "" {
		var err error
		bd, err = ParseBDAddr(addr)
		if err != nil {
			return nil, err
		}
	}

	fd, err := newSocket()
	if err != nil {
		return nil, err
	}
	if err := unix.Bind(fd, &unix.SockaddrL2{PSM: psm, Addr: bd}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to bind L2CAP psm %d: %w", psm, err)
	}
	if err := unix.Listen(fd, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to listen on L2CAP psm %d: %w", psm, err)
	}
	return &Listener{fd: fd, psm: psm}, nil
}

// Accept blocks until a peer connects and returns its transport.
func (l *Listener) Accept() (*Transport, error) {
	nfd, sa, err := unix.Accept(l.fd)
	if err != nil {
		return nil, fmt.Errorf("L2CAP accept failed: %w", err)
	}

	name := fmt.Sprintf("accepted/%d", l.psm)
	if l2, ok := sa.(*unix.SockaddrL2); ok {
		name = fmt.Sprintf("%s/%d", FormatBDAddr(l2.Addr), l.psm)
	}

	t := &Transport{fd: nfd, name: name}
	if err := t.SetTimeout(500 * time.Millisecond); err != nil {
		_ = unix.Close(nfd)
		return nil, err
	}
	return t, nil
}

// Close stops the listener.
func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		err = unix.Close(l.fd)
	})
	if err != nil {
		return fmt.Errorf("L2CAP listener close failed: %w", err)
	}
	return nil
}

// ReadFrame reads one HID frame. The socket's receive timeout surfaces
// as a retryable timeout error so the caller can observe cancellation.
func (t *Transport) ReadFrame(ctx context.Context) ([]byte, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := make([]byte, readBufferSize)
	n, err := unix.Read(t.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
			return nil, joyrelay.NewTimeoutError("ReadFrame", t.name)
		}
		return nil, joyrelay.NewTransportReadError("ReadFrame", t.name, err)
	}
	if n == 0 {
		// Zero-length read on SEQPACKET means the peer hung up
		return nil, joyrelay.NewTransportReadError("ReadFrame", t.name, joyrelay.ErrLinkClosed)
	}
	return buf[:n], nil
}

// WriteFrame writes one HID frame as a single packet.
func (t *Transport) WriteFrame(ctx context.Context, frame []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := unix.Write(t.fd, frame)
	if err != nil {
		return joyrelay.NewTransportWriteError("WriteFrame", t.name, err)
	}
	if n != len(frame) {
		return joyrelay.NewTransportWriteError("WriteFrame", t.name,
			fmt.Errorf("short write: %d of %d bytes", n, len(frame)))
	}
	return nil
}

// SetTimeout sets the socket receive timeout.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(t.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return fmt.Errorf("L2CAP set timeout failed: %w", err)
	}
	return nil
}

// Close shuts the socket down and closes it. Shutdown first so a reader
// blocked in ReadFrame wakes up before the descriptor goes away.
func (t *Transport) Close() error {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	_ = unix.Shutdown(t.fd, unix.SHUT_RDWR)
	if err := unix.Close(t.fd); err != nil {
		return fmt.Errorf("L2CAP close failed: %w", err)
	}
	return nil
}

// IsConnected reports whether the socket is still open.
func (t *Transport) IsConnected() bool {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	return !t.closed
}

// Type returns the transport type.
func (*Transport) Type() joyrelay.TransportType {
	return joyrelay.TransportL2CAP
}

// Ensure Transport implements joyrelay.Transport
var _ joyrelay.Transport = (*Transport)(nil)
