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

//go:build !linux

// Package l2cap relays report frames over Bluetooth L2CAP sockets. Only
// Linux exposes the BlueZ socket API; other platforms get stubs so the
// command still builds for the UART and WebSocket transports.
package l2cap

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	joyrelay "github.com/switchemu/go-joyrelay"
)

const (
	PSMControl   = 17
	PSMInterrupt = 19
)

var errUnsupported = errors.New("L2CAP sockets require linux")

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

// Transport is unavailable on this platform.
type Transport struct{}

// Listener is unavailable on this platform.
type Listener struct{}

// Dial always fails on this platform.
func Dial(_ string, _ uint16) (*Transport, error) {
	return nil, errUnsupported
}

// Listen always fails on this platform.
func Listen(_ string, _ uint16) (*Listener, error) {
	return nil, errUnsupported
}

// Accept always fails on this platform.
func (*Listener) Accept() (*Transport, error) { return nil, errUnsupported }

// Close is a no-op on this platform.
func (*Listener) Close() error { return nil }

func (*Transport) ReadFrame(context.Context) ([]byte, error) { return nil, errUnsupported }
func (*Transport) WriteFrame(context.Context, []byte) error  { return errUnsupported }
func (*Transport) SetTimeout(time.Duration) error            { return errUnsupported }
func (*Transport) Close() error                              { return nil }
func (*Transport) IsConnected() bool                         { return false }
func (*Transport) Type() joyrelay.TransportType              { return joyrelay.TransportL2CAP }

var _ joyrelay.Transport = (*Transport)(nil)
