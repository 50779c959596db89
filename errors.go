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
	"errors"
	"fmt"
	"io"
	"syscall"
)

// Error categories for relay error handling
var (
	// Transport errors - a timeout is retryable, the rest end the link
	ErrTransportTimeout = errors.New("transport timeout")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportWrite   = errors.New("transport write failed")
	ErrTransportClosed  = errors.New("transport is closed")

	// Codec errors
	ErrMalformedFrame = errors.New("frame too short for any known layout")

	// Payload errors - fatal at startup
	ErrPayloadEmpty = errors.New("spoof payload is empty")

	// Session errors
	ErrLinkClosed = errors.New("relay link closed")
)

// ErrorType represents the category of error for relay loop decisions
type ErrorType int

const (
	// ErrorTypeTransient indicates the operation can be retried on the same link
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent indicates the link is unusable
	ErrorTypePermanent
	// ErrorTypeTimeout indicates a read deadline expired (retry after a context check)
	ErrorTypeTimeout
)

// TransportError wraps transport-level errors with additional context
type TransportError struct {
	Err       error     // Underlying error
	Op        string    // Operation that failed
	Port      string    // Endpoint identifier (BD address, device path, URL)
	Type      ErrorType // Error category
	Retryable bool      // Whether the relay loop may continue
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport error with consistent formatting
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a timeout error for transport operations
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// NewTransportReadError wraps a terminal read failure
func NewTransportReadError(op, port string, err error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrTransportRead, err), ErrorTypePermanent)
}

// NewTransportWriteError wraps a terminal write failure
func NewTransportWriteError(op, port string, err error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrTransportWrite, err), ErrorTypePermanent)
}

// IsRetryable returns true if the relay loop may continue after this error.
// Malformed frames and read timeouts are retryable; everything else tears
// the link down.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrMalformedFrame):
		return true
	default:
		return false
	}
}

// IsFatal returns true if the error indicates the link is gone and the
// session must tear down both directions.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type == ErrorTypePermanent
	}

	if isLinkGoneError(err) {
		return true
	}

	switch {
	case errors.Is(err, ErrTransportClosed),
		errors.Is(err, ErrLinkClosed),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe):
		return true
	default:
		return false
	}
}

// isLinkGoneError checks for OS-level errors indicating the remote side
// disconnected or the local socket vanished mid-I/O.
func isLinkGoneError(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	//nolint:exhaustive // Only checking specific link-gone errors, not all errno values
	switch errno {
	case syscall.EIO, syscall.ENXIO, syscall.ENODEV,
		syscall.ECONNRESET, syscall.ENOTCONN, syscall.ESHUTDOWN,
		syscall.EBADF, syscall.EPIPE:
		return true
	}
	return false
}
