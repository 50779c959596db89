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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	te := NewTransportError("ReadFrame", "AA:BB:CC:DD:EE:FF/19", base, ErrorTypePermanent)

	assert.Contains(t, te.Error(), "ReadFrame")
	assert.Contains(t, te.Error(), "AA:BB:CC:DD:EE:FF/19")
	assert.ErrorIs(t, te, base)

	noPort := NewTransportError("WriteFrame", "", base, ErrorTypeTransient)
	assert.Equal(t, "WriteFrame: boom", noPort.Error())
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "timeout error", err: NewTimeoutError("ReadFrame", "port"), want: true},
		{name: "bare timeout sentinel", err: ErrTransportTimeout, want: true},
		{name: "malformed frame", err: fmt.Errorf("%w: 1 byte", ErrMalformedFrame), want: true},
		{name: "read error", err: NewTransportReadError("ReadFrame", "port", errors.New("eio")), want: false},
		{name: "write error", err: NewTransportWriteError("WriteFrame", "port", errors.New("epipe")), want: false},
		{name: "closed", err: ErrTransportClosed, want: false},
		{name: "plain error", err: errors.New("whatever"), want: false},
	}

	for _, tt := range tests {
		tt := tt // capture range variable for parallel subtests (pre-Go 1.22 semantics)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "timeout", err: NewTimeoutError("ReadFrame", "port"), want: false},
		{name: "permanent transport error", err: NewTransportReadError("ReadFrame", "port", errors.New("x")), want: true},
		{name: "closed sentinel", err: ErrTransportClosed, want: true},
		{name: "link closed sentinel", err: ErrLinkClosed, want: true},
		{name: "eof", err: io.EOF, want: true},
		{name: "closed pipe", err: io.ErrClosedPipe, want: true},
		{name: "econnreset", err: fmt.Errorf("read: %w", syscall.ECONNRESET), want: true},
		{name: "ebadf", err: fmt.Errorf("read: %w", syscall.EBADF), want: true},
		{name: "eagain", err: fmt.Errorf("read: %w", syscall.EAGAIN), want: false},
		{name: "plain error", err: errors.New("whatever"), want: false},
	}

	for _, tt := range tests {
		tt := tt // capture range variable for parallel subtests (pre-Go 1.22 semantics)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

func TestTimeoutErrorIsNotFatal(t *testing.T) {
	t.Parallel()

	err := NewTimeoutError("ReadFrame", "port")
	require.True(t, IsRetryable(err))
	assert.False(t, IsFatal(err))
	assert.ErrorIs(t, err, ErrTransportTimeout)
}
