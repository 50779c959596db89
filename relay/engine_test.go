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

package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	joyrelay "github.com/switchemu/go-joyrelay"
)

// testLink wires two mock transports into a link plus a running engine.
type testLink struct {
	peripheral *joyrelay.MockTransport
	host       *joyrelay.MockTransport
	engine     *Engine
	done       chan error
}

func startEngine(t *testing.T, store *joyrelay.PayloadStore) (*testLink, context.CancelFunc) {
	t.Helper()

	peripheral := joyrelay.NewMockTransport()
	host := joyrelay.NewMockTransport()
	engine := NewEngine(Link{Peripheral: peripheral, Host: host},
		joyrelay.NewInterceptor(store), DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	tl := &testLink{
		peripheral: peripheral,
		host:       host,
		engine:     engine,
		done:       make(chan error, 1),
	}
	go func() { tl.done <- engine.Run(ctx) }()
	return tl, cancel
}

// recvFrame waits for the next frame written to a mock transport.
func recvFrame(t *testing.T, m *joyrelay.MockTransport) []byte {
	t.Helper()
	select {
	case f := <-m.Written():
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

// waitDone asserts the engine stops within a bounded time.
func waitDone(t *testing.T, tl *testLink) error {
	t.Helper()
	select {
	case err := <-tl.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
		return nil
	}
}

func standardInputFrame(timer byte) []byte {
	raw := make([]byte, 50)
	raw[0] = 0xA1
	raw[1] = 0x30
	raw[2] = timer
	return raw
}

func mcuRequestFrame(opcode byte, args ...byte) []byte {
	raw := make([]byte, 50)
	raw[0] = 0xA2
	raw[1] = 0x11
	raw[11] = opcode
	copy(raw[12:], args)
	return raw
}

func TestEngine_BidirectionalPassThrough(t *testing.T) {
	t.Parallel()

	tl, cancel := startEngine(t, nil)
	defer cancel()

	in := standardInputFrame(7)
	tl.peripheral.QueueFrame(in)
	assert.Equal(t, in, recvFrame(t, tl.host))

	out := mcuRequestFrame(0x01)
	tl.host.QueueFrame(out)
	assert.Equal(t, out, recvFrame(t, tl.peripheral))

	cancel()
	require.NoError(t, waitDone(t, tl))

	m := tl.engine.GetMetrics()
	assert.Equal(t, int64(1), m.FramesToHost)
	assert.Equal(t, int64(1), m.FramesToPeripheral)
	assert.Equal(t, int64(0), m.Substituted)
}

func TestEngine_HostCloseStopsBothLoops(t *testing.T) {
	t.Parallel()

	tl, cancel := startEngine(t, nil)
	defer cancel()

	// Prove the engine is live first.
	tl.peripheral.QueueFrame(standardInputFrame(1))
	recvFrame(t, tl.host)

	require.NoError(t, tl.host.Close())

	err := waitDone(t, tl)
	require.Error(t, err)
	assert.ErrorIs(t, err, joyrelay.ErrTransportClosed)

	// The peripheral side is torn down with the link.
	assert.False(t, tl.peripheral.IsConnected())
}

func TestEngine_PeripheralCloseStopsBothLoops(t *testing.T) {
	t.Parallel()

	tl, cancel := startEngine(t, nil)
	defer cancel()

	require.NoError(t, tl.peripheral.Close())

	err := waitDone(t, tl)
	require.Error(t, err)
	assert.ErrorIs(t, err, joyrelay.ErrTransportClosed)
	assert.False(t, tl.host.IsConnected())
}

func TestEngine_MalformedFrameDropped(t *testing.T) {
	t.Parallel()

	tl, cancel := startEngine(t, nil)
	defer cancel()

	tl.peripheral.QueueFrame([]byte{0xA1})
	good := standardInputFrame(2)
	tl.peripheral.QueueFrame(good)

	// Only the well-formed frame comes through.
	assert.Equal(t, good, recvFrame(t, tl.host))

	cancel()
	require.NoError(t, waitDone(t, tl))

	m := tl.engine.GetMetrics()
	assert.Equal(t, int64(1), m.Dropped)
	assert.Equal(t, int64(1), m.FramesToHost)
}

func TestEngine_SubstitutesMcuReports(t *testing.T) {
	t.Parallel()

	store := joyrelay.NewPayloadStore(make([]byte, 540))
	tl, cancel := startEngine(t, store)
	defer cancel()

	// Host starts polling; the request itself passes through.
	tl.host.QueueFrame(mcuRequestFrame(0x02, 0x01))
	recvFrame(t, tl.peripheral)

	// The next MCU-mode report is substituted with a tag-detected packet.
	raw := make([]byte, 363)
	raw[0] = 0xA1
	raw[1] = 0x31
	raw[50] = 0xFF
	tl.peripheral.QueueFrame(raw)

	got := recvFrame(t, tl.host)
	require.Len(t, got, 363)
	assert.Equal(t, byte(0x2A), got[50])

	cancel()
	require.NoError(t, waitDone(t, tl))
	assert.Equal(t, int64(1), tl.engine.GetMetrics().Substituted)
}

func TestEngine_RetryableReadErrorsDoNotKillTheLink(t *testing.T) {
	t.Parallel()

	tl, cancel := startEngine(t, nil)
	defer cancel()

	tl.peripheral.SetReadError(joyrelay.NewTimeoutError("ReadFrame", "mock"))
	time.Sleep(20 * time.Millisecond)
	tl.peripheral.SetReadError(nil)

	frame := standardInputFrame(3)
	tl.peripheral.QueueFrame(frame)
	assert.Equal(t, frame, recvFrame(t, tl.host))

	cancel()
	require.NoError(t, waitDone(t, tl))
}
