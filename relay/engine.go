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

// Package relay pumps frames between the peripheral and host transports,
// routing every frame through the NFC interceptor.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	joyrelay "github.com/switchemu/go-joyrelay"
)

// Link is a pair of live transports bound to one relayed peripheral. It
// exists for the lifetime of one peripheral-to-host session and dies when
// either side disconnects.
type Link struct {
	Peripheral joyrelay.Transport
	Host       joyrelay.Transport
}

// Close closes both sides. Safe to call more than once; transports must
// tolerate repeated Close.
func (l Link) Close() {
	if l.Peripheral != nil {
		_ = l.Peripheral.Close()
	}
	if l.Host != nil {
		_ = l.Host.Close()
	}
}

// Metrics tracks per-engine frame counters.
type Metrics struct {
	FramesToHost       int64 // Frames forwarded peripheral -> host
	FramesToPeripheral int64 // Frames forwarded host -> peripheral
	Substituted        int64 // Frames whose NFC content was replaced
	Dropped            int64 // Malformed frames discarded
}

// Engine owns a Link and runs the two forwarding loops. Each loop reads
// one frame, decodes it, hands it to the interceptor, and writes the
// result to the other side. The loops share nothing but the interceptor,
// so a stall in one direction cannot starve the other.
type Engine struct {
	link        Link
	interceptor *joyrelay.Interceptor
	config      *Config

	framesToHost       int64
	framesToPeripheral int64
	substituted        int64
	dropped            int64
}

// NewEngine creates an engine over the given link and interceptor.
func NewEngine(link Link, interceptor *joyrelay.Interceptor, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		link:        link,
		interceptor: interceptor,
		config:      config,
	}
}

// Run pumps frames in both directions until the context is cancelled or
// either transport fails. On the first terminal error both transports are
// closed, which unblocks the sibling loop; Run returns once both loops
// have exited. The returned error is the disconnect cause, or nil on
// clean cancellation.
func (e *Engine) Run(ctx context.Context) error {
	if e.config.ReadTimeout > 0 {
		_ = e.link.Peripheral.SetTimeout(e.config.ReadTimeout)
		_ = e.link.Host.SetTimeout(e.config.ReadTimeout)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		errc <- e.pump(ctx, e.link.Peripheral, e.link.Host,
			joyrelay.DirInput, e.interceptor.HandlePeripheralFrame, &e.framesToHost)
	}()
	go func() {
		defer wg.Done()
		errc <- e.pump(ctx, e.link.Host, e.link.Peripheral,
			joyrelay.DirOutput, e.interceptor.HandleHostFrame, &e.framesToPeripheral)
	}()

	// First loop to stop decides the outcome; closing the link unblocks
	// the sibling within one pending read/write cycle.
	err := <-errc
	cancel()
	e.link.Close()
	wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// pump is one forwarding loop. Malformed frames are logged and dropped;
// retryable read errors (timeouts) loop back to observe cancellation;
// anything else is terminal for the link.
func (e *Engine) pump(
	ctx context.Context,
	src, dst joyrelay.Transport,
	dir joyrelay.Direction,
	handle func(*joyrelay.Report) []*joyrelay.Report,
	forwarded *int64,
) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		raw, err := src.ReadFrame(ctx)
		if err != nil {
			if joyrelay.IsRetryable(err) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return fmt.Errorf("%s read: %w", dir, err)
		}

		report, err := joyrelay.Decode(dir, raw)
		if err != nil {
			// A single corrupt frame must not end the session
			atomic.AddInt64(&e.dropped, 1)
			joyrelay.Debugf("dropping malformed %s frame (%d bytes): %v", dir, len(raw), err)
			continue
		}
		joyrelay.CaptureFrame(dir, raw)

		for _, out := range handle(report) {
			if out != report {
				atomic.AddInt64(&e.substituted, 1)
				joyrelay.CaptureFrame(dir, out.Raw)
			}
			if err := dst.WriteFrame(ctx, out.Encode()); err != nil {
				if errors.Is(err, context.Canceled) {
					return ctx.Err()
				}
				return fmt.Errorf("%s write: %w", dir, err)
			}
			atomic.AddInt64(forwarded, 1)
		}
	}
}

// GetMetrics returns a snapshot of the engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		FramesToHost:       atomic.LoadInt64(&e.framesToHost),
		FramesToPeripheral: atomic.LoadInt64(&e.framesToPeripheral),
		Substituted:        atomic.LoadInt64(&e.substituted),
		Dropped:            atomic.LoadInt64(&e.dropped),
	}
}
