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

// Command joyrelay relays a paired Joy-Con to the console over Bluetooth
// L2CAP, substituting NFC tag reads with a local tag image.
//
// Usage:
//
//	joyrelay --peripheral-addr AA:BB:CC:DD:EE:FF --spoof-file tag.bin
//
// The relay dials both HID channels of the Joy-Con, then listens for the
// console to connect. The control channel is held open untouched; the
// interrupt channel carries the report stream and is relayed through the
// interceptor. Without --spoof-file the relay is fully transparent.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	joyrelay "github.com/switchemu/go-joyrelay"
	"github.com/switchemu/go-joyrelay/relay"
	"github.com/switchemu/go-joyrelay/transport/l2cap"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("joyrelay", pflag.ContinueOnError)
	flags.String("peripheral-addr", "", "Bluetooth address of the Joy-Con (required)")
	flags.String("host-addr", "", "local adapter address to listen on (default any)")
	flags.String("spoof-file", "", "tag image file to serve on NFC reads")
	flags.String("capture", "", "write a frame capture log to this file")
	flags.Bool("debug", false, "enable debug output")
	flags.Duration("read-timeout", 500*time.Millisecond, "transport read timeout")
	configFile := flags.String("config", "", "config file (default joyrelay.yaml)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "joyrelay: %v\n", err)
		return 1
	}

	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "joyrelay: %v\n", err)
		return 1
	}
	v.SetEnvPrefix("JOYRELAY")
	v.AutomaticEnv()
	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "joyrelay: reading config: %v\n", err)
			return 1
		}
	} else {
		v.SetConfigName("joyrelay")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				fmt.Fprintf(os.Stderr, "joyrelay: reading config: %v\n", err)
				return 1
			}
		}
	}

	if v.GetBool("debug") {
		joyrelay.SetDebugEnabled(true)
	}

	peripheralAddr := v.GetString("peripheral-addr")
	if peripheralAddr == "" {
		fmt.Fprintln(os.Stderr, "joyrelay: --peripheral-addr is required")
		return 1
	}

	if capturePath := v.GetString("capture"); capturePath != "" {
		path, err := joyrelay.InitCaptureLog(capturePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "joyrelay: capture log: %v\n", err)
			return 1
		}
		defer func() { _ = joyrelay.CloseCaptureLog() }()
		fmt.Printf("Capturing frames to %s\n", path)
	}

	var store *joyrelay.PayloadStore
	if spoofFile := v.GetString("spoof-file"); spoofFile != "" {
		var err error
		store, err = joyrelay.LoadPayload(spoofFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "joyrelay: loading tag image: %v\n", err)
			return 1
		}
		fmt.Printf("Serving %d-byte tag image from %s (UID % X)\n",
			store.Len(), spoofFile, store.UID())
	} else {
		fmt.Println("No tag image given, relaying transparently")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runRelay(ctx, v, peripheralAddr, store); err != nil {
		if ctx.Err() != nil {
			return 0
		}
		fmt.Fprintf(os.Stderr, "joyrelay: %v\n", err)
		return 1
	}
	return 0
}

// runRelay dials the peripheral, waits for the console, and relays the
// interrupt channel until either side disconnects.
func runRelay(ctx context.Context, v *viper.Viper, peripheralAddr string, store *joyrelay.PayloadStore) error {
	fmt.Printf("Connecting to Joy-Con at %s...\n", peripheralAddr)
	peripheralCtrl, err := l2cap.Dial(peripheralAddr, l2cap.PSMControl)
	if err != nil {
		return fmt.Errorf("dialing control channel: %w", err)
	}
	defer func() { _ = peripheralCtrl.Close() }()

	peripheralItr, err := l2cap.Dial(peripheralAddr, l2cap.PSMInterrupt)
	if err != nil {
		return fmt.Errorf("dialing interrupt channel: %w", err)
	}
	defer func() { _ = peripheralItr.Close() }()
	fmt.Println("Joy-Con connected")

	hostAddr := v.GetString("host-addr")
	ctrlListener, err := l2cap.Listen(hostAddr, l2cap.PSMControl)
	if err != nil {
		return fmt.Errorf("listening on control psm: %w", err)
	}
	defer func() { _ = ctrlListener.Close() }()

	itrListener, err := l2cap.Listen(hostAddr, l2cap.PSMInterrupt)
	if err != nil {
		return fmt.Errorf("listening on interrupt psm: %w", err)
	}
	defer func() { _ = itrListener.Close() }()

	fmt.Println("Waiting for console to connect...")
	hostCtrl, err := acceptWithContext(ctx, ctrlListener)
	if err != nil {
		return fmt.Errorf("accepting control channel: %w", err)
	}
	defer func() { _ = hostCtrl.Close() }()

	hostItr, err := acceptWithContext(ctx, itrListener)
	if err != nil {
		return fmt.Errorf("accepting interrupt channel: %w", err)
	}
	fmt.Println("Console connected, relaying")

	interceptor := joyrelay.NewInterceptor(store)
	config := relay.DefaultConfig()
	if t := v.GetDuration("read-timeout"); t > 0 {
		config.ReadTimeout = t
	}

	session := relay.NewSession(relay.Link{
		Peripheral: peripheralItr,
		Host:       hostItr,
	}, interceptor, config)

	err = session.Run(ctx)

	m := session.Metrics()
	fmt.Printf("Session %s ended: %d frames to host, %d to peripheral, %d substituted, %d dropped\n",
		session.ID(), m.FramesToHost, m.FramesToPeripheral, m.Substituted, m.Dropped)
	return err
}

// acceptWithContext unblocks a pending Accept when the context is
// cancelled by closing the listener.
func acceptWithContext(ctx context.Context, l *l2cap.Listener) (*l2cap.Transport, error) {
	type result struct {
		t   *l2cap.Transport
		err error
	}
	ch := make(chan result, 1)
	go func() {
		t, err := l.Accept()
		ch <- result{t, err}
	}()
	select {
	case r := <-ch:
		return r.t, r.err
	case <-ctx.Done():
		_ = l.Close()
		r := <-ch
		if r.err != nil {
			return nil, ctx.Err()
		}
		return r.t, nil
	}
}
