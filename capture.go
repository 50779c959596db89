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
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Capture log state. The capture log records every relayed frame in hex
// plus interceptor annotations, replacing ad-hoc print debugging when
// reverse-engineering host behavior.
var (
	captureMu     sync.Mutex
	captureFile   *os.File
	capturePath   string
	captureWriter io.Writer
)

// Hex-dump split points: where the fixed payload section ends and the
// subcommand/data tail begins for each direction.
const (
	captureSplitHost       = 10
	captureSplitController = 13
)

// InitCaptureLog creates the frame capture log at the given path, or a
// timestamped file in the current directory when path is empty. Returns
// the path for display to the operator.
func InitCaptureLog(path string) (string, error) {
	captureMu.Lock()
	defer captureMu.Unlock()

	if path == "" {
		path = fmt.Sprintf("joyrelay_%s.log", time.Now().Format("20060102_150405"))
	}
	logFile, err := os.Create(path) //nolint:gosec // operator-supplied capture path
	if err != nil {
		return "", fmt.Errorf("failed to create capture log: %w", err)
	}

	captureFile = logFile
	capturePath = path
	captureWriter = logFile
	writeCaptureHeader(logFile)
	return path, nil
}

// CloseCaptureLog closes the current capture log file.
func CloseCaptureLog() error {
	captureMu.Lock()
	defer captureMu.Unlock()

	if captureFile == nil {
		return nil
	}
	timestamp := time.Now().Format("15:04:05.000")
	_, _ = fmt.Fprintf(captureWriter, "\n%s === Capture ended ===\n", timestamp)

	err := captureFile.Close()
	captureFile = nil
	capturePath = ""
	captureWriter = nil
	if err != nil {
		return fmt.Errorf("failed to close capture log: %w", err)
	}
	return nil
}

// GetCaptureLogPath returns the current capture log file path.
func GetCaptureLogPath() string {
	captureMu.Lock()
	defer captureMu.Unlock()
	return capturePath
}

func captureLogWriter() io.Writer {
	captureMu.Lock()
	defer captureMu.Unlock()
	if captureWriter == nil {
		return nil
	}
	return captureWriter
}

// CaptureFrame records one relayed frame with a direction marker.
func CaptureFrame(dir Direction, raw []byte) {
	captureMu.Lock()
	defer captureMu.Unlock()
	if captureWriter == nil {
		return
	}

	name := "Controller"
	split := captureSplitController
	if dir == DirOutput {
		name = "Host"
		split = captureSplitHost
	}
	_, _ = fmt.Fprintf(captureWriter, "--- %s Msg ---\n%s\n", name, FormatFrame(raw, split))
}

// CaptureComment records an interceptor annotation, e.g. a state change.
func CaptureComment(text string) {
	captureMu.Lock()
	defer captureMu.Unlock()
	if captureWriter == nil {
		return
	}
	_, _ = fmt.Fprintf(captureWriter, "### %s ###\n", text)
}

// writeCaptureHeader writes metadata about the run to the log file.
func writeCaptureHeader(writer io.Writer) {
	_, _ = fmt.Fprint(writer, "=== Joy-Con Relay Capture Log ===\n")
	_, _ = fmt.Fprintf(writer, "Started: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "PID: %d\n", os.Getpid())
	_, _ = fmt.Fprintf(writer, "OS: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(writer, "Go Version: %s\n", runtime.Version())
	_, _ = fmt.Fprintf(writer, "Command Line: %s\n", strings.Join(os.Args, " "))
	_, _ = fmt.Fprint(writer, "=================================\n\n")
}
