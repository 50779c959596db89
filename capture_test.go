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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The capture log is process-global state, so these tests share one
// sequential test instead of running parallel.
func TestCaptureLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")

	got, err := InitCaptureLog(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, path, GetCaptureLogPath())

	CaptureFrame(DirOutput, []byte{0xA2, 0x11, 0x00, 0x02, 0x01})
	CaptureFrame(DirInput, []byte{0xA1, 0x30, 0x07})
	CaptureComment("Started polling")
	Debugf("state now %s", SessionPolling)

	require.NoError(t, CloseCaptureLog())
	assert.Empty(t, GetCaptureLogPath())

	data, err := os.ReadFile(path) //nolint:gosec // test-owned path
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "--- Host Msg ---")
	assert.Contains(t, content, "--- Controller Msg ---")
	assert.Contains(t, content, "### Started polling ###")
	assert.Contains(t, content, "DEBUG: state now polling")
	assert.Contains(t, content, "=== Capture ended ===")
}

func TestCaptureFrame_NoLogIsNoOp(t *testing.T) {
	// Must not panic or create files when no log is initialized.
	CaptureFrame(DirInput, []byte{0xA1, 0x30})
	CaptureComment("ignored")
}

func TestFormatFrame(t *testing.T) {
	t.Parallel()

	out := FormatFrame([]byte{0xA2, 0x01, 0x0F, 0x21}, 2)
	assert.Contains(t, out, "Payload:    A2 01 0F")
	assert.Contains(t, out, "Subcommand: 21")
}
