// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/born-ml/torchbridge/bridge"
	"github.com/born-ml/torchbridge/internal/envconfig"
	"github.com/born-ml/torchbridge/internal/logutil"
)

// rt is the process-wide runtime behind every export.
var rt *bridge.Runtime

var (
	errMu   sync.Mutex
	lastErr string

	pinMu sync.Mutex
	pins  = make(map[bridge.TensorHandle]*runtime.Pinner)
)

func init() {
	slog.SetDefault(logutil.NewLogger(os.Stderr, logutil.Level(envconfig.LogLevel)))
	rt = bridge.NewRuntime()
}

// setLastError records the message returned by TorchLastError.
func setLastError(err error) {
	if err == nil {
		return
	}
	errMu.Lock()
	defer errMu.Unlock()
	lastErr = err.Error()
	slog.Debug("capi call failed", "error", lastErr)
}

func lastError() string {
	errMu.Lock()
	defer errMu.Unlock()
	return lastErr
}

// status maps an error to the int convention of the C surface.
func status(err error) int {
	if err != nil {
		setLastError(err)
		return -1
	}
	return 0
}

// pinData returns the storage pointer of h, pinned until the handle is
// deleted. Pinning caller-owned C memory is a no-op.
func pinData(h bridge.TensorHandle) (unsafe.Pointer, error) {
	ptr, err := rt.DataPtr(h)
	if err != nil {
		return nil, err
	}

	pinMu.Lock()
	defer pinMu.Unlock()
	p, ok := pins[h]
	if !ok {
		p = new(runtime.Pinner)
		pins[h] = p
	}
	p.Pin(ptr)
	return ptr, nil
}

func pinned(h bridge.TensorHandle) bool {
	pinMu.Lock()
	defer pinMu.Unlock()
	_, ok := pins[h]
	return ok
}

// deleteTensor drops any pin held for h and then the handle itself.
func deleteTensor(h bridge.TensorHandle) error {
	pinMu.Lock()
	if p, ok := pins[h]; ok {
		p.Unpin()
		delete(pins, h)
	}
	pinMu.Unlock()
	return rt.DestroyTensor(h)
}

func binaryByName(name string, a, b bridge.TensorHandle) (bridge.TensorHandle, error) {
	op, err := bridge.ParseBinaryOp(name)
	if err != nil {
		return 0, err
	}
	return rt.Binary(op, a, b)
}

func main() {}
