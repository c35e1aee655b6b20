// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bridge exposes the tensor engine to foreign callers through
// opaque handles.
//
// A Runtime owns three handle arenas (tensors, compiled units and
// optimizers). Every operation resolves its handles, calls the engine and
// registers any new value under a fresh handle. Engine faults are panics
// inside the engine; the bridge recovers them into *EngineError so that no
// fault crosses the boundary as a crash.
//
// Usage:
//
//	rt := bridge.NewRuntime()
//
//	a, _ := rt.TensorFromBuffer([]float32{1, 2, -1}, []int64{3})
//	b, _ := rt.TensorFromBuffer([]float32{2, 3, -2}, []int64{3})
//	u, _ := rt.Compile("def f(a, b):\n    return torch.relu(a + b)\n")
//	out, _ := rt.Invoke(u, "f", []bridge.TensorHandle{a, b})
//	data, _ := rt.Data(out) // [3 5 0]
package bridge

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/torchbridge/internal/autodiff"
	"github.com/born-ml/torchbridge/internal/backend/cpu"
	"github.com/born-ml/torchbridge/internal/envconfig"
	"github.com/born-ml/torchbridge/internal/handle"
	"github.com/born-ml/torchbridge/internal/logutil"
	"github.com/born-ml/torchbridge/internal/optim"
	"github.com/born-ml/torchbridge/internal/parallel"
	"github.com/born-ml/torchbridge/internal/script"
	"github.com/born-ml/torchbridge/internal/tensor"
)

type engine = autodiff.Engine[*cpu.CPUBackend]

// Runtime holds the engine and the handle tables.
//
// Creating and destroying distinct handles from several goroutines is safe.
// Operations that mutate one handle (set-requires-grad, backward, optimizer
// step) must be serialized by the caller.
type Runtime struct {
	engine     *engine
	tensors    *handle.Arena[*tensor.Tensor]
	units      *handle.Arena[*script.Unit]
	optimizers *handle.Arena[optim.Optimizer]
}

// Option configures a Runtime.
type Option func(*runtimeConfig)

type runtimeConfig struct {
	parallel parallel.Config
	seed     int64
}

// WithParallel overrides the CPU worker configuration.
func WithParallel(cfg parallel.Config) Option {
	return func(c *runtimeConfig) { c.parallel = cfg }
}

// WithSeed seeds random tensor creation. Zero keeps the current source.
func WithSeed(seed int64) Option {
	return func(c *runtimeConfig) { c.seed = seed }
}

// NewRuntime creates a runtime over a CPU engine configured from the
// environment.
func NewRuntime(opts ...Option) *Runtime {
	cfg := runtimeConfig{
		parallel: parallel.DefaultConfig(),
		seed:     envconfig.Seed,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.seed != 0 {
		tensor.Seed(cfg.seed)
	}

	rt := &Runtime{
		engine:     autodiff.New(cpu.NewWithConfig(cfg.parallel)),
		tensors:    handle.NewArena[*tensor.Tensor](),
		units:      handle.NewArena[*script.Unit](),
		optimizers: handle.NewArena[optim.Optimizer](),
	}
	slog.Debug("runtime created", "engine", rt.engine.Name(), "workers", cfg.parallel.NumWorkers)
	return rt
}

// Live reports the number of live handles of each kind.
func (rt *Runtime) Live() (tensors, units, optimizers int) {
	return rt.tensors.Len(), rt.units.Len(), rt.optimizers.Len()
}

// adopt registers a freshly created tensor; the handle takes over its
// only reference.
func (rt *Runtime) adopt(t *tensor.Tensor) TensorHandle {
	h := TensorHandle(rt.tensors.Insert(t))
	logutil.Trace("tensor created", "handle", h, "shape", t.Shape())
	return h
}

// share registers a tensor that is already referenced elsewhere, taking an
// extra reference to its storage.
func (rt *Runtime) share(t *tensor.Tensor) TensorHandle {
	t.Raw().Retain()
	h := TensorHandle(rt.tensors.Insert(t))
	logutil.Trace("tensor shared", "handle", h, "refs", t.Raw().RefCount())
	return h
}

func (rt *Runtime) tensor(h TensorHandle) (*tensor.Tensor, error) {
	t, err := rt.tensors.Get(handle.ID(h))
	if err != nil {
		return nil, errors.Wrap(err, "tensor")
	}
	return t, nil
}

func (rt *Runtime) tensorList(hs []TensorHandle) ([]*tensor.Tensor, error) {
	ts := make([]*tensor.Tensor, len(hs))
	for i, h := range hs {
		t, err := rt.tensor(h)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i)
		}
		ts[i] = t
	}
	return ts, nil
}

// guard converts an engine panic into an *EngineError stored in *err.
// It must be deferred directly.
func guard(op string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = engineError(op, r)
}

func engineError(op string, r any) *EngineError {
	var msg string
	switch r := r.(type) {
	case error:
		msg = r.Error()
	case string:
		msg = r
	default:
		msg = fmt.Sprint(r)
	}
	// Engine panics usually name the operation already.
	msg = strings.TrimPrefix(msg, op+": ")
	slog.Debug("recovered engine fault", "op", op, "error", msg)
	return &EngineError{Op: op, Msg: msg}
}
