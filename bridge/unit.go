// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bridge

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/born-ml/torchbridge/internal/handle"
	"github.com/born-ml/torchbridge/internal/logutil"
	"github.com/born-ml/torchbridge/internal/script"
)

// Compile compiles script source into a unit. A failure returns the
// *script.Error diagnostic ("line L:C: message") and no handle.
func (rt *Runtime) Compile(src string) (UnitHandle, error) {
	u, err := script.Compile(src, rt.engine)
	if err != nil {
		slog.Debug("script compilation failed", "error", err)
		return 0, err
	}
	h := UnitHandle(rt.units.Insert(u))
	logutil.Trace("unit created", "handle", h, "functions", len(u.Functions()))
	return h, nil
}

func (rt *Runtime) unit(h UnitHandle) (*script.Unit, error) {
	u, err := rt.units.Get(handle.ID(h))
	if err != nil {
		return nil, errors.Wrap(err, "unit")
	}
	return u, nil
}

// Invoke calls the named function with positional tensor arguments. The
// arguments stay owned by the caller. Wrong arity and runtime faults are
// *EngineError; an unknown name is ErrFunctionNotFound and a non-tensor
// result is ErrNotTensor.
func (rt *Runtime) Invoke(u UnitHandle, name string, args []TensorHandle) (TensorHandle, error) {
	unit, err := rt.unit(u)
	if err != nil {
		return 0, err
	}
	ts, err := rt.tensorList(args)
	if err != nil {
		return 0, errors.Wrap(err, name)
	}

	out, err := unit.Invoke(name, ts...)
	if err != nil {
		var rtErr *script.RuntimeError
		if errors.As(err, &rtErr) {
			return 0, engineError("invoke", rtErr)
		}
		return 0, err
	}

	// A function may hand back one of its arguments; that value already
	// belongs to another handle.
	for _, t := range ts {
		if t == out {
			return rt.share(out), nil
		}
	}
	return rt.adopt(out), nil
}

// Functions lists the unit's function signatures sorted by name.
func (rt *Runtime) Functions(u UnitHandle) ([]script.Signature, error) {
	unit, err := rt.unit(u)
	if err != nil {
		return nil, err
	}
	return unit.Functions(), nil
}

// DestroyUnit releases a compiled unit.
func (rt *Runtime) DestroyUnit(u UnitHandle) error {
	if _, err := rt.units.Remove(handle.ID(u)); err != nil {
		return errors.Wrap(err, "destroy unit")
	}
	logutil.Trace("unit destroyed", "handle", u)
	return nil
}
