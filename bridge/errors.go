// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bridge

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/torchbridge/internal/handle"
	"github.com/born-ml/torchbridge/internal/script"
)

var (
	// ErrInvalidHandle reports a null handle or one that was never issued.
	ErrInvalidHandle = handle.ErrInvalid

	// ErrStaleHandle reports use of a handle after it was destroyed,
	// including a second destroy.
	ErrStaleHandle = handle.ErrStale

	// ErrFunctionNotFound reports an invoke of a name the unit does not define.
	ErrFunctionNotFound = script.ErrFunctionNotFound

	// ErrNotTensor reports a script function that returned a non-tensor value.
	ErrNotTensor = script.ErrNotTensor

	// ErrNoGradient reports a gradient request before any backward pass.
	ErrNoGradient = errors.New("tensor has no gradient")

	// ErrNotFloat reports raw data access on a tensor that does not hold float32.
	ErrNotFloat = errors.New("tensor does not hold float32 data")
)

// EngineError is an engine fault (shape mismatch, failed broadcast, bad
// backward) recovered at the boundary.
type EngineError struct {
	Op  string
	Msg string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// IsEngineError reports whether err is or wraps an *EngineError.
func IsEngineError(err error) bool {
	var e *EngineError
	return errors.As(err, &e)
}
