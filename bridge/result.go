// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bridge

import "github.com/born-ml/torchbridge/internal/handle"

// TensorHandle is an opaque reference to one tensor value.
type TensorHandle uint64

// UnitHandle is an opaque reference to a compiled script unit.
type UnitHandle uint64

// OptimizerHandle is an opaque reference to an optimizer.
type OptimizerHandle uint64

// Handle is the constraint satisfied by every handle type. The zero value
// is the null handle.
type Handle interface {
	~uint64
}

// IsNull reports whether h is the null handle.
func (h TensorHandle) IsNull() bool { return h == 0 }

// IsNull reports whether h is the null handle.
func (h UnitHandle) IsNull() bool { return h == 0 }

// IsNull reports whether h is the null handle.
func (h OptimizerHandle) IsNull() bool { return h == 0 }

func (h TensorHandle) String() string    { return "tensor:" + handle.ID(h).String() }
func (h UnitHandle) String() string      { return "unit:" + handle.ID(h).String() }
func (h OptimizerHandle) String() string { return "optimizer:" + handle.ID(h).String() }

// Result is the two-field encoding used at the foreign boundary: exactly one
// of Handle and Err is populated. A null handle means Err is authoritative.
type Result[H Handle] struct {
	Handle H
	Err    string
}

// Ok wraps a successfully created handle.
func Ok[H Handle](h H) Result[H] {
	return Result[H]{Handle: h}
}

// Fail wraps an error. A nil error still yields a failed result so that a
// null handle never travels without a message.
func Fail[H Handle](err error) Result[H] {
	if err == nil {
		return Result[H]{Err: "unknown error"}
	}
	return Result[H]{Err: err.Error()}
}

// ResultOf converts a Go (handle, error) pair into a Result.
func ResultOf[H Handle](h H, err error) Result[H] {
	if err != nil || h == 0 {
		return Fail[H](err)
	}
	return Ok(h)
}

// IsOk reports whether the result carries a handle.
func (r Result[H]) IsOk() bool {
	return r.Handle != 0
}
