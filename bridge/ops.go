// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bridge

import (
	"github.com/pkg/errors"

	"github.com/born-ml/torchbridge/internal/nn"
	"github.com/born-ml/torchbridge/internal/tensor"
)

// BinaryOp selects a two-tensor engine operation.
type BinaryOp int

// Binary operations. Losses take (prediction, target) and return a 0-d
// tensor with mean reduction.
const (
	OpDot BinaryOp = iota
	OpAdd
	OpSub
	OpDiv
	OpEq
	OpL1Loss
	OpNLLLoss
	OpMSELoss
	OpMul
	OpMatMul

	numBinaryOps
)

type binaryEntry struct {
	name string
	fn   func(e *engine, a, b *tensor.Tensor) *tensor.Tensor
}

// binaryOps is the dispatch table. Shape legality is left to the engine.
var binaryOps = [numBinaryOps]binaryEntry{
	OpDot:    {"dot", (*engine).Dot},
	OpAdd:    {"add", (*engine).Add},
	OpSub:    {"sub", (*engine).Sub},
	OpDiv:    {"div", (*engine).Div},
	OpEq:     {"eq", (*engine).Eq},
	OpL1Loss: {"l1_loss", func(e *engine, a, b *tensor.Tensor) *tensor.Tensor { return nn.NewL1Loss(e).Forward(a, b) }},
	OpNLLLoss: {"nll_loss", func(e *engine, a, b *tensor.Tensor) *tensor.Tensor {
		return nn.NewNLLLoss(e).Forward(a, b)
	}},
	OpMSELoss: {"mse_loss", func(e *engine, a, b *tensor.Tensor) *tensor.Tensor {
		return nn.NewMSELoss(e).Forward(a, b)
	}},
	OpMul:    {"mul", (*engine).Mul},
	OpMatMul: {"matmul", (*engine).MatMul},
}

func (op BinaryOp) valid() bool {
	return op >= 0 && op < numBinaryOps
}

// String returns the operation's name, e.g. "mse_loss".
func (op BinaryOp) String() string {
	if !op.valid() {
		return "unknown"
	}
	return binaryOps[op].name
}

// ParseBinaryOp looks an operation up by name.
func ParseBinaryOp(name string) (BinaryOp, error) {
	for op, entry := range binaryOps {
		if entry.name == name {
			return BinaryOp(op), nil
		}
	}
	return 0, errors.Errorf("unknown binary operation %q", name)
}

// BinaryOps lists every operation in table order.
func BinaryOps() []BinaryOp {
	ops := make([]BinaryOp, numBinaryOps)
	for i := range ops {
		ops[i] = BinaryOp(i)
	}
	return ops
}

// Binary applies op to two tensors and returns a handle to the result.
func (rt *Runtime) Binary(op BinaryOp, a, b TensorHandle) (out TensorHandle, err error) {
	if !op.valid() {
		return 0, errors.Errorf("unknown binary operation %d", int(op))
	}
	ta, err := rt.tensor(a)
	if err != nil {
		return 0, errors.Wrap(err, op.String())
	}
	tb, err := rt.tensor(b)
	if err != nil {
		return 0, errors.Wrap(err, op.String())
	}

	defer guard(op.String(), &err)
	return rt.adopt(binaryOps[op].fn(rt.engine, ta, tb)), nil
}
