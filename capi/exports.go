// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Command capi builds the torchbridge C shared library:
//
//	go build -buildmode=c-shared -o libtorchbridge.so ./capi
//
// Every export is safe for concurrent use. Calls returning TorchResult put
// failures in its err field; calls returning int return -1 on failure and
// leave the message for TorchLastError.
package main

/*
#include "torchbridge.h"
*/
import "C"

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/born-ml/torchbridge/bridge"
)

var errNullPointer = errors.New("null pointer argument")

func result[H bridge.Handle](h H, err error) C.TorchResult {
	r := bridge.ResultOf(h, err)
	if !r.IsOk() {
		setLastError(errors.New(r.Err))
		return C.TorchResult{err: C.CString(r.Err)}
	}
	return C.TorchResult{handle: C.uint64_t(r.Handle)}
}

func sizesOf(sizes *C.int64_t, ndim C.int) ([]int64, error) {
	if ndim < 0 {
		return nil, errors.Errorf("negative rank %d", int(ndim))
	}
	if ndim == 0 {
		return []int64{}, nil
	}
	if sizes == nil {
		return nil, errNullPointer
	}
	return append([]int64(nil), unsafe.Slice((*int64)(unsafe.Pointer(sizes)), int(ndim))...), nil
}

func tensorHandles(hs *C.uint64_t, n C.int) ([]bridge.TensorHandle, error) {
	if n < 0 {
		return nil, errors.Errorf("negative handle count %d", int(n))
	}
	if n == 0 {
		return nil, nil
	}
	if hs == nil {
		return nil, errNullPointer
	}
	out := make([]bridge.TensorHandle, n)
	for i, h := range unsafe.Slice((*uint64)(unsafe.Pointer(hs)), int(n)) {
		out[i] = bridge.TensorHandle(h)
	}
	return out, nil
}

func numElements(sizes []int64) int {
	n := 1
	for _, s := range sizes {
		n *= int(s)
	}
	return n
}

func blob(data unsafe.Pointer, sizes *C.int64_t, ndim C.int, release func()) (bridge.TensorHandle, error) {
	shape, err := sizesOf(sizes, ndim)
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, errNullPointer
	}
	n := numElements(shape)
	if n <= 0 {
		return 0, errors.Errorf("invalid sizes %v", shape)
	}
	buf := unsafe.Slice((*float32)(data), n)
	return rt.TensorFromBufferWithRelease(buf, shape, release)
}

//export TorchJitCompile
func TorchJitCompile(src *C.char) C.TorchResult {
	if src == nil {
		return result(bridge.UnitHandle(0), errNullPointer)
	}
	return result(rt.Compile(C.GoString(src)))
}

//export TorchJitScriptModuleDelete
func TorchJitScriptModuleDelete(h C.uint64_t) C.int {
	return C.int(status(rt.DestroyUnit(bridge.UnitHandle(h))))
}

//export TorchJitScriptModuleRunMethod
func TorchJitScriptModuleRunMethod(h C.uint64_t, name *C.char, args *C.uint64_t, n C.int) C.TorchResult {
	if name == nil {
		return result(bridge.TensorHandle(0), errNullPointer)
	}
	hs, err := tensorHandles(args, n)
	if err != nil {
		return result(bridge.TensorHandle(0), err)
	}
	return result(rt.Invoke(bridge.UnitHandle(h), C.GoString(name), hs))
}

// TorchTensorFromBlob borrows data; the caller keeps ownership and must
// keep it alive until the tensor is deleted.
//
//export TorchTensorFromBlob
func TorchTensorFromBlob(data unsafe.Pointer, sizes *C.int64_t, ndim C.int) C.TorchResult {
	return result(blob(data, sizes, ndim, nil))
}

//export TorchTensorFromBlobWithDeleter
func TorchTensorFromBlobWithDeleter(data unsafe.Pointer, sizes *C.int64_t, ndim C.int, deleter C.TorchDeleter, ctx unsafe.Pointer) C.TorchResult {
	return result(blob(data, sizes, ndim, deleterFunc(deleter, ctx)))
}

//export TorchTensorFromHalf
func TorchTensorFromHalf(data *C.uint16_t, sizes *C.int64_t, ndim C.int) C.TorchResult {
	shape, err := sizesOf(sizes, ndim)
	if err != nil {
		return result(bridge.TensorHandle(0), err)
	}
	if data == nil {
		return result(bridge.TensorHandle(0), errNullPointer)
	}
	n := numElements(shape)
	if n <= 0 {
		return result(bridge.TensorHandle(0), errors.Errorf("invalid sizes %v", shape))
	}
	bits := unsafe.Slice((*uint16)(unsafe.Pointer(data)), n)
	return result(rt.TensorFromFloat16(bits, shape))
}

//export TorchTensorFromBFloat16
func TorchTensorFromBFloat16(data *C.uint16_t, sizes *C.int64_t, ndim C.int) C.TorchResult {
	shape, err := sizesOf(sizes, ndim)
	if err != nil {
		return result(bridge.TensorHandle(0), err)
	}
	if data == nil {
		return result(bridge.TensorHandle(0), errNullPointer)
	}
	n := numElements(shape)
	if n <= 0 {
		return result(bridge.TensorHandle(0), errors.Errorf("invalid sizes %v", shape))
	}
	bits := unsafe.Slice((*uint16)(unsafe.Pointer(data)), n)
	return result(rt.TensorFromBFloat16(bits, shape))
}

//export TorchTensorRandn
func TorchTensorRandn(sizes *C.int64_t, ndim C.int) C.TorchResult {
	shape, err := sizesOf(sizes, ndim)
	if err != nil {
		return result(bridge.TensorHandle(0), err)
	}
	return result(rt.TensorRandn(shape))
}

//export TorchTensorDelete
func TorchTensorDelete(h C.uint64_t) C.int {
	return C.int(status(deleteTensor(bridge.TensorHandle(h))))
}

//export TorchTensorDim
func TorchTensorDim(h C.uint64_t) C.int {
	rank, err := rt.Rank(bridge.TensorHandle(h))
	if err != nil {
		return C.int(status(err))
	}
	return C.int(rank)
}

// TorchTensorSizes writes Dim(h) sizes into out and returns the rank.
//
//export TorchTensorSizes
func TorchTensorSizes(h C.uint64_t, out *C.int64_t) C.int {
	sizes, err := rt.Sizes(bridge.TensorHandle(h))
	if err != nil {
		return C.int(status(err))
	}
	if len(sizes) > 0 {
		if out == nil {
			return C.int(status(errNullPointer))
		}
		copy(unsafe.Slice((*int64)(unsafe.Pointer(out)), len(sizes)), sizes)
	}
	return C.int(len(sizes))
}

// TorchTensorData returns the element pointer, or NULL on failure. The
// pointer stays valid until the handle is deleted.
//
//export TorchTensorData
func TorchTensorData(h C.uint64_t) unsafe.Pointer {
	ptr, err := pinData(bridge.TensorHandle(h))
	if err != nil {
		setLastError(err)
		return nil
	}
	return ptr
}

//export TorchTensorBackward
func TorchTensorBackward(h C.uint64_t) C.int {
	return C.int(status(rt.Backward(bridge.TensorHandle(h))))
}

//export TorchTensorGrad
func TorchTensorGrad(h C.uint64_t) C.TorchResult {
	return result(rt.Gradient(bridge.TensorHandle(h)))
}

// TorchTensorRequiresGrad returns 1 or 0, or -1 on failure.
//
//export TorchTensorRequiresGrad
func TorchTensorRequiresGrad(h C.uint64_t) C.int {
	v, err := rt.RequiresGrad(bridge.TensorHandle(h))
	switch {
	case err != nil:
		return C.int(status(err))
	case v:
		return 1
	default:
		return 0
	}
}

//export TorchTensorSetRequiresGrad
func TorchTensorSetRequiresGrad(h C.uint64_t, v C.int) C.int {
	return C.int(status(rt.SetRequiresGrad(bridge.TensorHandle(h), v != 0)))
}

//export TorchTensorReshape
func TorchTensorReshape(h C.uint64_t, sizes *C.int64_t, ndim C.int) C.TorchResult {
	shape, err := sizesOf(sizes, ndim)
	if err != nil {
		return result(bridge.TensorHandle(0), err)
	}
	return result(rt.Reshape(bridge.TensorHandle(h), shape))
}

//export TorchTensorStack
func TorchTensorStack(hs *C.uint64_t, n C.int, axis C.int) C.TorchResult {
	ts, err := tensorHandles(hs, n)
	if err != nil {
		return result(bridge.TensorHandle(0), err)
	}
	return result(rt.Stack(ts, int(axis)))
}

//export TorchTensorBinary
func TorchTensorBinary(op *C.char, a, b C.uint64_t) C.TorchResult {
	if op == nil {
		return result(bridge.TensorHandle(0), errNullPointer)
	}
	return result(binaryByName(C.GoString(op), bridge.TensorHandle(a), bridge.TensorHandle(b)))
}

func binary(op bridge.BinaryOp, a, b C.uint64_t) C.TorchResult {
	return result(rt.Binary(op, bridge.TensorHandle(a), bridge.TensorHandle(b)))
}

//export TorchTensorAdd
func TorchTensorAdd(a, b C.uint64_t) C.TorchResult { return binary(bridge.OpAdd, a, b) }

//export TorchTensorSub
func TorchTensorSub(a, b C.uint64_t) C.TorchResult { return binary(bridge.OpSub, a, b) }

//export TorchTensorDiv
func TorchTensorDiv(a, b C.uint64_t) C.TorchResult { return binary(bridge.OpDiv, a, b) }

//export TorchTensorDot
func TorchTensorDot(a, b C.uint64_t) C.TorchResult { return binary(bridge.OpDot, a, b) }

//export TorchTensorEq
func TorchTensorEq(a, b C.uint64_t) C.TorchResult { return binary(bridge.OpEq, a, b) }

//export TorchTensorL1Loss
func TorchTensorL1Loss(a, b C.uint64_t) C.TorchResult { return binary(bridge.OpL1Loss, a, b) }

//export TorchTensorNLLLoss
func TorchTensorNLLLoss(a, b C.uint64_t) C.TorchResult { return binary(bridge.OpNLLLoss, a, b) }

//export TorchTensorMSELoss
func TorchTensorMSELoss(a, b C.uint64_t) C.TorchResult { return binary(bridge.OpMSELoss, a, b) }

//export TorchAdam
func TorchAdam(params *C.uint64_t, n C.int, lr C.float) C.TorchResult {
	hs, err := tensorHandles(params, n)
	if err != nil {
		return result(bridge.OptimizerHandle(0), err)
	}
	return result(rt.NewAdam(hs, float32(lr)))
}

//export TorchSGD
func TorchSGD(params *C.uint64_t, n C.int, lr C.float) C.TorchResult {
	hs, err := tensorHandles(params, n)
	if err != nil {
		return result(bridge.OptimizerHandle(0), err)
	}
	return result(rt.NewSGD(hs, float32(lr)))
}

//export TorchOptimizerZeroGrad
func TorchOptimizerZeroGrad(h C.uint64_t) C.int {
	return C.int(status(rt.ZeroGrad(bridge.OptimizerHandle(h))))
}

//export TorchOptimizerStep
func TorchOptimizerStep(h C.uint64_t) C.int {
	return C.int(status(rt.Step(bridge.OptimizerHandle(h))))
}

//export TorchOptimizerDelete
func TorchOptimizerDelete(h C.uint64_t) C.int {
	return C.int(status(rt.DestroyOptimizer(bridge.OptimizerHandle(h))))
}

// TorchLastError returns a copy of the most recent failure message, or NULL
// if nothing has failed yet. Release it with TorchFreeString.
//
//export TorchLastError
func TorchLastError() *C.char {
	msg := lastError()
	if msg == "" {
		return nil
	}
	return C.CString(msg)
}

//export TorchFreeString
func TorchFreeString(s *C.char) {
	C.free(unsafe.Pointer(s))
}
